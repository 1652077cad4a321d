// Package session runs utterances one at a time and serves daemon IPC commands.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/rbright/linevox/internal/fsm"
	"github.com/rbright/linevox/internal/grammar"
	"github.com/rbright/linevox/internal/ipc"
	"github.com/rbright/linevox/internal/series"
)

// Parser resolves an utterance into actions.
type Parser interface {
	Parse(utterance string) ([]grammar.Action, error)
}

// Executor runs a parsed series.
type Executor interface {
	Run(ctx context.Context, actions []grammar.Action) series.Result
}

// Notifier surfaces utterances that could not be understood.
type Notifier interface {
	Failed(ctx context.Context, text string)
}

// Report is the outcome of one utterance.
type Report struct {
	ID        string
	Utterance string
	Actions   []string
	Executed  int
	Failed    int
	Err       error
	Duration  time.Duration
}

// Result summarizes one daemon lifetime.
type Result struct {
	State      fsm.State
	Utterances int
	Executed   int
	Failed     int
	Rejected   int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Controller serializes utterance execution and tracks daemon state.
type Controller struct {
	logger   *slog.Logger
	parser   Parser
	executor Executor
	notifier Notifier

	// exec is held for the whole of one series so at most one runs at a time.
	exec sync.Mutex

	mu     sync.RWMutex
	state  fsm.State
	totals Result

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewController wires a controller. logger and notifier may be nil.
func NewController(logger *slog.Logger, parser Parser, executor Executor, notifier Notifier) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		logger:   logger,
		parser:   parser,
		executor: executor,
		notifier: notifier,
		state:    fsm.StateIdle,
		stopped:  make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Say parses and executes one utterance. Calls are serialized.
func (c *Controller) Say(ctx context.Context, utterance string, id string) (report Report) {
	c.exec.Lock()
	defer c.exec.Unlock()

	report = Report{ID: id, Utterance: utterance}
	started := time.Now()
	defer func() { report.Duration = time.Since(started) }()

	if err := c.transition(fsm.EventBegin); err != nil {
		report.Err = fmt.Errorf("not accepting utterances: %w", err)
		return report
	}
	defer func() { _ = c.transition(fsm.EventDone) }()

	actions, err := c.parser.Parse(utterance)
	if err != nil {
		report.Err = err
		c.record(report, true)
		c.logger.Warn("utterance rejected", "id", id, "utterance", utterance, "error", err.Error())
		if c.notifier != nil {
			c.notifier.Failed(ctx, fmt.Sprintf("%q: %v", utterance, err))
		}
		return report
	}

	for _, action := range actions {
		report.Actions = append(report.Actions, action.String())
	}
	result := c.executor.Run(ctx, actions)
	report.Executed, report.Failed = result.Executed, result.Failed
	report.Err = result.Err()
	c.record(report, false)

	c.logger.Info("utterance executed",
		"id", id,
		"utterance", utterance,
		"actions", len(actions),
		"executed", result.Executed,
		"failed", result.Failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return report
}

func (c *Controller) record(report Report, rejected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totals.Utterances++
	c.totals.Executed += report.Executed
	c.totals.Failed += report.Failed
	if rejected {
		c.totals.Rejected++
	}
}

// Run blocks until a stop request or ctx cancellation, then waits for any
// running series to finish.
func (c *Controller) Run(ctx context.Context) Result {
	startedAt := time.Now()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
		c.requestStop()
	case <-c.stopped:
	}

	c.exec.Lock()
	defer c.exec.Unlock()

	c.mu.RLock()
	result := c.totals
	result.State = c.state
	c.mu.RUnlock()

	result.StartedAt = startedAt
	result.FinishedAt = time.Now()
	result.Err = runErr
	return result
}

// Handle serves IPC commands for the daemon.
func (c *Controller) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return ipc.Response{OK: true, State: string(c.State()), Message: "status"}
	case ipc.CommandSay:
		return c.handleSay(ctx, req)
	case ipc.CommandStop:
		c.requestStop()
		return ipc.Response{OK: true, State: string(c.State()), Message: "stop requested"}
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

func (c *Controller) handleSay(ctx context.Context, req ipc.Request) ipc.Response {
	if strings.TrimSpace(req.Utterance) == "" {
		return ipc.Response{OK: false, State: string(c.State()), Error: "say requires an utterance"}
	}

	report := c.Say(ctx, req.Utterance, req.ID)
	resp := ipc.Response{
		OK:       report.Err == nil,
		State:    string(c.State()),
		Executed: report.Executed,
		Failed:   report.Failed,
		Actions:  report.Actions,
		Message:  fmt.Sprintf("executed %d of %d actions", report.Executed-report.Failed, len(report.Actions)),
	}
	if report.Err != nil {
		resp.Error = report.Err.Error()
	}
	return resp
}

func (c *Controller) requestStop() {
	_ = c.transition(fsm.EventStop)
	c.stopOnce.Do(func() { close(c.stopped) })
}
