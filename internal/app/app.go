package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rbright/linevox/internal/cli"
	"github.com/rbright/linevox/internal/clipboard"
	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/doctor"
	"github.com/rbright/linevox/internal/edit"
	"github.com/rbright/linevox/internal/grammar"
	"github.com/rbright/linevox/internal/ipc"
	"github.com/rbright/linevox/internal/keys"
	"github.com/rbright/linevox/internal/logging"
	"github.com/rbright/linevox/internal/notify"
	"github.com/rbright/linevox/internal/series"
	"github.com/rbright/linevox/internal/session"
	"github.com/rbright/linevox/internal/tokens"
	"github.com/rbright/linevox/internal/version"
)

const (
	forwardTimeout = 220 * time.Millisecond
	// sayTimeout covers a full series running in the daemon.
	sayTimeout = 30 * time.Second
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("linevox"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("linevox"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		// A missing config file is routine for say; keep its output clean.
		if parsed.Command != cli.CommandSay || cfgLoaded.Exists {
			fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		}
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandPhrases:
		return r.commandPhrases(cfgLoaded.Config)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandStop:
		return r.forwardOrFail(ctx, ipc.CommandStop)
	case cli.CommandSay:
		return r.commandSay(ctx, cfgLoaded.Config, parsed.Utterance(), logger)
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandPhrases(cfg config.Config) int {
	g, err := grammar.Default(cfg.Grammar)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	fmt.Fprintln(r.Stdout, "Phrases:")
	for _, phrase := range g.Phrases() {
		fmt.Fprintf(r.Stdout, "  %s\n", phrase)
	}

	table, _ := tokens.All(cfg.Grammar.Tokens)
	groups := []struct {
		title string
		names map[string]string
	}{
		{title: "Symbols", names: tokens.Symbols()},
		{title: "Alphabet", names: tokens.Alphabet()},
	}
	grouped := map[string]bool{}
	for _, group := range groups {
		fmt.Fprintf(r.Stdout, "\n%s:\n", group.title)
		for _, name := range sortedKeys(group.names) {
			grouped[name] = true
			fmt.Fprintf(r.Stdout, "  %-14s %s\n", name, table[name])
		}
	}

	var other []string
	for _, name := range g.TokenNames() {
		if !grouped[name] {
			other = append(other, name)
		}
	}
	if len(other) > 0 {
		fmt.Fprintln(r.Stdout, "\nOther tokens:")
		for _, name := range other {
			fmt.Fprintf(r.Stdout, "  %-14s %s\n", name, table[name])
		}
	}
	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "stopped")
		return 0
	}

	resp, handled, err := ipc.Forward(ctx, socketPath, ipc.Request{Command: ipc.CommandStatus}, forwardTimeout)
	if handled {
		if err != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", err)
			return 1
		}
		if resp.State == "" {
			resp.State = "idle"
		}
		fmt.Fprintln(r.Stdout, resp.State)
		return 0
	}

	fmt.Fprintln(r.Stdout, "stopped")
	return 0
}

func (r Runner) forwardOrFail(ctx context.Context, command string) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := ipc.Forward(ctx, socketPath, ipc.Request{Command: command}, forwardTimeout)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running linevox daemon\n")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

// commandSay forwards to a running daemon, or executes in-process when none
// owns the socket.
func (r Runner) commandSay(ctx context.Context, cfg config.Config, utterance string, logger *slog.Logger) int {
	req := ipc.Request{Command: ipc.CommandSay, Utterance: utterance, ID: uuid.NewString()}

	if socketPath, err := ipc.RuntimeSocketPath(); err == nil {
		resp, handled, err := ipc.Forward(ctx, socketPath, req, sayTimeout)
		if handled {
			logger.Info("utterance forwarded", "id", req.ID, "utterance", utterance, "ok", err == nil)
			if err != nil {
				fmt.Fprintf(r.Stderr, "error: %v\n", err)
				return 1
			}
			if resp.Message != "" {
				fmt.Fprintln(r.Stdout, resp.Message)
			}
			return 0
		}
	}

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	report := rt.controller.Say(ctx, utterance, req.ID)
	if report.Err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", report.Err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "executed %d of %d actions\n", report.Executed-report.Failed, len(report.Actions))
	return 0
}

func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	rt, err := buildRuntime(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, ipc.AcquireProbeTimeout, ipc.AcquireRetries, func(ctx context.Context) error {
		rt.notifier.Dismiss(ctx)
		return nil
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := ipc.Release(listener, socketPath); err != nil {
			logger.Warn("release socket failed", "socket", socketPath, "error", err.Error())
		}
	}()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, rt.controller)
	}()

	logger.Info("daemon listening", "socket", socketPath)
	result := rt.controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", serverErr)
		return 1
	}

	logDaemonResult(logger, result)

	if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", result.Err)
		return 1
	}
	fmt.Fprintf(r.Stdout, "stopped after %d utterances\n", result.Utterances)
	return 0
}

// runtime is the wired object graph behind serve and in-process say.
type runtime struct {
	controller *session.Controller
	notifier   *notify.Dispatcher
}

func buildRuntime(cfg config.Config, logger *slog.Logger) (runtime, error) {
	clip, err := clipboard.New(cfg.Clipboard)
	if err != nil {
		return runtime{}, err
	}
	injector, err := keys.New(cfg.Keys, logger)
	if err != nil {
		return runtime{}, err
	}
	g, err := grammar.Default(cfg.Grammar)
	if err != nil {
		return runtime{}, fmt.Errorf("compile grammar: %w", err)
	}

	settle := time.Duration(cfg.Clipboard.SettleMS) * time.Millisecond
	editor := edit.NewSession(clip, injector, keys.NewTypist(cfg.Keys), settle, logger)
	notifier := notify.New(cfg.Notify, logger)
	runner := series.NewRunner(editor, notifier, logger)

	return runtime{
		controller: session.NewController(logger, g, runner, notifier),
		notifier:   notifier,
	}, nil
}

func logDaemonResult(logger *slog.Logger, result session.Result) {
	if logger == nil {
		return
	}
	fields := []any{
		"state", result.State,
		"started_at", result.StartedAt.Format(time.RFC3339Nano),
		"finished_at", result.FinishedAt.Format(time.RFC3339Nano),
		"duration_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
		"utterances", result.Utterances,
		"rejected", result.Rejected,
		"actions_executed", result.Executed,
		"actions_failed", result.Failed,
	}

	if result.Err != nil && !errors.Is(result.Err, context.Canceled) {
		logger.Error("daemon failed", append(fields, "error", result.Err.Error())...)
		return
	}
	logger.Info("daemon stopped", fields...)
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
