// Package series executes the actions of one utterance in spoken order.
package series

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rbright/linevox/internal/edit"
	"github.com/rbright/linevox/internal/grammar"
	"github.com/rbright/linevox/internal/keys"
)

// Editor is the set of editing operations a series can dispatch to.
type Editor interface {
	Just(ctx context.Context, text string) error
	Keys(ctx context.Context, strokes []keys.Keystroke) error
	JumpForward(ctx context.Context, text, token string, n int) error
	JumpBackward(ctx context.Context, text, token string, n int) error
	SelectForward(ctx context.Context, text, token string, n int) error
	SelectBackward(ctx context.Context, text, token string, n int) error
	SelectNext(ctx context.Context) error
	DeleteForward(ctx context.Context, n int) error
	DeleteBackward(ctx context.Context, n int) error
}

// Notifier is told about every failed action.
type Notifier interface {
	Failed(ctx context.Context, text string)
}

type handler func(ctx context.Context, ed Editor, a grammar.Action) error

var handlers = map[grammar.Kind]handler{
	grammar.KindJust: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.Just(ctx, a.Text)
	},
	grammar.KindKeys: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.Keys(ctx, a.Strokes)
	},
	grammar.KindJumpForward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.JumpForward(ctx, a.Text, a.Token, a.Count)
	},
	grammar.KindJumpBackward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.JumpBackward(ctx, a.Text, a.Token, a.Count)
	},
	grammar.KindSelectForward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.SelectForward(ctx, a.Text, a.Token, a.Count)
	},
	grammar.KindSelectBackward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.SelectBackward(ctx, a.Text, a.Token, a.Count)
	},
	grammar.KindSelectNext: func(ctx context.Context, ed Editor, _ grammar.Action) error {
		return ed.SelectNext(ctx)
	},
	grammar.KindDeleteForward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.DeleteForward(ctx, a.Count)
	},
	grammar.KindDeleteBackward: func(ctx context.Context, ed Editor, a grammar.Action) error {
		return ed.DeleteBackward(ctx, a.Count)
	},
}

// Outcome records how one action went.
type Outcome struct {
	Action   grammar.Action
	Err      error
	Duration time.Duration
}

// Result summarizes a series run.
type Result struct {
	Outcomes []Outcome
	Executed int
	Failed   int
}

// Err returns the first action error, or nil.
func (r Result) Err() error {
	for _, o := range r.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Runner dispatches actions to an Editor one at a time.
type Runner struct {
	editor   Editor
	notifier Notifier
	logger   *slog.Logger
}

// NewRunner builds a runner. notifier and logger may be nil.
func NewRunner(editor Editor, notifier Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{editor: editor, notifier: notifier, logger: logger}
}

// Run executes actions in order. A failing or panicking action is recorded
// and the remaining actions still run; nothing is rolled back.
func (r *Runner) Run(ctx context.Context, actions []grammar.Action) Result {
	result := Result{Outcomes: make([]Outcome, 0, len(actions))}
	for i, action := range actions {
		started := time.Now()
		err := r.runOne(ctx, action)
		outcome := Outcome{Action: action, Err: err, Duration: time.Since(started)}
		result.Outcomes = append(result.Outcomes, outcome)
		result.Executed++

		attrs := []any{
			"index", i,
			"action", action.String(),
			"phrase", action.Phrase,
			"duration_ms", outcome.Duration.Milliseconds(),
		}
		if err != nil {
			result.Failed++
			r.logger.Warn("action failed", append(attrs, "error", err.Error())...)
			if r.notifier != nil {
				r.notifier.Failed(ctx, fmt.Sprintf("%s: %v", action.Phrase, err))
			}
			continue
		}
		r.logger.Debug("action done", attrs...)
	}
	return result
}

func (r *Runner) runOne(ctx context.Context, action grammar.Action) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("action %s panicked: %v", action.Kind, recovered)
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	h, ok := handlers[action.Kind]
	if !ok {
		return fmt.Errorf("no handler for action %s", action.Kind)
	}
	return h(ctx, r.editor, action)
}

var _ Editor = (*edit.Session)(nil)
