package keys

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rbright/linevox/internal/config"
)

// Injector sends keystrokes to the focused application, in order.
type Injector interface {
	Press(ctx context.Context, strokes ...Keystroke) error
}

// Typist types literal text into the focused application.
type Typist interface {
	Type(ctx context.Context, text string) error
}

// New builds the configured keystroke injector.
func New(cfg config.KeysConfig, logger *slog.Logger) (Injector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "hypr":
		return NewHypr(), nil
	case "command":
		return CommandInjector{Argv: cfg.KeyCmd.Argv}, nil
	case "uinput":
		return NewUinput(time.Duration(cfg.UinputWarmupMS)*time.Millisecond, logger), nil
	default:
		return nil, fmt.Errorf("unsupported keys backend %q", cfg.Backend)
	}
}

// NewTypist builds the configured text typist.
func NewTypist(cfg config.KeysConfig) Typist {
	return CommandTypist{Argv: cfg.TypeCmd.Argv}
}

// sendFunc delivers one pause-free run of keystrokes.
type sendFunc func(ctx context.Context, strokes []Keystroke) error

// dispatch splits strokes into runs ending at each pause, sends every run,
// and sleeps for the pause before continuing.
func dispatch(ctx context.Context, strokes []Keystroke, send sendFunc) error {
	start := 0
	for i, stroke := range strokes {
		if stroke.Pause <= 0 && i != len(strokes)-1 {
			continue
		}
		if err := send(ctx, strokes[start:i+1]); err != nil {
			return err
		}
		start = i + 1
		if stroke.Pause > 0 {
			if err := sleep(ctx, stroke.Pause); err != nil {
				return err
			}
		}
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
