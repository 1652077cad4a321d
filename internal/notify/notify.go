// Package notify surfaces failed editing actions to the user.
package notify

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/hypr"
)

const (
	failureColor   = "rgb(f38ba8)"
	failureIcon    = 3
	defaultTimeout = 1600
	dispatchBudget = 400 * time.Millisecond
	cueBudget      = 2 * time.Second
)

// Dispatcher routes failure notifications through the configured backend:
// Hyprland's notify dispatcher, a freedesktop notification via busctl, or
// the platform notifier through beeep.
type Dispatcher struct {
	cfg    config.NotifyConfig
	logger *slog.Logger

	mu        sync.Mutex
	busctlID  uint32
	beeepSend func(title, message string) error
	playCue   func(ctx context.Context, file string) error
}

// New creates a notification dispatcher from config.
func New(cfg config.NotifyConfig, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:    cfg,
		logger: logger,
		beeepSend: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		playCue: playFailureCue,
	}
}

// Failed shows text as an error notification and plays the failure cue
// when sound is on. Delivery failures are only logged.
func (d *Dispatcher) Failed(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if d.cfg.Sound {
		d.cue(ctx)
	}
	if !d.cfg.Enable {
		return
	}
	timeout := d.cfg.TimeoutMS
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	d.run(ctx, func(ctx context.Context) error {
		switch d.backend() {
		case "desktop":
			return d.beeepSend(d.appName(), text)
		case "busctl":
			return d.notifyBusctl(ctx, text, timeout)
		default:
			return hypr.Notify(ctx, failureIcon, timeout, failureColor, text)
		}
	})
}

// Dismiss clears the last notification where the backend supports it.
func (d *Dispatcher) Dismiss(ctx context.Context) {
	if !d.cfg.Enable {
		return
	}
	d.run(ctx, func(ctx context.Context) error {
		switch d.backend() {
		case "desktop":
			return nil
		case "busctl":
			return d.dismissBusctl(ctx)
		default:
			return hypr.DismissNotify(ctx)
		}
	})
}

func (d *Dispatcher) backend() string {
	return strings.ToLower(strings.TrimSpace(d.cfg.Backend))
}

func (d *Dispatcher) appName() string {
	if name := strings.TrimSpace(d.cfg.AppName); name != "" {
		return name
	}
	return "linevox"
}

// notifyBusctl replaces the previous busctl notification so failures in
// quick succession do not stack.
func (d *Dispatcher) notifyBusctl(ctx context.Context, text string, timeoutMS int) error {
	d.mu.Lock()
	replaceID := d.busctlID
	d.mu.Unlock()

	id, err := busctlNotify(ctx, d.appName(), replaceID, text, timeoutMS)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.busctlID = id
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) dismissBusctl(ctx context.Context) error {
	d.mu.Lock()
	id := d.busctlID
	d.busctlID = 0
	d.mu.Unlock()

	if id == 0 {
		return nil
	}
	return busctlClose(ctx, id)
}

func (d *Dispatcher) cue(ctx context.Context) {
	cueCtx, cancel := context.WithTimeout(ctx, cueBudget)
	defer cancel()
	if err := d.playCue(cueCtx, d.cfg.SoundFile); err != nil && d.logger != nil {
		d.logger.Debug("failure cue failed", "error", err.Error())
	}
}

// run executes a notification with a bounded timeout.
func (d *Dispatcher) run(ctx context.Context, fn func(context.Context) error) {
	runCtx, cancel := context.WithTimeout(ctx, dispatchBudget)
	defer cancel()
	if err := fn(runCtx); err != nil && d.logger != nil {
		d.logger.Debug("notification dispatch failed", "backend", d.backend(), "error", err.Error())
	}
}
