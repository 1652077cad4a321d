package keys

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rbright/linevox/internal/hypr"
)

// keysyms maps key names to the xkb keysym names hyprctl sendshortcut accepts.
var keysyms = map[string]string{
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
	"home":      "Home",
	"end":       "End",
	"pgup":      "Prior",
	"pgdown":    "Next",
	"delete":    "Delete",
	"backspace": "BackSpace",
	"enter":     "Return",
	"tab":       "Tab",
	"escape":    "Escape",
	"space":     "space",
}

// Hypr injects keystrokes with hyprctl sendshortcut, targeted at the
// active window's address.
type Hypr struct {
	resolve       func(context.Context) (hypr.ActiveWindow, error)
	send          func(context.Context, []string) error
	retryAttempts int
	retryDelay    time.Duration
}

// NewHypr returns a hyprctl-backed injector.
func NewHypr() *Hypr {
	return &Hypr{
		resolve:       hypr.QueryActiveWindow,
		send:          hypr.SendShortcuts,
		retryAttempts: 5,
		retryDelay:    10 * time.Millisecond,
	}
}

// Press resolves the active window once, then sends every run of strokes as
// a single hyprctl batch.
func (h *Hypr) Press(ctx context.Context, strokes ...Keystroke) error {
	if len(strokes) == 0 {
		return nil
	}

	window, err := h.activeWindowWithRetry(ctx)
	if err != nil {
		return err
	}

	return dispatch(ctx, strokes, func(ctx context.Context, run []Keystroke) error {
		payloads, err := shortcutPayloads(run, window.Address)
		if err != nil {
			return err
		}
		return h.send(ctx, payloads)
	})
}

func (h *Hypr) activeWindowWithRetry(ctx context.Context) (hypr.ActiveWindow, error) {
	attempts := h.retryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		window, err := h.resolve(ctx)
		if err == nil {
			return window, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return hypr.ActiveWindow{}, ctx.Err()
		case <-time.After(h.retryDelay):
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("active window unavailable")
	}
	return hypr.ActiveWindow{}, fmt.Errorf("resolve active window: %w", lastErr)
}

func shortcutPayloads(strokes []Keystroke, address string) ([]string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("active window address is required")
	}

	var payloads []string
	for _, stroke := range strokes {
		payload, err := shortcutPayload(stroke, address)
		if err != nil {
			return nil, err
		}
		for i := 0; i < stroke.Repeat; i++ {
			payloads = append(payloads, payload)
		}
	}
	return payloads, nil
}

func shortcutPayload(stroke Keystroke, address string) (string, error) {
	sym, err := keysym(stroke.Key)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s,%s,address:%s", hyprMods(stroke), sym, address), nil
}

func keysym(key string) (string, error) {
	if sym, ok := keysyms[key]; ok {
		return sym, nil
	}
	if len(key) == 1 {
		return strings.ToUpper(key), nil
	}
	return "", fmt.Errorf("no keysym for key %q", key)
}

func hyprMods(stroke Keystroke) string {
	var mods []string
	if stroke.Has(ModCtrl) {
		mods = append(mods, "CTRL")
	}
	if stroke.Has(ModAlt) {
		mods = append(mods, "ALT")
	}
	if stroke.Has(ModShift) {
		mods = append(mods, "SHIFT")
	}
	if stroke.Has(ModSuper) {
		mods = append(mods, "SUPER")
	}
	return strings.Join(mods, " ")
}
