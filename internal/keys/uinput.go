package keys

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"
)

var uinputCodes = map[string]int{
	"left":      keybd_event.VK_LEFT,
	"right":     keybd_event.VK_RIGHT,
	"up":        keybd_event.VK_UP,
	"down":      keybd_event.VK_DOWN,
	"home":      keybd_event.VK_HOME,
	"end":       keybd_event.VK_END,
	"pgup":      keybd_event.VK_PAGEUP,
	"pgdown":    keybd_event.VK_PAGEDOWN,
	"delete":    keybd_event.VK_DELETE,
	"backspace": keybd_event.VK_BACKSPACE,
	"enter":     keybd_event.VK_ENTER,
	"tab":       keybd_event.VK_TAB,
	"escape":    keybd_event.VK_ESC,
	"space":     keybd_event.VK_SPACE,
	"a":         keybd_event.VK_A, "b": keybd_event.VK_B, "c": keybd_event.VK_C,
	"d": keybd_event.VK_D, "e": keybd_event.VK_E, "f": keybd_event.VK_F,
	"g": keybd_event.VK_G, "h": keybd_event.VK_H, "i": keybd_event.VK_I,
	"j": keybd_event.VK_J, "k": keybd_event.VK_K, "l": keybd_event.VK_L,
	"m": keybd_event.VK_M, "n": keybd_event.VK_N, "o": keybd_event.VK_O,
	"p": keybd_event.VK_P, "q": keybd_event.VK_Q, "r": keybd_event.VK_R,
	"s": keybd_event.VK_S, "t": keybd_event.VK_T, "u": keybd_event.VK_U,
	"v": keybd_event.VK_V, "w": keybd_event.VK_W, "x": keybd_event.VK_X,
	"y": keybd_event.VK_Y, "z": keybd_event.VK_Z,
	"0": keybd_event.VK_0, "1": keybd_event.VK_1, "2": keybd_event.VK_2,
	"3": keybd_event.VK_3, "4": keybd_event.VK_4, "5": keybd_event.VK_5,
	"6": keybd_event.VK_6, "7": keybd_event.VK_7, "8": keybd_event.VK_8,
	"9": keybd_event.VK_9,
}

// Uinput injects keystrokes through a virtual /dev/uinput keyboard. It works
// outside Hyprland but needs write access to /dev/uinput.
type Uinput struct {
	warmup time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	bonding *keybd_event.KeyBonding
}

// NewUinput returns a uinput injector. The device is created on first use;
// warmup is how long to wait for the compositor to pick it up.
func NewUinput(warmup time.Duration, logger *slog.Logger) *Uinput {
	return &Uinput{warmup: warmup, logger: logger}
}

// Press sends strokes one chord at a time.
func (u *Uinput) Press(ctx context.Context, strokes ...Keystroke) error {
	if len(strokes) == 0 {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	kb, err := u.device(ctx)
	if err != nil {
		return err
	}

	return dispatch(ctx, strokes, func(ctx context.Context, run []Keystroke) error {
		for _, stroke := range run {
			code, ok := uinputCodes[stroke.Key]
			if !ok {
				return fmt.Errorf("no uinput code for key %q", stroke.Key)
			}
			kb.Clear()
			kb.SetKeys(code)
			kb.HasCTRL(stroke.Has(ModCtrl))
			kb.HasALT(stroke.Has(ModAlt))
			kb.HasSHIFT(stroke.Has(ModShift))
			kb.HasSuper(stroke.Has(ModSuper))
			for i := 0; i < stroke.Repeat; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := kb.Launching(); err != nil {
					return fmt.Errorf("uinput %s: %w", stroke, err)
				}
			}
		}
		return nil
	})
}

func (u *Uinput) device(ctx context.Context) (*keybd_event.KeyBonding, error) {
	if u.bonding != nil {
		return u.bonding, nil
	}

	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return nil, fmt.Errorf("create uinput keyboard: %w", err)
	}
	if u.logger != nil {
		u.logger.Debug("uinput keyboard created", "warmup_ms", u.warmup.Milliseconds())
	}
	if err := sleep(ctx, u.warmup); err != nil {
		return nil, err
	}
	u.bonding = &kb
	return u.bonding, nil
}
