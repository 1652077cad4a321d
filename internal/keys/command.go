package keys

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rbright/linevox/internal/config"
)

const commandTimeout = 2 * time.Second

// CommandInjector runs an external key tool (xdotool, ydotool, wtype, ...)
// once per keystroke. "{chord}" in Argv is replaced with an xdotool-style
// chord such as "ctrl+shift+Right". When Argv also carries "{count}" the
// repeat is passed through; otherwise the command runs once per repetition.
type CommandInjector struct {
	Argv []string
}

// Press runs the key command for each stroke in order.
func (c CommandInjector) Press(ctx context.Context, strokes ...Keystroke) error {
	if len(c.Argv) == 0 {
		return fmt.Errorf("key command argv cannot be empty")
	}

	cmd := config.CommandConfig{Argv: c.Argv}
	withCount := cmd.Has("count")

	return dispatch(ctx, strokes, func(ctx context.Context, run []Keystroke) error {
		for _, stroke := range run {
			if stroke.Repeat == 0 {
				continue
			}
			chord, err := xdoChord(stroke)
			if err != nil {
				return err
			}

			runs := stroke.Repeat
			if withCount {
				runs = 1
			}
			argv := cmd.Expand(map[string]string{"chord": chord, "count": strconv.Itoa(stroke.Repeat)})
			for i := 0; i < runs; i++ {
				if err := runKeyCommand(ctx, argv, ""); err != nil {
					return fmt.Errorf("press %s: %w", stroke, err)
				}
			}
		}
		return nil
	})
}

// CommandTypist types text by writing it to the stdin of Argv.
type CommandTypist struct {
	Argv []string
}

// Type sends text to the configured type command.
func (c CommandTypist) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if len(c.Argv) == 0 {
		return fmt.Errorf("type command is not configured")
	}
	if err := runKeyCommand(ctx, c.Argv, text); err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

func xdoChord(stroke Keystroke) (string, error) {
	sym, err := keysym(stroke.Key)
	if err != nil {
		return "", err
	}
	if len(stroke.Key) == 1 {
		sym = stroke.Key
	}

	var parts []string
	if stroke.Has(ModCtrl) {
		parts = append(parts, "ctrl")
	}
	if stroke.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if stroke.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if stroke.Has(ModSuper) {
		parts = append(parts, "super")
	}
	return strings.Join(append(parts, sym), "+"), nil
}

func runKeyCommand(ctx context.Context, argv []string, input string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, argv[0], argv[1:]...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(output))
		if trimmed == "" {
			return fmt.Errorf("run %s: %w", argv[0], err)
		}
		return fmt.Errorf("run %s: %w (%s)", argv[0], err, trimmed)
	}
	return nil
}
