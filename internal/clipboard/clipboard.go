// Package clipboard reads and writes system clipboard text and brackets scratch use with a snapshot.
package clipboard

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rbright/linevox/internal/config"
)

// Clipboard is the text clipboard capability consumed by edit sessions.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}

// New builds the configured clipboard backend.
func New(cfg config.ClipboardConfig) (Clipboard, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", "command":
		return Command{ReadArgv: cfg.Read.Argv, WriteArgv: cfg.Write.Argv}, nil
	case "system":
		return System{}, nil
	default:
		return nil, fmt.Errorf("unsupported clipboard backend %q", cfg.Backend)
	}
}

// Command drives the clipboard through external read/write commands
// (wl-paste/wl-copy by default).
type Command struct {
	ReadArgv  []string
	WriteArgv []string
}

// ReadText returns the clipboard text printed by the read command.
func (c Command) ReadText(ctx context.Context) (string, error) {
	readCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	out, err := runCommandOutput(readCtx, c.ReadArgv)
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return out, nil
}

// WriteText replaces the clipboard with text via the write command.
func (c Command) WriteText(ctx context.Context, text string) error {
	writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := runCommandWithInput(writeCtx, c.WriteArgv, text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// System uses github.com/atotto/clipboard, which picks xclip, xsel, or
// wl-clipboard at runtime.
type System struct{}

func (System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// runCommandWithInput executes argv and optionally writes input to stdin.
func runCommandWithInput(ctx context.Context, argv []string, input string) error {
	if len(argv) == 0 {
		return fmt.Errorf("command argv cannot be empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}

// runCommandOutput executes argv and returns its stdout verbatim.
func runCommandOutput(ctx context.Context, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("command argv cannot be empty")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		trimmed := strings.TrimSpace(stderr.String())
		if trimmed == "" {
			return "", fmt.Errorf("run %s: %w", argv[0], err)
		}
		return "", fmt.Errorf("run %s: %w (%s)", argv[0], err, trimmed)
	}
	return stdout.String(), nil
}
