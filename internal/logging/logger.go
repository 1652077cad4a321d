// Package logging writes linevox's JSONL log under the XDG state directory.
package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	EnvLogLevel = "LINEVOX_LOG_LEVEL"

	// maxLogBytes is the size at which the previous log is moved to log.jsonl.1.
	maxLogBytes = 4 << 20
)

// Runtime is the process logger plus the file it writes to.
type Runtime struct {
	Logger *slog.Logger
	Path   string
	closer io.Closer
}

func (r Runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// New opens (rotating first if oversized) the JSONL log and returns a logger
// tagged with the process id, so daemon and say lines can be told apart.
func New() (Runtime, error) {
	path, err := resolveLogPath()
	if err != nil {
		return Runtime{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return Runtime{}, fmt.Errorf("create log dir: %w", err)
	}
	if err := rotate(path, maxLogBytes); err != nil {
		return Runtime{}, err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return Runtime{}, fmt.Errorf("open log file: %w", err)
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: levelFromEnv()})
	logger := slog.New(handler).With("pid", os.Getpid())
	return Runtime{Logger: logger, Path: path, closer: f}, nil
}

// rotate keeps a single previous generation.
func rotate(path string, limit int64) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("stat log file: %w", err)
	case info.Size() < limit:
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("rotate log file: %w", err)
	}
	return nil
}

// levelFromEnv reads debug, info, warn or error. Per-action traces are debug.
func levelFromEnv() slog.Level {
	var level slog.Level
	raw := strings.TrimSpace(os.Getenv(EnvLogLevel))
	if raw == "" || level.UnmarshalText([]byte(raw)) != nil {
		return slog.LevelInfo
	}
	return level
}

func resolveLogPath() (string, error) {
	dir := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve log path: %w", err)
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "linevox", "log.jsonl"), nil
}
