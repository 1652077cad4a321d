package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// EnvSocketPath overrides the daemon socket location.
const EnvSocketPath = "LINEVOX_SOCKET"

// Defaults used by the daemon when claiming its socket.
const (
	AcquireProbeTimeout = 180 * time.Millisecond
	AcquireRetries      = 8
)

// ErrAlreadyRunning reports a responsive daemon already owning the socket.
var ErrAlreadyRunning = errors.New("linevox daemon already running")

// RuntimeSocketPath returns $LINEVOX_SOCKET, or linevox.sock under
// XDG_RUNTIME_DIR.
func RuntimeSocketPath() (string, error) {
	if override := strings.TrimSpace(os.Getenv(EnvSocketPath)); override != "" {
		return override, nil
	}
	runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR"))
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR is not set (or set %s)", EnvSocketPath)
	}
	return filepath.Join(runtimeDir, "linevox.sock"), nil
}

// Acquire listens on path, replacing a stale socket left by a dead daemon.
// A socket that answers a status probe is never removed. rescue runs after a
// stale socket is removed.
func Acquire(
	ctx context.Context,
	path string,
	probeTimeout time.Duration,
	retries int,
	rescue func(context.Context) error,
) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("ensure runtime socket dir: %w", err)
	}

	for attempt := 0; ; attempt++ {
		listener, err := net.Listen("unix", path)
		if err == nil {
			_ = os.Chmod(path, 0o600)
			return listener, nil
		}
		if !errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("listen unix %s: %w", path, err)
		}

		alive, probeErr := Probe(ctx, path, probeTimeout)
		switch {
		case alive:
			return nil, ErrAlreadyRunning
		case probeErr != nil:
			return nil, fmt.Errorf("probe existing socket %s: %w", path, probeErr)
		}

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("remove stale socket %s: %w", path, err)
		}
		if rescue != nil {
			_ = rescue(ctx)
		}

		if attempt >= retries {
			return nil, fmt.Errorf("failed to acquire socket %s after %d retries", path, retries)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(25*(attempt+1)) * time.Millisecond):
		}
	}
}

// Release closes listener and unlinks path if it still names our socket.
func Release(listener net.Listener, path string) error {
	closeErr := listener.Close()
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Join(closeErr, fmt.Errorf("remove socket %s: %w", path, err))
	}
	if errors.Is(closeErr, net.ErrClosed) {
		return nil
	}
	return closeErr
}
