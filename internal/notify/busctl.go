package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var busctlNotifications = []string{
	"--user",
	"call",
	"org.freedesktop.Notifications",
	"/org/freedesktop/Notifications",
	"org.freedesktop.Notifications",
}

// busctlNotify sends a freedesktop notification, replacing replaceID when it
// is non-zero, and returns the id the server assigned.
func busctlNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	out, err := runBusctl(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		"",
		"0", // actions
		"0", // hints
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, fmt.Errorf("busctl notify: %w", err)
	}

	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("busctl notify: unexpected reply %q", out)
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("busctl notify: parse id %q: %w", fields[1], err)
	}
	return uint32(id), nil
}

// busctlClose closes a notification by id.
func busctlClose(ctx context.Context, id uint32) error {
	if _, err := runBusctl(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("busctl close: %w", err)
	}
	return nil
}

func runBusctl(ctx context.Context, method string, args ...string) (string, error) {
	argv := append(append([]string{}, busctlNotifications...), method)
	argv = append(argv, args...)

	out, err := exec.CommandContext(ctx, "busctl", argv...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", err
		}
		return "", fmt.Errorf("%w (%s)", err, trimmed)
	}
	return trimmed, nil
}
