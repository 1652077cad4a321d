package hypr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ActiveWindow contains the fields needed to target shortcut dispatch.
type ActiveWindow struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
}

// QueryActiveWindow fetches and validates the active-window contract from hyprctl.
func QueryActiveWindow(ctx context.Context) (ActiveWindow, error) {
	output, err := runHyprctlOutput(ctx, "-j", "activewindow")
	if err != nil {
		return ActiveWindow{}, err
	}

	var window ActiveWindow
	if err := json.Unmarshal(output, &window); err != nil {
		return ActiveWindow{}, fmt.Errorf("decode hyprctl activewindow json: %w", err)
	}
	window.Address = strings.TrimSpace(window.Address)
	window.Class = strings.TrimSpace(window.Class)
	window.InitialClass = strings.TrimSpace(window.InitialClass)
	if window.Address == "" {
		return ActiveWindow{}, fmt.Errorf("hyprctl activewindow returned empty address")
	}
	return window, nil
}

// SendShortcut sends a literal hyprctl sendshortcut payload.
func SendShortcut(ctx context.Context, shortcut string) error {
	shortcut = strings.TrimSpace(shortcut)
	if shortcut == "" {
		return fmt.Errorf("sendshortcut requires a non-empty payload")
	}
	return runHyprctl(ctx, "--quiet", "dispatch", "sendshortcut", shortcut)
}

// SendShortcuts dispatches several sendshortcut payloads in one hyprctl
// --batch call, preserving order.
func SendShortcuts(ctx context.Context, shortcuts []string) error {
	if len(shortcuts) == 0 {
		return nil
	}
	if len(shortcuts) == 1 {
		return SendShortcut(ctx, shortcuts[0])
	}

	commands := make([]string, 0, len(shortcuts))
	for _, shortcut := range shortcuts {
		shortcut = strings.TrimSpace(shortcut)
		if shortcut == "" {
			return fmt.Errorf("sendshortcut requires a non-empty payload")
		}
		if strings.Contains(shortcut, ";") {
			return fmt.Errorf("sendshortcut payload %q cannot be batched", shortcut)
		}
		commands = append(commands, "dispatch sendshortcut "+shortcut)
	}
	return runHyprctl(ctx, "--batch", strings.Join(commands, " ; "))
}

// Notify sends a Hyprland notification payload.
func Notify(ctx context.Context, icon int, timeoutMS int, color string, text string) error {
	if strings.TrimSpace(color) == "" {
		color = "rgb(89b4fa)"
	}
	return runHyprctl(
		ctx,
		"--quiet",
		"dispatch",
		"notify",
		strconv.Itoa(icon),
		strconv.Itoa(timeoutMS),
		color,
		text,
	)
}

// DismissNotify dismisses active Hyprland notifications.
func DismissNotify(ctx context.Context) error {
	return runHyprctl(ctx, "--quiet", "dispatch", "dismissnotify")
}
