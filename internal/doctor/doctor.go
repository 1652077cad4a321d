// Package doctor runs readiness diagnostics for config, session, and the
// clipboard, key, and notify tools linevox drives.
package doctor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/grammar"
	"github.com/rbright/linevox/internal/tokens"
)

// uinputPath is the device the uinput key backend writes to.
var uinputPath = "/dev/uinput"

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkEnv("XDG_SESSION_TYPE", func(v string) bool {
		return strings.EqualFold(strings.TrimSpace(v), "wayland")
	}, "session type is wayland", "expected XDG_SESSION_TYPE=wayland"))

	checks = append(checks, checkEnv("HYPRLAND_INSTANCE_SIGNATURE", func(v string) bool {
		return strings.TrimSpace(v) != ""
	}, "Hyprland session detected", "HYPRLAND_INSTANCE_SIGNATURE is empty"))

	checks = append(checks, checkGrammar(cfg.Config.Grammar))
	checks = append(checks, clipboardChecks(cfg.Config.Clipboard)...)
	checks = append(checks, keyChecks(cfg.Config.Keys)...)
	if check, ok := notifyCheck(cfg.Config.Notify); ok {
		checks = append(checks, check)
	}

	return Report{Checks: checks}
}

// checkGrammar compiles the phrase table with the configured tokens.
func checkGrammar(cfg config.GrammarConfig) Check {
	g, err := grammar.Default(cfg)
	if err != nil {
		return Check{Name: "grammar", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("%d phrases, %d tokens", len(g.Phrases()), len(g.TokenNames()))
	if _, overridden := tokens.All(cfg.Tokens); len(overridden) > 0 {
		message += fmt.Sprintf(" (overrides built-in %s)", strings.Join(overridden, ", "))
	}
	return Check{Name: "grammar", Pass: true, Message: message}
}

func clipboardChecks(cfg config.ClipboardConfig) []Check {
	if strings.EqualFold(strings.TrimSpace(cfg.Backend), "system") {
		return []Check{checkAnyBinary("clipboard", []string{"wl-copy", "xclip", "xsel"})}
	}
	return []Check{
		checkCommand(cfg.Read.Argv, "clipboard.read_cmd"),
		checkCommand(cfg.Write.Argv, "clipboard.write_cmd"),
	}
}

func keyChecks(cfg config.KeysConfig) []Check {
	checks := []Check{}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "command":
		checks = append(checks, checkCommand(cfg.KeyCmd.Argv, "keys.key_cmd"))
	case "uinput":
		checks = append(checks, checkWritable(uinputPath))
	default:
		checks = append(checks, checkBinary("hyprctl", "hypr key backend requires hyprctl"))
	}
	checks = append(checks, checkCommand(cfg.TypeCmd.Argv, "keys.type_cmd"))
	return checks
}

func notifyCheck(cfg config.NotifyConfig) (Check, bool) {
	if !cfg.Enable {
		return Check{}, false
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "desktop":
		return Check{Name: "notify", Pass: true, Message: "desktop notifications via session bus"}, true
	case "busctl":
		return checkBinary("busctl", "busctl notify backend"), true
	default:
		return checkBinary("hyprctl", "hypr notify backend"), true
	}
}

// checkEnv validates an environment variable through a caller-supplied predicate.
func checkEnv(name string, predicate func(string) bool, okMsg, failMsg string) Check {
	value := os.Getenv(name)
	if predicate(value) {
		return Check{Name: name, Pass: true, Message: okMsg}
	}
	return Check{Name: name, Pass: false, Message: failMsg}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAnyBinary passes when at least one of bins is in PATH.
func checkAnyBinary(name string, bins []string) Check {
	for _, bin := range bins {
		if path, err := exec.LookPath(bin); err == nil {
			return Check{Name: name, Pass: true, Message: fmt.Sprintf("using %s", path)}
		}
	}
	return Check{Name: name, Pass: false, Message: fmt.Sprintf("none of %s found in PATH", strings.Join(bins, ", "))}
}

func checkWritable(path string) Check {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return Check{Name: "uinput", Pass: false, Message: err.Error()}
	}
	_ = f.Close()
	return Check{Name: "uinput", Pass: true, Message: fmt.Sprintf("%s is writable", path)}
}
