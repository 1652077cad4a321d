package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rbright/linevox/internal/config"
	"github.com/stretchr/testify/require"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckEnv(t *testing.T) {
	t.Setenv("TEST_DOCTOR_ENV", "wayland")

	check := checkEnv(
		"TEST_DOCTOR_ENV",
		func(v string) bool { return strings.EqualFold(v, "wayland") },
		"looks good",
		"unexpected",
	)

	require.True(t, check.Pass)
	require.Equal(t, "looks good", check.Message)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "keys.type_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := fakeBins(t, "fake-bin")

	check := checkCommand([]string{"fake-bin", "--arg"}, "clipboard.read_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "clipboard.read_cmd command is available")
	require.Contains(t, check.Message, dir)
}

func TestCheckAnyBinary(t *testing.T) {
	fakeBins(t, "xsel")

	check := checkAnyBinary("clipboard", []string{"definitely-not-wl-copy", "xsel"})
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "xsel")

	check = checkAnyBinary("clipboard", []string{"definitely-missing-a", "definitely-missing-b"})
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "none of definitely-missing-a, definitely-missing-b")
}

func TestCheckGrammar(t *testing.T) {
	cfg := config.Default().Grammar
	cfg.Tokens = map[string]string{"comma": ";", "arrow": "->"}
	check := checkGrammar(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "overrides built-in comma")

	cfg.MaxSeries = 0
	check = checkGrammar(cfg)
	require.False(t, check.Pass)
	require.Equal(t, "grammar", check.Name)
}

func TestCheckWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uinput")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	require.True(t, checkWritable(path).Pass)

	check := checkWritable(filepath.Join(t.TempDir(), "missing"))
	require.False(t, check.Pass)
	require.Equal(t, "uinput", check.Name)
}

func TestRunUsesKeyCmdForCommandBackend(t *testing.T) {
	fakeBins(t, "fake-key", "wl-paste", "wl-copy", "wtype")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")

	cfg := config.Default()
	cfg.Keys.Backend = "command"
	cfg.Keys.KeyCmd = config.CommandConfig{Raw: "fake-key {chord}", Argv: []string{"fake-key", "{chord}"}}
	cfg.Notify.Enable = false

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.True(t, report.OK(), report.String())
	require.Equal(t, []string{"config", "XDG_SESSION_TYPE", "HYPRLAND_INSTANCE_SIGNATURE", "grammar", "wl-paste", "wl-copy", "fake-key", "wtype"}, checkNames(report))
}

func TestRunChecksHyprctlForDefaultBackends(t *testing.T) {
	fakeBins(t, "hyprctl", "wl-paste", "wl-copy", "wtype")
	t.Setenv("XDG_SESSION_TYPE", "wayland")
	t.Setenv("HYPRLAND_INSTANCE_SIGNATURE", "abc123")

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: config.Default()})
	require.True(t, report.OK(), report.String())

	var hyprChecks int
	for _, name := range checkNames(report) {
		if name == "hyprctl" {
			hyprChecks++
		}
	}
	require.Equal(t, 2, hyprChecks)
}

func TestRunSkipsDisabledNotify(t *testing.T) {
	_, ok := notifyCheck(config.NotifyConfig{Enable: false, Backend: "busctl"})
	require.False(t, ok)

	check, ok := notifyCheck(config.NotifyConfig{Enable: true, Backend: "desktop"})
	require.True(t, ok)
	require.True(t, check.Pass)
}

func fakeBins(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	}
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
	return dir
}

func checkNames(report Report) []string {
	names := make([]string, 0, len(report.Checks))
	for _, check := range report.Checks {
		names = append(names, check.Name)
	}
	return names
}
