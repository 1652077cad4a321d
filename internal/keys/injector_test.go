package keys

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/hypr"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	t.Parallel()

	injector, err := New(config.KeysConfig{Backend: ""}, nil)
	require.NoError(t, err)
	require.IsType(t, &Hypr{}, injector)

	injector, err = New(config.KeysConfig{Backend: " Command ", KeyCmd: config.CommandConfig{Argv: []string{"xdotool", "key", "{chord}"}}}, nil)
	require.NoError(t, err)
	require.Equal(t, CommandInjector{Argv: []string{"xdotool", "key", "{chord}"}}, injector)

	injector, err = New(config.KeysConfig{Backend: "uinput", UinputWarmupMS: 10}, nil)
	require.NoError(t, err)
	require.IsType(t, &Uinput{}, injector)

	_, err = New(config.KeysConfig{Backend: "telepathy"}, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported keys backend")
}

func TestDispatchSplitsAtPauses(t *testing.T) {
	t.Parallel()

	strokes := MustParse("s-end, c-c/1, left, right")
	var runs [][]string
	err := dispatch(context.Background(), strokes, func(_ context.Context, run []Keystroke) error {
		var names []string
		for _, s := range run {
			names = append(names, s.String())
		}
		runs = append(runs, names)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, [][]string{{"s-end", "c-c/1"}, {"left", "right"}}, runs)
}

func TestDispatchStopsOnError(t *testing.T) {
	t.Parallel()

	calls := 0
	err := dispatch(context.Background(), MustParse("left/1, right"), func(context.Context, []Keystroke) error {
		calls++
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	require.Equal(t, 1, calls)
}

func TestShortcutPayloadsExpandRepeats(t *testing.T) {
	t.Parallel()

	payloads, err := shortcutPayloads(MustParse("cs-right:2, backspace, w-3, left:0"), "0xabc")
	require.NoError(t, err)
	require.Equal(t, []string{
		"CTRL SHIFT,Right,address:0xabc",
		"CTRL SHIFT,Right,address:0xabc",
		",BackSpace,address:0xabc",
		"SUPER,3,address:0xabc",
	}, payloads)

	_, err = shortcutPayloads(MustParse("left"), " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "address")
}

func TestHyprPressResolvesWindowOnceAndBatches(t *testing.T) {
	t.Parallel()

	resolves := 0
	var batches [][]string
	h := &Hypr{
		resolve: func(context.Context) (hypr.ActiveWindow, error) {
			resolves++
			if resolves == 1 {
				return hypr.ActiveWindow{}, errors.New("no window yet")
			}
			return hypr.ActiveWindow{Address: "0x1"}, nil
		},
		send: func(_ context.Context, payloads []string) error {
			batches = append(batches, payloads)
			return nil
		},
		retryAttempts: 3,
		retryDelay:    time.Millisecond,
	}

	require.NoError(t, h.Press(context.Background(), MustParse("s-end, c-c/1, left")...))
	require.Equal(t, 2, resolves)
	require.Equal(t, [][]string{
		{"SHIFT,End,address:0x1", "CTRL,C,address:0x1"},
		{",Left,address:0x1"},
	}, batches)
}

func TestHyprPressHonorsContextCancel(t *testing.T) {
	t.Parallel()

	h := &Hypr{
		resolve: func(context.Context) (hypr.ActiveWindow, error) {
			return hypr.ActiveWindow{}, errors.New("unavailable")
		},
		send:          func(context.Context, []string) error { return nil },
		retryAttempts: 3,
		retryDelay:    10 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := h.Press(ctx, MustParse("left")...)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHyprPressDispatchesThroughHyprctl(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "hypr-args.log")
	t.Setenv("HYPR_ARGS_FILE", argsFile)
	installHyprctlStub(t)

	require.NoError(t, NewHypr().Press(context.Background(), MustParse("c-backspace")...))

	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "--quiet dispatch sendshortcut CTRL,BackSpace,address:0xabc")
}

func TestCommandInjectorRepeatsWithoutCountPlaceholder(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "keys.log")
	script := writeArgsLogScript(t, logPath)

	injector := CommandInjector{Argv: []string{script, "key", "{chord}"}}
	require.NoError(t, injector.Press(context.Background(), MustParse("s-right:2, delete, left:0")...))

	require.Equal(t, []string{"key shift+Right", "key shift+Right", "key Delete"}, readLines(t, logPath))
}

func TestCommandInjectorPassesCount(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "keys.log")
	script := writeArgsLogScript(t, logPath)

	injector := CommandInjector{Argv: []string{script, "key", "--repeat", "{count}", "{chord}"}}
	require.NoError(t, injector.Press(context.Background(), MustParse("cs-left:3, c-c")...))

	require.Equal(t, []string{"key --repeat 3 ctrl+shift+Left", "key --repeat 1 ctrl+c"}, readLines(t, logPath))
}

func TestCommandInjectorRejectsEmptyArgv(t *testing.T) {
	err := CommandInjector{}.Press(context.Background(), MustParse("left")...)
	require.Error(t, err)
	require.Contains(t, err.Error(), "argv cannot be empty")
}

func TestCommandTypistWritesStdin(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "typed.txt")
	script := filepath.Join(dir, "type.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\nset -euo pipefail\ncat > \"$1\"\n"), 0o755))

	typist := CommandTypist{Argv: []string{script, out}}
	require.NoError(t, typist.Type(context.Background(), "hello"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	require.NoError(t, CommandTypist{}.Type(context.Background(), ""))
	err = CommandTypist{}.Type(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not configured")
}

func TestCommandTypistIncludesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "type.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/usr/bin/env bash\necho 'compositor does not support virtual keyboard' >&2\nexit 1\n"), 0o755))

	err := CommandTypist{Argv: []string{script}}.Type(context.Background(), "x")
	require.Error(t, err)
	require.Contains(t, err.Error(), "virtual keyboard")
}

func installHyprctlStub(t *testing.T) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hyprctl")
	script := `#!/usr/bin/env bash
set -euo pipefail
if [[ "${1:-}" == "-j" && "${2:-}" == "activewindow" ]]; then
  echo '{"address":"0xabc","class":"foot","initialClass":"foot"}'
  exit 0
fi
printf '%s\n' "$*" >> "${HYPR_ARGS_FILE}"
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}

func writeArgsLogScript(t *testing.T, logPath string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "keytool.sh")
	script := "#!/usr/bin/env bash\nset -euo pipefail\nprintf '%s\\n' \"$*\" >> " + logPath + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
