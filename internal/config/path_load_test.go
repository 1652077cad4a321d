package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/from-env.jsonc")
	explicit := "/tmp/custom.jsonc"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	resolved, err = ResolvePath("  ")
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-env.jsonc", resolved)

	t.Setenv(EnvConfigPath, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "linevox", "config.jsonc"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "linevox", "config.jsonc"), resolved)
}

func TestResolvePathExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvConfigPath, "~/dots/linevox.jsonc")

	resolved, err := ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "dots", "linevox.jsonc"), resolved)

	resolved, err = ResolvePath("~/other.jsonc")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "other.jsonc"), resolved)
}

func TestLoadDirectoryFails(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonc")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingJSONCParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	contents := `
{
  "clipboard": {
    "read_cmd": "xclip -selection clipboard -o",
    "write_cmd": "xclip -selection clipboard"
  },
  "notify": {
    "enable": false
  }
}
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, path, loaded.Path)
	require.Equal(t, []string{"xclip", "-selection", "clipboard", "-o"}, loaded.Config.Clipboard.Read.Argv)
	require.Equal(t, []string{"xclip", "-selection", "clipboard"}, loaded.Config.Clipboard.Write.Argv)
	require.False(t, loaded.Config.Notify.Enable)
}

func TestLoadParseErrorIncludesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{ not-json }"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
	require.Contains(t, err.Error(), path)
}
