package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigPath overrides the config location when no --config is given.
const EnvConfigPath = "LINEVOX_CONFIG"

// Loaded captures resolved config path, parsed values, and non-fatal warnings.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}

// ResolvePath picks the config file: explicit path, then $LINEVOX_CONFIG,
// then $XDG_CONFIG_HOME/linevox/config.jsonc, then ~/.config. A leading ~/
// is expanded in the first two.
func ResolvePath(explicit string) (string, error) {
	for _, candidate := range []string{explicit, os.Getenv(EnvConfigPath)} {
		if candidate = strings.TrimSpace(candidate); candidate != "" {
			return expandHome(candidate)
		}
	}

	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "linevox", "config.jsonc"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("unable to resolve user home for config fallback")
	}
	return filepath.Join(home, ".config", "linevox", "config.jsonc"), nil
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Load resolves, reads, parses, and validates the runtime configuration. A
// missing file yields the defaults with a warning.
func Load(explicitPath string) (Loaded, error) {
	path, err := ResolvePath(explicitPath)
	if err != nil {
		return Loaded{}, err
	}

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Loaded{
			Path:     path,
			Config:   Default(),
			Warnings: []Warning{{Message: fmt.Sprintf("config file %q not found; using defaults", path)}},
		}, nil
	case err != nil:
		return Loaded{}, fmt.Errorf("read config %q: %w", path, err)
	}

	cfg, warnings, err := Parse(string(content), Default())
	if err != nil {
		return Loaded{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return Loaded{Path: path, Config: cfg, Warnings: warnings, Exists: true}, nil
}
