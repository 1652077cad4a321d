package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	switch cfg.Clipboard.Backend {
	case "command":
		if len(cfg.Clipboard.Read.Argv) == 0 {
			return nil, fmt.Errorf("clipboard.read_cmd must not be empty when clipboard.backend=command")
		}
		if len(cfg.Clipboard.Write.Argv) == 0 {
			return nil, fmt.Errorf("clipboard.write_cmd must not be empty when clipboard.backend=command")
		}
	case "system":
	default:
		return nil, fmt.Errorf("clipboard.backend must be one of: command, system")
	}
	if cfg.Clipboard.SettleMS < 0 {
		return nil, fmt.Errorf("clipboard.settle_ms must be >= 0")
	}

	switch cfg.Keys.Backend {
	case "hypr":
	case "command":
		if len(cfg.Keys.KeyCmd.Argv) == 0 {
			return nil, fmt.Errorf("keys.key_cmd must not be empty when keys.backend=command")
		}
		if !cfg.Keys.KeyCmd.Has("chord") {
			return nil, fmt.Errorf("keys.key_cmd must contain a {chord} placeholder")
		}
		for _, name := range cfg.Keys.KeyCmd.Placeholders() {
			if name != "chord" && name != "count" {
				return nil, fmt.Errorf("keys.key_cmd has unknown placeholder {%s}; use {chord} or {count}", name)
			}
		}
	case "uinput":
		if cfg.Keys.UinputWarmupMS < 0 {
			return nil, fmt.Errorf("keys.uinput_warmup_ms must be >= 0")
		}
	default:
		return nil, fmt.Errorf("keys.backend must be one of: hypr, command, uinput")
	}
	if len(cfg.Keys.TypeCmd.Argv) == 0 {
		warnings = append(warnings, Warning{Message: "keys.type_cmd is empty; dictated words cannot be typed"})
	}
	if names := cfg.Keys.TypeCmd.Placeholders(); len(names) > 0 {
		warnings = append(warnings, Warning{Message: fmt.Sprintf("keys.type_cmd placeholders are not expanded: {%s}", strings.Join(names, "}, {"))})
	}

	if cfg.Grammar.MaxSeries < 1 || cfg.Grammar.MaxSeries > MaxSeriesLimit {
		return nil, fmt.Errorf("grammar.max_series must be between 1 and %d", MaxSeriesLimit)
	}
	if cfg.Grammar.MaxCount < 1 {
		return nil, fmt.Errorf("grammar.max_count must be > 0")
	}

	names := make([]string, 0, len(cfg.Grammar.Tokens))
	for name := range cfg.Grammar.Tokens {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		expr := cfg.Grammar.Tokens[name]
		if expr == "" {
			return nil, fmt.Errorf("grammar.tokens[%q] must not be empty", name)
		}
		if _, err := regexp.Compile(expr); err != nil {
			return nil, fmt.Errorf("grammar.tokens[%q]: %w", name, err)
		}
	}

	if cfg.Notify.Enable {
		switch cfg.Notify.Backend {
		case "hypr":
		case "desktop", "busctl":
			if strings.TrimSpace(cfg.Notify.AppName) == "" {
				return nil, fmt.Errorf("notify.app_name must not be empty when notify.backend=%s", cfg.Notify.Backend)
			}
		default:
			return nil, fmt.Errorf("notify.backend must be one of: hypr, desktop, busctl")
		}
	}
	if cfg.Notify.TimeoutMS < 0 {
		return nil, fmt.Errorf("notify.timeout_ms must be >= 0")
	}
	if cfg.Notify.SoundFile != "" && !cfg.Notify.Sound {
		warnings = append(warnings, Warning{Message: "notify.sound_file is set but notify.sound is false"})
	}

	return warnings, nil
}
