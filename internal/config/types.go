// Package config resolves, parses, validates, and defaults linevox configuration.
package config

// Config is the fully materialized runtime configuration used by linevox.
type Config struct {
	Clipboard ClipboardConfig
	Keys      KeysConfig
	Grammar   GrammarConfig
	Notify    NotifyConfig
}

// ClipboardConfig selects how clipboard text is read and written.
type ClipboardConfig struct {
	Backend  string
	Read     CommandConfig
	Write    CommandConfig
	SettleMS int
}

// KeysConfig selects the keystroke injection backend.
type KeysConfig struct {
	Backend        string
	KeyCmd         CommandConfig
	TypeCmd        CommandConfig
	UinputWarmupMS int
}

// GrammarConfig bounds utterance parsing and adds user-defined tokens.
type GrammarConfig struct {
	MaxSeries int
	MaxCount  int
	Tokens    map[string]string
}

// NotifyConfig controls failure notifications.
type NotifyConfig struct {
	Enable    bool
	Backend   string
	AppName   string
	TimeoutMS int
	// Sound plays a short failure cue; SoundFile replaces the built-in tone.
	Sound     bool
	SoundFile string
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
