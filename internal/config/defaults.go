package config

// MaxSeriesLimit is the largest number of actions one utterance may carry.
const MaxSeriesLimit = 16

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	readCmd := "wl-paste --no-newline"
	writeCmd := "wl-copy"
	typeCmd := "wtype -"

	return Config{
		Clipboard: ClipboardConfig{
			Backend:  "command",
			Read:     CommandConfig{Raw: readCmd, Argv: mustParseArgv(readCmd)},
			Write:    CommandConfig{Raw: writeCmd, Argv: mustParseArgv(writeCmd)},
			SettleMS: 50,
		},
		Keys: KeysConfig{
			Backend:        "hypr",
			TypeCmd:        CommandConfig{Raw: typeCmd, Argv: mustParseArgv(typeCmd)},
			UinputWarmupMS: 2000,
		},
		Grammar: GrammarConfig{
			MaxSeries: MaxSeriesLimit,
			MaxCount:  1000,
			Tokens:    map[string]string{},
		},
		Notify: NotifyConfig{
			Enable:    true,
			Backend:   "hypr",
			AppName:   "linevox",
			TimeoutMS: 1600,
		},
	}
}
