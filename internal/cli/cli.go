// Package cli parses linevox command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandSay     Command = "say"
	CommandPhrases Command = "phrases"
	CommandStatus  Command = "status"
	CommandStop    Command = "stop"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:   {},
	CommandSay:     {},
	CommandPhrases: {},
	CommandStatus:  {},
	CommandStop:    {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// Parsed is the result of argument parsing. Args holds the words after say.
type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Args       []string
}

// Utterance joins the say arguments with single spaces.
func (p Parsed) Utterance() string {
	return strings.Join(strings.Fields(strings.Join(p.Args, " ")), " ")
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			rest := args[i+1:]
			if cmd == CommandSay {
				parsed.Args = append([]string(nil), rest...)
				if parsed.Utterance() == "" {
					return Parsed{}, errors.New("say requires an utterance")
				}
				return parsed, nil
			}
			if len(rest) > 0 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  serve          Run the daemon and execute utterances until stopped
  say WORDS...   Execute one utterance (forwarded to the daemon when running)
  phrases        Print the spoken phrase table and token names
  status         Print daemon state
  stop           Stop the running daemon
  doctor         Run configuration and environment checks
  version        Print version information
  help           Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/linevox/config.jsonc)
  -h, --help      Show help
  --version       Show version

Example:
  %[1]s say skip comma select next trunk
`, binaryName)
}
