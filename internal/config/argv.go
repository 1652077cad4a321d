package config

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z]+)\}`)

// Placeholders returns the distinct {name} placeholders in the command, sorted.
func (c CommandConfig) Placeholders() []string {
	seen := map[string]bool{}
	for _, arg := range c.Argv {
		for _, m := range placeholderPattern.FindAllStringSubmatch(arg, -1) {
			seen[m[1]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Has reports whether the command uses the {name} placeholder.
func (c CommandConfig) Has(name string) bool {
	for _, arg := range c.Argv {
		if strings.Contains(arg, "{"+name+"}") {
			return true
		}
	}
	return false
}

// Expand returns a copy of Argv with each {name} replaced by values[name].
// Unknown placeholders are left as written.
func (c CommandConfig) Expand(values map[string]string) []string {
	out := make([]string, len(c.Argv))
	for i, arg := range c.Argv {
		out[i] = placeholderPattern.ReplaceAllStringFunc(arg, func(m string) string {
			if v, ok := values[m[1:len(m)-1]]; ok {
				return v
			}
			return m
		})
	}
	return out
}

// parseArgv splits a command string the way a POSIX shell would for plain
// words: single quotes are literal, double quotes honour \" and \\, and a
// backslash outside quotes escapes the next rune. A leading # disables the
// command.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv    []string
		current strings.Builder
		inWord  bool
		quote   rune
		escape  bool
	)

	for _, r := range input {
		switch {
		case escape:
			if quote == '"' && r != '"' && r != '\\' {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			escape = false
		case quote == '\'':
			if r == '\'' {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\\':
			escape, inWord = true, true
		case quote == '"':
			if r == '"' {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if escape {
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	if inWord {
		argv = append(argv, current.String())
	}
	return argv, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
