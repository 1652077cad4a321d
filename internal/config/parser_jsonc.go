package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Clipboard *jsoncClipboard `json:"clipboard"`
	Keys      *jsoncKeys      `json:"keys"`
	Grammar   *jsoncGrammar   `json:"grammar"`
	Notify    *jsoncNotify    `json:"notify"`
}

type jsoncClipboard struct {
	Backend  *string `json:"backend"`
	ReadCmd  *string `json:"read_cmd"`
	WriteCmd *string `json:"write_cmd"`
	SettleMS *int    `json:"settle_ms"`
}

type jsoncKeys struct {
	Backend        *string `json:"backend"`
	KeyCmd         *string `json:"key_cmd"`
	TypeCmd        *string `json:"type_cmd"`
	UinputWarmupMS *int    `json:"uinput_warmup_ms"`
}

type jsoncGrammar struct {
	MaxSeries *int              `json:"max_series"`
	MaxCount  *int              `json:"max_count"`
	Tokens    map[string]string `json:"tokens"`
}

type jsoncNotify struct {
	Enable    *bool   `json:"enable"`
	Backend   *string `json:"backend"`
	AppName   *string `json:"app_name"`
	TimeoutMS *int    `json:"timeout_ms"`
	Sound     *bool   `json:"sound"`
	SoundFile *string `json:"sound_file"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if c := payload.Clipboard; c != nil {
		if c.Backend != nil {
			cfg.Clipboard.Backend = strings.ToLower(strings.TrimSpace(*c.Backend))
		}
		if c.ReadCmd != nil {
			command, err := parseCommand("clipboard.read_cmd", *c.ReadCmd)
			if err != nil {
				return nil, err
			}
			cfg.Clipboard.Read = command
		}
		if c.WriteCmd != nil {
			command, err := parseCommand("clipboard.write_cmd", *c.WriteCmd)
			if err != nil {
				return nil, err
			}
			cfg.Clipboard.Write = command
		}
		if c.SettleMS != nil {
			cfg.Clipboard.SettleMS = *c.SettleMS
		}
	}

	if k := payload.Keys; k != nil {
		if k.Backend != nil {
			cfg.Keys.Backend = strings.ToLower(strings.TrimSpace(*k.Backend))
		}
		if k.KeyCmd != nil {
			command, err := parseCommand("keys.key_cmd", *k.KeyCmd)
			if err != nil {
				return nil, err
			}
			cfg.Keys.KeyCmd = command
		}
		if k.TypeCmd != nil {
			command, err := parseCommand("keys.type_cmd", *k.TypeCmd)
			if err != nil {
				return nil, err
			}
			cfg.Keys.TypeCmd = command
		}
		if k.UinputWarmupMS != nil {
			cfg.Keys.UinputWarmupMS = *k.UinputWarmupMS
		}
	}

	if g := payload.Grammar; g != nil {
		if g.MaxSeries != nil {
			cfg.Grammar.MaxSeries = *g.MaxSeries
		}
		if g.MaxCount != nil {
			cfg.Grammar.MaxCount = *g.MaxCount
		}
		if g.Tokens != nil {
			tokens := make(map[string]string, len(cfg.Grammar.Tokens)+len(g.Tokens))
			for name, expr := range cfg.Grammar.Tokens {
				tokens[name] = expr
			}
			for name, expr := range g.Tokens {
				spoken := strings.Join(strings.Fields(strings.ToLower(name)), " ")
				if spoken == "" {
					return nil, fmt.Errorf("grammar.tokens contains an empty token name")
				}
				tokens[spoken] = expr
			}
			cfg.Grammar.Tokens = tokens
		}
	}

	if n := payload.Notify; n != nil {
		if n.Enable != nil {
			cfg.Notify.Enable = *n.Enable
		}
		if n.Backend != nil {
			cfg.Notify.Backend = strings.ToLower(strings.TrimSpace(*n.Backend))
		}
		if n.AppName != nil {
			cfg.Notify.AppName = strings.TrimSpace(*n.AppName)
		}
		if n.TimeoutMS != nil {
			cfg.Notify.TimeoutMS = *n.TimeoutMS
		}
		if n.Sound != nil {
			cfg.Notify.Sound = *n.Sound
		}
		if n.SoundFile != nil {
			cfg.Notify.SoundFile = strings.TrimSpace(*n.SoundFile)
		}
	}

	return warnings, nil
}

func parseCommand(key string, raw string) (CommandConfig, error) {
	argv, err := parseArgv(raw)
	if err != nil {
		return CommandConfig{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			if ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
