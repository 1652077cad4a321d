// Package keys parses keystroke specs and injects them into the focused window.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

// modifierPrefixes maps spec prefixes to modifiers, in canonical order.
var modifierPrefixes = []struct {
	prefix byte
	mod    Modifier
}{
	{'c', ModCtrl},
	{'a', ModAlt},
	{'s', ModShift},
	{'w', ModSuper},
}

// Keystroke is one key press with modifiers, a repeat count, and an
// optional pause after the last repetition.
type Keystroke struct {
	Mods   Modifier
	Key    string
	Repeat int
	Pause  time.Duration
}

// Has reports whether mod is held.
func (k Keystroke) Has(mod Modifier) bool {
	return k.Mods&mod != 0
}

// String renders the keystroke in spec form, e.g. "s-right:5/10".
func (k Keystroke) String() string {
	var b strings.Builder
	for _, mp := range modifierPrefixes {
		if k.Has(mp.mod) {
			b.WriteByte(mp.prefix)
		}
	}
	if b.Len() > 0 {
		b.WriteByte('-')
	}
	b.WriteString(k.Key)
	if k.Repeat != 1 {
		b.WriteString(":" + strconv.Itoa(k.Repeat))
	}
	if k.Pause > 0 {
		b.WriteString("/" + strconv.Itoa(int(k.Pause/(10*time.Millisecond))))
	}
	return b.String()
}

// Press builds a single keystroke.
func Press(mods Modifier, key string, repeat int) Keystroke {
	return Keystroke{Mods: mods, Key: key, Repeat: repeat}
}

// knownKeys is the key vocabulary every backend can translate.
var knownKeys = map[string]struct{}{
	"left": {}, "right": {}, "up": {}, "down": {},
	"home": {}, "end": {}, "pgup": {}, "pgdown": {},
	"delete": {}, "backspace": {}, "enter": {}, "tab": {}, "escape": {}, "space": {},
}

func init() {
	for r := 'a'; r <= 'z'; r++ {
		knownKeys[string(r)] = struct{}{}
	}
	for r := '0'; r <= '9'; r++ {
		knownKeys[string(r)] = struct{}{}
	}
}

// Parse reads a comma-separated keystroke spec. Each element is
// "[mods-]key[:repeat][/pause]" where mods is any of c (ctrl), a (alt),
// s (shift), w (super) and pause is in hundredths of a second.
func Parse(spec string) ([]Keystroke, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("keystroke spec must not be empty")
	}

	parts := strings.Split(spec, ",")
	strokes := make([]Keystroke, 0, len(parts))
	for _, part := range parts {
		stroke, err := parseOne(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse keystroke %q: %w", part, err)
		}
		strokes = append(strokes, stroke)
	}
	return strokes, nil
}

// MustParse is Parse for static specs; it panics on error.
func MustParse(spec string) []Keystroke {
	strokes, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return strokes
}

func parseOne(element string) (Keystroke, error) {
	if element == "" {
		return Keystroke{}, fmt.Errorf("empty element")
	}

	stroke := Keystroke{Repeat: 1}

	if slash := strings.LastIndex(element, "/"); slash >= 0 {
		hundredths, err := strconv.Atoi(element[slash+1:])
		if err != nil || hundredths < 0 {
			return Keystroke{}, fmt.Errorf("invalid pause %q", element[slash+1:])
		}
		stroke.Pause = time.Duration(hundredths) * 10 * time.Millisecond
		element = element[:slash]
	}

	if colon := strings.LastIndex(element, ":"); colon >= 0 {
		repeat, err := strconv.Atoi(element[colon+1:])
		if err != nil || repeat < 0 {
			return Keystroke{}, fmt.Errorf("invalid repeat %q", element[colon+1:])
		}
		stroke.Repeat = repeat
		element = element[:colon]
	}

	if dash := strings.Index(element, "-"); dash > 0 {
		for i := 0; i < dash; i++ {
			mod, ok := modifierFor(element[i])
			if !ok {
				return Keystroke{}, fmt.Errorf("unknown modifier %q", element[i])
			}
			stroke.Mods |= mod
		}
		element = element[dash+1:]
	}

	key := strings.ToLower(element)
	if _, ok := knownKeys[key]; !ok {
		return Keystroke{}, fmt.Errorf("unknown key %q", element)
	}
	stroke.Key = key
	return stroke, nil
}

func modifierFor(prefix byte) (Modifier, bool) {
	for _, mp := range modifierPrefixes {
		if mp.prefix == prefix {
			return mp.mod, true
		}
	}
	return 0, false
}
