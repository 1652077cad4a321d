package grammar

import (
	"fmt"
	"strings"
)

type elementKind int

const (
	elemWord elementKind = iota
	elemOptional
	elemRef
)

// element is one node of a compiled phrase spec.
type element struct {
	kind     elementKind
	word     string
	ref      string
	children []element
}

// compilePhrase parses a phrase spec: literal words, "[...]" optional
// groups, and "<name>" references to the refs in known.
func compilePhrase(spec string, known map[string]bool) ([]element, error) {
	spec = strings.NewReplacer("[", " [ ", "]", " ] ").Replace(spec)
	fields := strings.Fields(strings.ToLower(spec))
	if len(fields) == 0 {
		return nil, fmt.Errorf("phrase spec is empty")
	}

	elems, rest, err := compileSequence(fields, known, 0)
	if err != nil {
		return nil, fmt.Errorf("compile phrase %q: %w", spec, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("compile phrase %q: unexpected %q", spec, rest[0])
	}
	return elems, nil
}

func compileSequence(fields []string, known map[string]bool, depth int) ([]element, []string, error) {
	var elems []element
	for len(fields) > 0 {
		field := fields[0]
		switch {
		case field == "[":
			children, rest, err := compileSequence(fields[1:], known, depth+1)
			if err != nil {
				return nil, nil, err
			}
			if len(rest) == 0 || rest[0] != "]" {
				return nil, nil, fmt.Errorf("unclosed optional group")
			}
			if len(children) == 0 {
				return nil, nil, fmt.Errorf("empty optional group")
			}
			elems = append(elems, element{kind: elemOptional, children: children})
			fields = rest[1:]
		case field == "]":
			if depth == 0 {
				return nil, nil, fmt.Errorf("unbalanced %q", "]")
			}
			return elems, fields, nil
		case strings.HasPrefix(field, "<"):
			if !strings.HasSuffix(field, ">") || len(field) < 3 {
				return nil, nil, fmt.Errorf("malformed reference %q", field)
			}
			name := field[1 : len(field)-1]
			if !known[name] {
				return nil, nil, fmt.Errorf("unknown reference %q", name)
			}
			elems = append(elems, element{kind: elemRef, ref: name})
			fields = fields[1:]
		default:
			elems = append(elems, element{kind: elemWord, word: field})
			fields = fields[1:]
		}
	}
	return elems, nil, nil
}
