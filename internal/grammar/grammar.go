// Package grammar resolves recognized utterances into ordered series of
// line-editing actions.
package grammar

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"

	"github.com/rbright/linevox/internal/config"
	"github.com/rbright/linevox/internal/keys"
	"github.com/rbright/linevox/internal/tokens"
)

var (
	// ErrNoMatch reports an utterance no sequence of phrases covers.
	ErrNoMatch = errors.New("utterance does not match any phrase series")
	// ErrSeriesTooLong reports an utterance that needs more phrases than allowed.
	ErrSeriesTooLong = errors.New("utterance exceeds the maximum series length")
)

const (
	refCount = "n"
	refText  = "text"
	refToken = "token"

	defaultCount = 1
)

// Action is one resolved phrase with its bound values.
type Action struct {
	Kind      Kind
	Phrase    string
	Text      string
	Token     string
	TokenName string
	Count     int
	Strokes   []keys.Keystroke
}

func (a Action) String() string {
	var b strings.Builder
	b.WriteString(a.Kind.String())
	switch {
	case a.Text != "":
		fmt.Fprintf(&b, " text=%q", a.Text)
	case a.TokenName != "":
		fmt.Fprintf(&b, " token=%s", a.TokenName)
	}
	if a.Count > 1 {
		fmt.Fprintf(&b, " n=%d", a.Count)
	}
	if len(a.Strokes) > 0 {
		parts := make([]string, 0, len(a.Strokes))
		for _, s := range a.Strokes {
			parts = append(parts, s.String())
		}
		fmt.Fprintf(&b, " keys=%s", strings.Join(parts, ","))
	}
	return b.String()
}

type compiledRule struct {
	Rule
	elems []element
}

// choice is one spoken key of a choice ref, pre-split into words.
type choice struct {
	name  string
	words []string
	value string
}

// utterance is the word list being parsed. raw keeps each word's original
// case for dictation; words is case-folded for matching.
type utterance struct {
	words []string
	raw   []string
}

// Grammar is an immutable compiled phrase table.
type Grammar struct {
	rules     []compiledRule
	tokens    []choice
	maxSeries int
	maxCount  int
}

// bindings holds the ref values bound while matching one phrase.
type bindings struct {
	count     int
	hasCount  bool
	text      string
	token     string
	tokenName string
}

// New compiles rules against the configured limits and token table.
func New(cfg config.GrammarConfig, rules []Rule) (*Grammar, error) {
	if cfg.MaxSeries < 1 {
		return nil, fmt.Errorf("max series must be >= 1")
	}
	if cfg.MaxCount < 1 {
		return nil, fmt.Errorf("max count must be >= 1")
	}

	known := map[string]bool{refCount: true, refText: true, refToken: true}
	g := &Grammar{maxSeries: cfg.MaxSeries, maxCount: cfg.MaxCount}
	for _, rule := range rules {
		elems, err := compilePhrase(rule.Spec, known)
		if err != nil {
			return nil, err
		}
		if rule.Kind == KindKeys && strings.TrimSpace(rule.Keys) == "" {
			return nil, fmt.Errorf("rule %q: keys rule needs a keystroke spec", rule.Spec)
		}
		g.rules = append(g.rules, compiledRule{Rule: rule, elems: elems})
	}

	table, _ := tokens.All(cfg.Tokens)
	g.tokens = choicesFrom(table)
	return g, nil
}

// Default compiles DefaultRules.
func Default(cfg config.GrammarConfig) (*Grammar, error) {
	return New(cfg, DefaultRules)
}

// Phrases returns the phrase specs in table order.
func (g *Grammar) Phrases() []string {
	out := make([]string, 0, len(g.rules))
	for _, rule := range g.rules {
		out = append(out, rule.Spec)
	}
	return out
}

// TokenNames returns the spoken token names, sorted.
func (g *Grammar) TokenNames() []string {
	out := make([]string, 0, len(g.tokens))
	for _, c := range g.tokens {
		out = append(out, c.name)
	}
	sort.Strings(out)
	return out
}

// Parse resolves text into the first series of actions that covers every
// word, trying rules in table order with backtracking.
func (g *Grammar) Parse(text string) ([]Action, error) {
	u := normalize(text)
	if len(u.words) == 0 {
		return nil, fmt.Errorf("%w: empty utterance", ErrNoMatch)
	}

	var series []Action
	dead := make(map[int]bool)
	if !g.parseSeries(u, 0, nil, dead, &series) {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, strings.Join(u.raw, " "))
	}
	if len(series) > g.maxSeries {
		return nil, fmt.Errorf("%w: %d actions, max %d", ErrSeriesTooLong, len(series), g.maxSeries)
	}
	return series, nil
}

// parseSeries extends acc with phrases covering u from pos. dead records
// positions from which no series can finish.
func (g *Grammar) parseSeries(u utterance, pos int, acc []Action, dead map[int]bool, out *[]Action) bool {
	if pos == len(u.words) {
		*out = append([]Action(nil), acc...)
		return true
	}
	if dead[pos] {
		return false
	}

	for _, rule := range g.rules {
		found := g.matchElements(rule.elems, u, pos, bindings{}, func(end int, b bindings) bool {
			if end == pos {
				return false
			}
			action, ok := g.build(rule, b)
			if !ok {
				return false
			}
			action.Phrase = strings.Join(u.raw[pos:end], " ")
			return g.parseSeries(u, end, append(acc, action), dead, out)
		})
		if found {
			return true
		}
	}
	dead[pos] = true
	return false
}

// matchElements matches elems against u from pos and calls next with each
// candidate end position, most preferred first, until next accepts.
func (g *Grammar) matchElements(elems []element, u utterance, pos int, b bindings, next func(int, bindings) bool) bool {
	if len(elems) == 0 {
		return next(pos, b)
	}
	head, rest := elems[0], elems[1:]
	cont := func(end int, b bindings) bool {
		return g.matchElements(rest, u, end, b, next)
	}

	switch head.kind {
	case elemWord:
		if pos < len(u.words) && u.words[pos] == head.word {
			return cont(pos+1, b)
		}
		return false
	case elemOptional:
		if g.matchElements(head.children, u, pos, b, cont) {
			return true
		}
		return cont(pos, b)
	case elemRef:
		return g.matchRef(head.ref, u, pos, b, cont)
	}
	return false
}

func (g *Grammar) matchRef(ref string, u utterance, pos int, b bindings, next func(int, bindings) bool) bool {
	remaining := len(u.words) - pos
	switch ref {
	case refCount:
		for span := min(maxNumberWords, remaining); span >= 1; span-- {
			v, ok := parseNumber(u.words[pos : pos+span])
			if !ok || v < 1 || v > g.maxCount {
				continue
			}
			nb := b
			nb.count, nb.hasCount = v, true
			if next(pos+span, nb) {
				return true
			}
		}
	case refText:
		for end := len(u.words); end > pos; end-- {
			nb := b
			nb.text = strings.Join(u.raw[pos:end], " ")
			if next(end, nb) {
				return true
			}
		}
	case refToken:
		for _, c := range g.tokens {
			if len(c.words) > remaining || !slices.Equal(u.words[pos:pos+len(c.words)], c.words) {
				continue
			}
			nb := b
			nb.token, nb.tokenName = c.value, c.name
			if next(pos+len(c.words), nb) {
				return true
			}
		}
	}
	return false
}

func (g *Grammar) build(rule compiledRule, b bindings) (Action, bool) {
	count := defaultCount
	if b.hasCount {
		count = b.count
	}

	action := Action{
		Kind:      rule.Kind,
		Text:      b.text,
		Token:     b.token,
		TokenName: b.tokenName,
		Count:     count,
	}
	if rule.Kind == KindKeys {
		strokes, err := keys.Parse(strings.ReplaceAll(rule.Keys, "{n}", strconv.Itoa(count)))
		if err != nil {
			return Action{}, false
		}
		action.Strokes = strokes
	}
	return action, true
}

// normalize splits text into words with surrounding punctuation removed and
// case-folds a copy of each for matching.
func normalize(text string) utterance {
	fold := cases.Fold()
	var u utterance
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if word == "" {
			continue
		}
		u.raw = append(u.raw, word)
		u.words = append(u.words, fold.String(word))
	}
	return u
}

// choicesFrom orders choices so longer spoken keys are tried first.
func choicesFrom(table map[string]string) []choice {
	out := make([]choice, 0, len(table))
	for name, value := range table {
		out = append(out, choice{name: name, words: strings.Fields(name), value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].words) != len(out[j].words) {
			return len(out[i].words) > len(out[j].words)
		}
		return out[i].name < out[j].name
	})
	return out
}
