// Package locate computes cursor distances to token occurrences within one captured line.
package locate

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Direction selects which side of the cursor is searched.
type Direction int

const (
	Forward Direction = iota + 1
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// cursorOffset converts a match start inside the capture (first character
// skipped) into a keystroke count. It holds for captures collapsed back onto
// the cursor with a single Left (forward) or Right (backward) press.
const cursorOffset = 2

// Pattern is a resolved search expression.
type Pattern struct {
	Expr    string
	Literal bool
}

// Literal builds a pattern matching text verbatim.
func Literal(text string) Pattern {
	return Pattern{Expr: text, Literal: true}
}

// Regex builds a pattern from a regular expression.
func Regex(expr string) Pattern {
	return Pattern{Expr: expr}
}

// IsZero reports whether no expression is set.
func (p Pattern) IsZero() bool {
	return p.Expr == ""
}

func (p Pattern) String() string {
	if p.Literal {
		return fmt.Sprintf("literal(%q)", p.Expr)
	}
	return fmt.Sprintf("regex(%q)", p.Expr)
}

// Compile builds the matcher used against text oriented for dir. Literal
// patterns are reversed for backward searches so multi-character literals
// still match the reversed line. Regex patterns are returned unchanged; Find
// runs them over the line in document order.
func (p Pattern) Compile(dir Direction) (*regexp.Regexp, error) {
	if p.IsZero() {
		return nil, fmt.Errorf("empty pattern")
	}
	if p.Literal {
		text := p.Expr
		if dir == Backward {
			text = Reverse(text)
		}
		return regexp.Compile(regexp.QuoteMeta(text))
	}
	re, err := regexp.Compile(p.Expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", p.Expr, err)
	}
	return re, nil
}

// Find returns the distance from the cursor to the nth (1-indexed) match of
// p in captured. captured starts at the cursor and is already oriented for
// dir: document order for Forward, reversed for Backward. The boolean is
// false when fewer than n matches exist.
func Find(captured string, p Pattern, dir Direction, n int) (int, bool, error) {
	re, err := p.Compile(dir)
	if err != nil {
		return 0, false, err
	}
	if dir == Backward && !p.Literal {
		distance, ok := nthBackward(captured, re, n)
		return distance, ok, nil
	}
	distance, ok := nth(captured, re, n)
	return distance, ok, nil
}

// Count returns the number of non-overlapping matches of p in text.
func Count(text string, p Pattern) (int, error) {
	re, err := p.Compile(Forward)
	if err != nil {
		return 0, err
	}
	return len(re.FindAllStringIndex(text, -1)), nil
}

// Reverse returns s with its runes in reverse order.
func Reverse(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}

func nth(captured string, re *regexp.Regexp, n int) (int, bool) {
	if n < 1 {
		n = 1
	}

	_, size := utf8.DecodeRuneInString(captured)
	if size == 0 {
		return 0, false
	}
	rest := captured[size:]

	matches := re.FindAllStringIndex(rest, n)
	if len(matches) < n {
		return 0, false
	}
	start := utf8.RuneCountInString(rest[:matches[n-1][0]])
	return start + cursorOffset, true
}

// nthBackward matches re against the reversed capture restored to document
// order, so expressions longer than one character match as written. The nth
// match counted back from the cursor lands the same way a reversed literal
// does: before the last character of the match.
func nthBackward(captured string, re *regexp.Regexp, n int) (int, bool) {
	if n < 1 {
		n = 1
	}

	_, size := utf8.DecodeRuneInString(captured)
	if size == 0 {
		return 0, false
	}
	prefix := Reverse(captured[size:])

	matches := re.FindAllStringIndex(prefix, -1)
	if len(matches) < n {
		return 0, false
	}
	end := matches[len(matches)-n][1]
	return utf8.RuneCountInString(prefix[end:]) + cursorOffset, true
}
