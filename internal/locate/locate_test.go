package locate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindForwardLandsAfterFirstComma(t *testing.T) {
	line := "abc,def,ghi"

	distance, ok, err := findForward(line, 0, Literal(","), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, distance)
	require.Equal(t, "abc,", line[:distance])
}

func TestFindForwardMatrix(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		cursor  int
		pattern Pattern
		n       int
		want    int
		wantOK  bool
	}{
		{name: "second occurrence", line: "abc,def,ghi", pattern: Literal(","), n: 2, want: 8, wantOK: true},
		{name: "too few matches", line: "abc,def,ghi", pattern: Literal(","), n: 3, wantOK: false},
		{name: "zero count means first", line: "abc,def,ghi", pattern: Literal(","), n: 0, want: 4, wantOK: true},
		{name: "match under cursor skipped", line: ",abc,d", pattern: Literal(","), n: 1, want: 5, wantOK: true},
		{name: "cursor mid line", line: "a b c d", cursor: 2, pattern: Literal(" "), n: 1, want: 2, wantOK: true},
		{name: "regex token", line: "foo(bar)", pattern: Regex(`[()]`), n: 2, want: 8, wantOK: true},
		{name: "empty capture", line: "", pattern: Literal(","), n: 1, wantOK: false},
		{name: "single character capture", line: ",", pattern: Literal(","), n: 1, wantOK: false},
		{name: "multibyte runes count once", line: "héllo,x", pattern: Literal(","), n: 1, want: 6, wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := findForward(tc.line, tc.cursor, tc.pattern, tc.n)
			require.NoError(t, err)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestFindBackwardLandsBeforeMatch(t *testing.T) {
	line := "abc,def"

	distance, ok, err := findBackward(line, len(line), Literal(","), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, distance)
	require.Equal(t, "abc", line[:len(line)-distance])
}

func TestFindBackwardAgreesWithForwardOnReversedPrefix(t *testing.T) {
	line := "one, two; three, four; five"
	patterns := []Pattern{Regex(`,`), Regex(`;`), Regex(`[aeiou]`), Regex(` `)}

	for _, p := range patterns {
		for cursor := 0; cursor <= len(line); cursor++ {
			for n := 1; n <= 3; n++ {
				backward, backOK, err := findBackward(line, cursor, p, n)
				require.NoError(t, err)

				forward, fwdOK, err := Find(Reverse(line[:cursor]), p, Forward, n)
				require.NoError(t, err)

				require.Equal(t, fwdOK, backOK, "pattern=%s cursor=%d n=%d", p, cursor, n)
				require.Equal(t, forward, backward, "pattern=%s cursor=%d n=%d", p, cursor, n)
			}
		}
	}
}

func TestFindBackwardReversesMultiCharacterLiteral(t *testing.T) {
	line := "foo bar baz"

	distance, ok, err := findBackward(line, len(line), Literal("bar"), 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 5, distance)
}

func TestFindBackwardMatchesMultiCharacterRegex(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		pattern Pattern
		n       int
		want    int
		wantOK  bool
	}{
		{name: "arrow", line: "a->b", pattern: Regex(`->`), n: 1, want: 2, wantOK: true},
		{name: "agrees with literal", line: "a->b", pattern: Literal("->"), n: 1, want: 2, wantOK: true},
		{name: "nearest first", line: "x->y->z", pattern: Regex(`->`), n: 1, want: 2, wantOK: true},
		{name: "second occurrence", line: "x->y->z", pattern: Regex(`->`), n: 2, want: 5, wantOK: true},
		{name: "too few", line: "x->y->z", pattern: Regex(`->`), n: 3, wantOK: false},
		{name: "variable width", line: "call(foo, bar)", pattern: Regex(`\w+\(`), n: 1, want: 10, wantOK: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := findBackward(tc.line, len([]rune(tc.line)), tc.pattern, tc.n)
			require.NoError(t, err)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.Equal(t, tc.want, got)
			}
		})
	}
}

func TestLiteralPatternQuotesMetacharacters(t *testing.T) {
	distance, ok, err := findForward("a.b.c", 0, Literal("."), 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, distance)
}

func TestFindRejectsInvalidRegex(t *testing.T) {
	_, ok, err := findForward("abc", 0, Regex(`(`), 1)
	require.Error(t, err)
	require.False(t, ok)
	require.Contains(t, err.Error(), "compile pattern")
}

func TestFindRejectsEmptyPattern(t *testing.T) {
	_, _, err := findForward("abc", 0, Pattern{}, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty pattern")
}

func TestCount(t *testing.T) {
	count, err := Count("a,b,c", Literal(","))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = Count("", Regex(`\w`))
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestReverse(t *testing.T) {
	require.Equal(t, "cba", Reverse("abc"))
	require.Equal(t, "olléh", Reverse("héllo"))
	require.Empty(t, Reverse(""))
}

func TestDirectionString(t *testing.T) {
	require.Equal(t, "forward", Forward.String())
	require.Equal(t, "backward", Backward.String())
	require.Equal(t, "direction(9)", Direction(9).String())
}

// findForward locates the nth match after cursor (a rune index) in line.
func findForward(line string, cursor int, p Pattern, n int) (int, bool, error) {
	runes := []rune(line)
	cursor = min(max(cursor, 0), len(runes))
	return Find(string(runes[cursor:]), p, Forward, n)
}

// findBackward locates the nth match before cursor (a rune index) in line by
// searching the reversed prefix, as a backward capture delivers it.
func findBackward(line string, cursor int, p Pattern, n int) (int, bool, error) {
	runes := []rune(line)
	cursor = min(max(cursor, 0), len(runes))
	return Find(Reverse(string(runes[:cursor])), p, Backward, n)
}
