// Package tokens defines the spoken names of searchable characters and classes.
//
// Every value is a regular expression. Built-in entries match a single
// character so they behave the same on reversed text.
package tokens

import "sort"

var symbols = map[string]string{
	"ampersand":     `&`,
	"angle":         `<`,
	"apostrophe":    `'`,
	"at sign":       `@`,
	"backslash":     `\\`,
	"backtick":      "`",
	"bang":          `!`,
	"brace":         `\{`,
	"bracket":       `\[`,
	"caret":         `\^`,
	"colon":         `:`,
	"comma":         `,`,
	"dash":          `-`,
	"dollar":        `\$`,
	"dot":           `\.`,
	"equals":        `=`,
	"hash":          `#`,
	"paren":         `\(`,
	"percent":       `%`,
	"period":        `\.`,
	"pipe":          `\|`,
	"plus":          `\+`,
	"question":      `\?`,
	"quote":         `"`,
	"right angle":   `>`,
	"right brace":   `\}`,
	"right bracket": `\]`,
	"right paren":   `\)`,
	"semi":          `;`,
	"slash":         `/`,
	"space":         ` `,
	"star":          `\*`,
	"tilde":         `~`,
	"underscore":    `_`,
}

var alphabet = map[string]string{
	"alpha":    `a`,
	"bravo":    `b`,
	"charlie":  `c`,
	"delta":    `d`,
	"echo":     `e`,
	"foxtrot":  `f`,
	"golf":     `g`,
	"hotel":    `h`,
	"india":    `i`,
	"juliet":   `j`,
	"kilo":     `k`,
	"lima":     `l`,
	"mike":     `m`,
	"november": `n`,
	"oscar":    `o`,
	"papa":     `p`,
	"quebec":   `q`,
	"romeo":    `r`,
	"sierra":   `s`,
	"tango":    `t`,
	"uniform":  `u`,
	"victor":   `v`,
	"whiskey":  `w`,
	"x-ray":    `x`,
	"yankee":   `y`,
	"zulu":     `z`,
}

var classes = map[string]string{
	"capital": `[A-Z]`,
	"digit":   `[0-9]`,
}

// Symbols returns the punctuation choice table.
func Symbols() map[string]string {
	return clone(symbols)
}

// Alphabet returns the spelling-alphabet choice table.
func Alphabet() map[string]string {
	return clone(alphabet)
}

// All returns the merged token choice table (symbols, alphabet, classes)
// with extra entries layered on top. overridden lists the built-in names
// replaced by extra, sorted.
func All(extra map[string]string) (table map[string]string, overridden []string) {
	table = make(map[string]string, len(symbols)+len(alphabet)+len(classes)+len(extra))
	for _, src := range []map[string]string{symbols, alphabet, classes} {
		for name, expr := range src {
			table[name] = expr
		}
	}
	for name, expr := range extra {
		if _, exists := table[name]; exists {
			overridden = append(overridden, name)
		}
		table[name] = expr
	}
	sort.Strings(overridden)
	return table, overridden
}

func clone(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
