package grammar

import "strconv"

var smallNumbers = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tensNumbers = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

// maxNumberWords bounds how many words one spoken integer may span
// ("nine hundred and ninety nine" is five).
const maxNumberWords = 7

// parseNumber reads words as one integer: either a single run of digits or
// spoken English such as "twenty one" or "three hundred and five".
func parseNumber(words []string) (int, bool) {
	if len(words) == 0 {
		return 0, false
	}
	if len(words) == 1 {
		if v, err := strconv.Atoi(words[0]); err == nil {
			return v, v >= 0
		}
	}

	total, group := 0, 0
	// last tracks the previous word's role so "twenty thirty" and
	// "five six" are rejected.
	last := ""
	for i, w := range words {
		switch {
		case w == "and":
			if last != "hundred" && last != "thousand" || i == len(words)-1 {
				return 0, false
			}
			last = "and"
		case w == "hundred":
			if group < 1 || group > 9 || last == "hundred" {
				return 0, false
			}
			group *= 100
			last = "hundred"
		case w == "thousand":
			if group < 1 || total > 0 {
				return 0, false
			}
			total = group * 1000
			group = 0
			last = "thousand"
		default:
			if v, ok := tensNumbers[w]; ok {
				if last == "tens" || last == "small" || group%100 != 0 {
					return 0, false
				}
				group += v
				last = "tens"
				continue
			}
			v, ok := smallNumbers[w]
			if !ok {
				return 0, false
			}
			if last == "small" || (last == "tens" && v >= 10) || (last == "tens" && v == 0) {
				return 0, false
			}
			if last != "tens" && group%100 != 0 {
				return 0, false
			}
			group += v
			last = "small"
		}
	}
	return total + group, true
}
