package group

import (
	"strings"
)

// Key is a designator split into alternating text and digit runs. Even
// indexes hold lower-cased text (possibly empty), odd indexes hold digit
// runs with leading zeros removed.
type Key []string

// NaturalKey splits s into its sort key. "R10" becomes ["r", "10", ""],
// "U2A" becomes ["u", "2", "a"].
func NaturalKey(s string) Key {
	key := Key{}
	start := 0
	digits := false
	flush := func(end int) {
		run := s[start:end]
		if digits {
			run = strings.TrimLeft(run, "0")
		} else {
			run = strings.ToLower(run)
		}
		key = append(key, run)
	}
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		if isDigit != digits {
			flush(i)
			start, digits = i, isDigit
		}
	}
	flush(len(s))
	if digits {
		// Keep the text/number alternation closed with a trailing text run.
		key = append(key, "")
	}
	return key
}

// Compare orders two keys run by run. Text runs compare as strings, digit
// runs by numeric value; when one key is a prefix of the other the shorter
// sorts first.
func (k Key) Compare(o Key) int {
	for i := 0; i < len(k) && i < len(o); i++ {
		var c int
		if i%2 == 1 {
			c = compareDigits(k[i], o[i])
		} else {
			c = strings.Compare(k[i], o[i])
		}
		if c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(o):
		return -1
	case len(k) > len(o):
		return 1
	}
	return 0
}

// CompareNatural compares two designators in natural order, so R2 sorts
// before R10. Text is compared case-insensitively and digit runs of any
// length compare by value.
func CompareNatural(a, b string) int {
	return NaturalKey(a).Compare(NaturalKey(b))
}

// compareDigits compares two digit runs without leading zeros by value.
func compareDigits(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
