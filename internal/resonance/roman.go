package resonance

import "strings"

var romanPairs = []struct {
	value   int
	numeral string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// ToRoman converts a positive integer to its Roman numeral.
func ToRoman(n int) string {
	var b strings.Builder
	for _, p := range romanPairs {
		for n >= p.value {
			b.WriteString(p.numeral)
			n -= p.value
		}
	}
	return b.String()
}

var romanValues = map[byte]int{
	'I': 1, 'V': 5, 'X': 10, 'L': 50, 'C': 100, 'D': 500, 'M': 1000,
}

// FromRoman converts a Roman numeral back to an integer. Unknown characters
// contribute zero, matching a lenient parse.
func FromRoman(s string) int {
	s = strings.ToUpper(s)
	result := 0
	prev := 0
	for i := len(s) - 1; i >= 0; i-- {
		curr := romanValues[s[i]]
		if curr < prev {
			result -= curr
		} else {
			result += curr
		}
		prev = curr
	}
	return result
}
