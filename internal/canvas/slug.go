package canvas

import (
	"regexp"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Common words skipped when deriving a slug from a prompt.
var slugStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "and": true, "or": true,
	"what": true, "how": true, "is": true, "it": true,
}

// Slugify derives a short filename stem from a prompt: the first four
// lowercase words of at least three characters, stopwords skipped, joined
// by underscores. Falls back to "vision" when nothing qualifies.
func Slugify(text string) string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	var meaningful []string
	for _, w := range words {
		if len(w) > 2 && !slugStopwords[w] {
			meaningful = append(meaningful, w)
			if len(meaningful) == 4 {
				break
			}
		}
	}
	if len(meaningful) == 0 {
		return "vision"
	}
	return strings.Join(meaningful, "_")
}
