package perception

import (
	"regexp"
	"strings"
)

// A daimon may open its reply with [VERB: word] to choose the action word
// shown next to its name. The marker is a display affordance only and is
// stripped before the text reaches transcripts or clients.
var verbPattern = regexp.MustCompile(`(?i)^\s*\[VERB:\s*(\w+)\s*\]\s*`)

// ParseVerb strips a leading [VERB: word] marker, case-insensitively.
// Returns the lowercased verb and the cleaned remainder; when the marker is
// absent, the daimon's default verb and the original text.
func ParseVerb(text, defaultVerb string) (string, string) {
	if text == "" {
		return defaultVerb, ""
	}
	m := verbPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return defaultVerb, text
	}
	verb := strings.ToLower(text[m[2]:m[3]])
	return verb, text[m[1]:]
}
