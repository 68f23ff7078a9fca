package council

import (
	"fmt"
	"strings"
)

const (
	transcriptSeparator = "--- The council has spoken ---"
	entryLimit          = 500
)

// Entry is one daimon's contribution to the working memory of a turn.
type Entry struct {
	Name string
	Verb string
	Text string
}

// Transcript is the per-turn working memory. It accumulates entries in
// invocation order and is discarded after done.
type Transcript struct {
	entries []Entry
}

// Append records an entry, truncating the text so later prompts stay bounded.
func (t *Transcript) Append(name, verb, text string) {
	if len(text) > entryLimit {
		text = text[:entryLimit]
	}
	t.entries = append(t.entries, Entry{Name: name, Verb: verb, Text: text})
}

// Len reports the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Augment appends the rendered transcript to the original message. With no
// entries the message passes through unchanged.
func (t *Transcript) Augment(message string) string {
	if len(t.entries) == 0 {
		return message
	}
	lines := make([]string, len(t.entries))
	for i, e := range t.entries {
		lines[i] = fmt.Sprintf("[%s %s]: %s", strings.ToUpper(e.Name), strings.ToUpper(e.Verb), e.Text)
	}
	return fmt.Sprintf("%s\n\n%s\n%s", message, transcriptSeparator, strings.Join(lines, "\n\n"))
}
