package dashboard

import (
	"strings"

	"workboard/internal/core"
)

// Filter keeps entries whose designer, topic or company contains text,
// ignoring case. Text is matched as given, spaces included; empty text
// returns entries as given.
func Filter(entries []core.WorkEntry, text string) []core.WorkEntry {
	if text == "" {
		return entries
	}
	needle := strings.ToLower(text)
	out := make([]core.WorkEntry, 0, len(entries))
	for _, e := range entries {
		if Matches(e, needle) {
			out = append(out, e)
		}
	}
	return out
}

// Matches reports whether e matches an already lower-cased needle.
func Matches(e core.WorkEntry, needle string) bool {
	return strings.Contains(strings.ToLower(e.DesignerName), needle) ||
		strings.Contains(strings.ToLower(e.WorkTopic), needle) ||
		strings.Contains(strings.ToLower(e.Company), needle)
}
