package pipeline

import (
	"regexp"
	"strings"
)

var (
	fillerWords = regexp.MustCompile(`(?i)\b(um|uh|ah)\b`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// CleanTranscript normalizes raw transcript text: stand-alone filler words
// are removed, whitespace runs collapse to single spaces, and the result is
// trimmed. It has no failure mode; cleaning quality degrades silently
// rather than blocking persistence.
func CleanTranscript(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := fillerWords.ReplaceAllString(raw, "")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
