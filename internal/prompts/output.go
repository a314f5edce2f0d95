package prompts

import (
	"regexp"
	"strings"
)

var (
	aiDisclosure   = regexp.MustCompile(`(?i)\b(as an ai|i'm an ai|i am an ai)[^.]*\.\s*`)
	suggestionLine = regexp.MustCompile(`^\s*\d+\.\s+(.+?)\s*$`)
)

// CleanOutput strips AI self-disclosure sentences and surrounding whitespace.
func CleanOutput(text string) string {
	return strings.TrimSpace(aiDisclosure.ReplaceAllString(text, ""))
}

// ParseSuggestions extracts up to SuggestionCount items from "N. text" lines.
// Lines that do not match are skipped. The result is never nil.
func ParseSuggestions(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		m := suggestionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := strings.Trim(m[1], " \t\"")
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == SuggestionCount {
			break
		}
	}
	return out
}
