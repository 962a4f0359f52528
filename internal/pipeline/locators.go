package pipeline

import "strings"

// ParseLocators splits free text into one locator per non-blank line.
func ParseLocators(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
