package recommend

import (
	"regexp"
	"strings"
)

var leadingMarker = regexp.MustCompile(`^(?:[-*]|\d+\.)`)

// ParseTitles splits AI output into titles: one per line, a single leading
// "-", "*" or "<digits>." marker removed, blank lines dropped, order kept.
func ParseTitles(text string) []string {
	titles := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(leadingMarker.ReplaceAllString(line, ""))
		if line != "" {
			titles = append(titles, line)
		}
	}
	return titles
}
