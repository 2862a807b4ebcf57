// Package normalize cleans raw model output before it is parsed as CSV.
package normalize

import (
	"errors"
	"strings"
)

// ErrMalformedFence is returned when a fenced block is opened but never closed.
var ErrMalformedFence = errors.New("malformed fence: opening fence has no closing fence")

var fenceMarkers = []string{"```", "~~~"}

// Text strips a UTF-8 BOM, normalizes line endings, drops surrounding blank
// lines and removes a leading/trailing fence pair. Field content is left
// untouched. Empty input yields "".
func Text(raw string) (string, error) {
	s := strings.TrimPrefix(raw, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := trimBlank(strings.Split(s, "\n"))
	if len(lines) == 0 {
		return "", nil
	}

	if marker, ok := fenceOf(lines[0]); ok {
		if len(lines) < 2 || !isClosingFence(lines[len(lines)-1], marker) {
			return "", ErrMalformedFence
		}
		lines = trimBlank(lines[1 : len(lines)-1])
	}

	return strings.Join(lines, "\n"), nil
}

// fenceOf reports whether line opens a fence and returns its marker.
// "```csv" -> "```".
func fenceOf(line string) (string, bool) {
	t := strings.TrimSpace(line)
	for _, m := range fenceMarkers {
		if strings.HasPrefix(t, m) {
			return m, true
		}
	}
	return "", false
}

func isClosingFence(line, marker string) bool {
	return strings.TrimSpace(line) == marker
}

// trimBlank drops whitespace-only lines at both ends.
func trimBlank(lines []string) []string {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	end := len(lines)
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
