package search

import "strings"

const (
	snippetLen  = 150
	snippetStep = 10
	ellipsis    = "..."
)

// snippet extracts a display window from the content. It scans candidate
// windows at a fixed step and keeps the one containing the most query terms,
// then trims the cut edges back to word boundaries. Short content passes
// through untouched.
func snippet(content string, terms []string) string {
	if len(content) <= snippetLen {
		return content
	}

	start := bestWindow(strings.ToLower(content), terms)
	end := start + snippetLen
	if end > len(content) {
		end = len(content)
	}

	out := content[start:end]
	if start > 0 {
		if i := strings.IndexByte(out, ' '); i >= 0 && i < len(out)-1 {
			out = out[i+1:]
		}
		out = ellipsis + out
	}
	if end < len(content) {
		if i := strings.LastIndexByte(out, ' '); i > 0 {
			out = out[:i]
		}
		out += ellipsis
	}
	return out
}

// bestWindow returns the offset of the window with the most term matches,
// earliest window winning ties. With no terms (browse mode) the window stays
// at the front.
func bestWindow(lower string, terms []string) int {
	if len(terms) == 0 {
		return 0
	}

	bestStart, bestCount := 0, 0
	for start := 0; start < len(lower); start += snippetStep {
		end := start + snippetLen
		if end > len(lower) {
			end = len(lower)
		}
		window := lower[start:end]

		count := 0
		for _, t := range terms {
			count += strings.Count(window, t)
		}
		if count > bestCount {
			bestStart, bestCount = start, count
		}
		if end == len(lower) {
			break
		}
	}
	return bestStart
}
