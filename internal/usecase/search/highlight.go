package search

import (
	"regexp"
	"unicode/utf8"

	"github.com/madplan/madsearch/internal/domain/search/result"
)

const (
	titleContext   = 50
	contentContext = 100
	markOpen       = "<mark>"
	markClose      = "</mark>"
)

// highlights marks the first occurrence of each query term in the title and
// content. Indexes refer to byte positions in the original field value.
func highlights(title, content string, terms []string) []result.Highlight {
	var out []result.Highlight
	for _, term := range terms {
		if h, ok := highlightIn("title", title, term, titleContext); ok {
			out = append(out, h)
		}
		if h, ok := highlightIn("content", content, term, contentContext); ok {
			out = append(out, h)
		}
	}
	return out
}

func highlightIn(field, text, term string, context int) (result.Highlight, bool) {
	// Matching runs on the original text so the reported offsets stay
	// valid: lowercasing can change byte lengths for some characters.
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(term))
	if err != nil {
		return result.Highlight{}, false
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return result.Highlight{}, false
	}
	idx, end := loc[0], loc[1]

	from := idx - context
	if from < 0 {
		from = 0
	}
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	to := end + context
	if to > len(text) {
		to = len(text)
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}

	snippet := text[from:idx] + markOpen + text[idx:end] + markClose + text[end:to]
	return result.Highlight{
		Field:      field,
		Snippet:    snippet,
		StartIndex: idx,
		EndIndex:   end,
	}, true
}
