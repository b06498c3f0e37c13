package search

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain/search/result"
)

const (
	maxSuggestions  = 5
	boardSuggestion = 5.0 // fixed score for board-title matches
)

// suggestions offers query refinements: the user's labels scored by usage
// and their board titles, filtered to substring matches. Failures here never
// fail the search; the caller gets an empty list.
func (s *Service) suggestions(ctx context.Context, userID, query string) []result.Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []result.Suggestion

	labels, err := s.repo.LabelCounts(ctx, userID)
	if err != nil {
		s.log.Warn("label suggestions unavailable", zap.Error(err))
	}
	for _, lc := range labels {
		if strings.Contains(strings.ToLower(lc.Label), q) {
			out = append(out, result.Suggestion{
				Text:  lc.Label,
				Kind:  "label",
				Score: float64(lc.Count),
			})
		}
	}

	boards, err := s.repo.BoardTitles(ctx, userID)
	if err != nil {
		s.log.Warn("board suggestions unavailable", zap.Error(err))
	}
	for _, title := range boards {
		if strings.Contains(strings.ToLower(title), q) {
			out = append(out, result.Suggestion{
				Text:  title,
				Kind:  "board",
				Score: boardSuggestion,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
