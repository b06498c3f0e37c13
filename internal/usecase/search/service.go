// Package search assembles display-ready responses: query execution, facet
// aggregation, snippets, highlights, and suggestions.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
	"github.com/madplan/madsearch/internal/metrics"
)

// Service implements the result enricher.
type Service struct {
	repo Repository
	log  *zap.Logger
}

// NewService creates a search service.
func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SearchGlobal runs a search scoped to the user's records and enriches the
// hits into a full response. Suggestions are best effort and degrade to
// empty; query and facet failures surface as ErrSearchFailed.
func (s *Service) SearchGlobal(ctx context.Context, userID string, req *request.Request) (*result.Response, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidRequest)
	}

	start := time.Now()
	hits, total, err := s.repo.Search(ctx, userID, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}

	aggs, err := s.repo.Facets(ctx, userID, req)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}

	terms := queryTerms(req.Query())
	results := make([]result.Result, 0, len(hits))
	for i := range hits {
		results = append(results, s.enrich(&hits[i], terms, req.IncludeHighlights()))
	}

	resp := &result.Response{
		Results:       results,
		TotalCount:    total,
		Query:         req.Query(),
		Aggregations:  aggs,
		Suggestions:   s.suggestions(ctx, userID, req.Query()),
		HasMore:       req.Offset()+len(results) < total,
		ExecutionTime: time.Since(start).Milliseconds(),
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	return resp, nil
}

// enrich converts one raw hit into its display form.
func (s *Service) enrich(hit *result.Hit, terms []string, withHighlights bool) result.Result {
	rec := &hit.Record
	res := result.Result{
		ItemID:         rec.ItemID(),
		ItemType:       rec.ItemType(),
		Title:          rec.Title(),
		Snippet:        snippet(rec.Content(), terms),
		BoardID:        rec.BoardID(),
		ListID:         rec.ListID(),
		Tags:           rec.Tags(),
		Labels:         rec.Labels(),
		RelevanceScore: hit.Score,
		CreatedAt:      rec.CreatedAt(),
		UpdatedAt:      rec.UpdatedAt(),
	}
	if withHighlights && len(terms) > 0 {
		res.Highlights = highlights(rec.Title(), rec.Content(), terms)
	}
	if rec.ItemType() == record.TypeCard {
		md := rec.Metadata()
		res.Metadata = &result.Meta{
			Priority:   md.Priority,
			DueDate:    md.DueDate,
			Assignees:  md.Assignees,
			Status:     md.Status,
			BoardTitle: md.BoardTitle,
			ListTitle:  md.ListTitle,
		}
	}
	return res
}

// queryTerms splits the free-text query into lowercase terms.
func queryTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}
