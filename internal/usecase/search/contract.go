package search

import (
	"context"

	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
)

// Repository executes planned queries against the record index.
type Repository interface {
	Search(ctx context.Context, userID string, req *request.Request) ([]result.Hit, int, error)
	Facets(ctx context.Context, userID string, req *request.Request) (result.Aggregations, error)
	LabelCounts(ctx context.Context, userID string) ([]result.LabelCount, error)
	BoardTitles(ctx context.Context, userID string) ([]string, error)
}
