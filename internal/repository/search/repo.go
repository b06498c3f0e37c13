// Package search executes planned queries against the record index: scoped
// full-text search, facet aggregations, and suggestion source data.
package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/madplan/madsearch/internal/db"
	"github.com/madplan/madsearch/internal/domain"
	domrec "github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
	"github.com/madplan/madsearch/internal/repository/record"
)

const maxFacetBuckets = 20

// store is the consumer interface for query execution (ISP).
type store interface {
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	Aggregate(ctx context.Context, q *db.AggregateQuery) ([]db.AggregateRow, error)
}

// Repo implements the search service's Repository contract.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs the scoped query and returns the requested page of hits plus
// the exact total match count.
func (r *Repo) Search(ctx context.Context, userID string, req *request.Request) ([]result.Hit, int, error) {
	q := &db.TextQuery{
		IndexName: domain.IndexName,
		Query:     buildQuery(userID, req, ""),
		Offset:    req.Offset(),
		Limit:     req.Limit(),
	}
	applySort(q, req)

	res, err := r.store.Search(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]result.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		rec := record.FromHash(e.Fields)
		score := e.Score
		if !q.WithScores {
			score = rec.SearchScore()
		}
		hits = append(hits, result.Hit{Record: rec, Score: score})
	}
	if req.SortBy() == request.SortRelevance {
		sortByScore(hits, req.SortOrder() == request.Desc)
	}
	return hits, res.Total, nil
}

// sortByScore orders a page of hits by score in the requested direction,
// breaking score ties by createdAt descending. The engine cannot express the
// tiebreak (or an ascending score order), so the page is re-sorted here.
func sortByScore(hits []result.Hit, desc bool) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			if desc {
				return hits[i].Score > hits[j].Score
			}
			return hits[i].Score < hits[j].Score
		}
		return hits[i].Record.CreatedAt() > hits[j].Record.CreatedAt()
	})
}

// applySort maps the request's sort to the engine. A free-text query sorted
// by relevance rides the engine's weighted scoring; everything else pins an
// explicit SORTBY field, with the precomputed base score standing in for
// relevance when there is no query to score against.
func applySort(q *db.TextQuery, req *request.Request) {
	desc := req.SortOrder() == request.Desc
	switch req.SortBy() {
	case request.SortDate:
		q.SortBy, q.SortDesc = record.FieldCreatedAt, desc
	case request.SortTitle:
		q.SortBy, q.SortDesc = record.FieldTitle, desc
	case request.SortPriority:
		q.SortBy, q.SortDesc = record.FieldPriorityRank, desc
	default:
		if req.HasQuery() {
			q.WithScores = true
		} else {
			q.SortBy, q.SortDesc = record.FieldScore, desc
		}
	}
}

// facet maps a facet dimension to the index field it groups and filters on.
type facet struct {
	field    string
	selected func(request.Filters) []string
}

var facets = []facet{
	{record.FieldItemType, func(f request.Filters) []string {
		vals := make([]string, len(f.Types))
		for i, t := range f.Types {
			vals[i] = string(t)
		}
		return vals
	}},
	{record.FieldBoardID, func(f request.Filters) []string { return f.BoardIDs }},
	{record.FieldLabels, func(f request.Filters) []string { return f.Labels }},
	{record.FieldPriority, func(f request.Filters) []string { return f.Priorities }},
	{record.FieldCardStatus, func(f request.Filters) []string {
		if f.Status == "" {
			return nil
		}
		return []string{f.Status}
	}},
}

// Facets computes the aggregation buckets for every dimension. Each
// dimension is counted with its own predicate removed, so the UI can show
// what selecting a different value of that dimension would yield.
func (r *Repo) Facets(ctx context.Context, userID string, req *request.Request) (result.Aggregations, error) {
	var aggs result.Aggregations
	for _, f := range facets {
		rows, err := r.store.Aggregate(ctx, &db.AggregateQuery{
			IndexName: domain.IndexName,
			Query:     buildQuery(userID, req, f.field),
			GroupBy:   f.field,
			Limit:     maxFacetBuckets,
		})
		if err != nil {
			return result.Aggregations{}, fmt.Errorf("aggregate %s: %w", f.field, err)
		}

		buckets := toBuckets(rows, f.selected(req.Filters()))
		switch f.field {
		case record.FieldItemType:
			aggs.Types = buckets
		case record.FieldBoardID:
			aggs.Boards = buckets
		case record.FieldLabels:
			aggs.Labels = buckets
		case record.FieldPriority:
			aggs.Priorities = buckets
		case record.FieldCardStatus:
			aggs.Statuses = buckets
		}
	}
	return aggs, nil
}

func toBuckets(rows []db.AggregateRow, selected []string) []result.FacetBucket {
	buckets := make([]result.FacetBucket, 0, len(rows))
	for _, row := range rows {
		if row.Value == "" {
			continue
		}
		buckets = append(buckets, result.FacetBucket{
			Value:    row.Value,
			Count:    row.Count,
			Selected: contains(selected, row.Value),
		})
	}
	return buckets
}

func contains(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}

// LabelCounts tallies label usage across the owner's active records, most
// used first. Feeds label suggestions.
func (r *Repo) LabelCounts(ctx context.Context, userID string) ([]result.LabelCount, error) {
	rows, err := r.store.Aggregate(ctx, &db.AggregateQuery{
		IndexName: domain.IndexName,
		Query:     ownerScope(userID),
		GroupBy:   record.FieldLabels,
		Limit:     maxFacetBuckets,
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate labels: %w", err)
	}

	counts := make([]result.LabelCount, 0, len(rows))
	for _, row := range rows {
		if row.Value == "" {
			continue
		}
		counts = append(counts, result.LabelCount{Label: row.Value, Count: row.Count})
	}
	return counts, nil
}

// BoardTitles returns the titles of the owner's active boards. Feeds board
// suggestions.
func (r *Repo) BoardTitles(ctx context.Context, userID string) ([]string, error) {
	q := fmt.Sprintf("%s @%s:{%s}", ownerScope(userID), record.FieldItemType, domrec.TypeBoard)
	res, err := r.store.Search(ctx, &db.TextQuery{
		IndexName:    domain.IndexName,
		Query:        q,
		Limit:        maxFacetBuckets,
		ReturnFields: []string{record.FieldTitle},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch board titles: %w", err)
	}

	titles := make([]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		if t := e.Fields[record.FieldTitle]; t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}

func ownerScope(userID string) string {
	return fmt.Sprintf("@%s:{%s} @%s:{%s}",
		record.FieldOwnerID, db.EscapeTag(userID),
		record.FieldStatus, domrec.StatusActive)
}
