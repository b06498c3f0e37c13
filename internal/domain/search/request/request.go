// Package request defines the validated search request.
package request

import (
	"fmt"

	"github.com/madplan/madsearch/internal/domain/record"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 1024
	DefaultLimit   = 50
	MaxLimit       = 100
)

// SortBy selects the result ordering key.
type SortBy string

const (
	// SortRelevance orders by relevance score (default).
	SortRelevance SortBy = "relevance"
	// SortDate orders by creation time.
	SortDate SortBy = "date"
	// SortTitle orders lexicographically by title.
	SortTitle SortBy = "title"
	// SortPriority orders by card priority rank.
	SortPriority SortBy = "priority"
)

// IsValid reports whether s is a known sort key.
func (s SortBy) IsValid() bool {
	switch s {
	case SortRelevance, SortDate, SortTitle, SortPriority:
		return true
	}
	return false
}

// SortOrder is the ordering direction.
type SortOrder string

const (
	// Asc sorts ascending.
	Asc SortOrder = "asc"
	// Desc sorts descending.
	Desc SortOrder = "desc"
)

// Filters narrows the searched record set. Zero values mean "not filtered".
// All predicates are combined with AND; values within one set are OR'ed.
type Filters struct {
	Types         []record.ItemType
	BoardIDs      []string
	Labels        []string
	Priorities    []string
	Assignees     []string
	Status        string // workflow status of the card, not record lifecycle
	DueBefore     int64  // unix millis, 0 = unbounded
	DueAfter      int64
	CreatedBefore int64
	CreatedAfter  int64
}

// IsEmpty reports whether no filter predicate is set.
func (f Filters) IsEmpty() bool {
	return len(f.Types) == 0 && len(f.BoardIDs) == 0 && len(f.Labels) == 0 &&
		len(f.Priorities) == 0 && len(f.Assignees) == 0 && f.Status == "" &&
		f.DueBefore == 0 && f.DueAfter == 0 && f.CreatedBefore == 0 && f.CreatedAfter == 0
}

// Request is a validated, normalized search request. An empty query is the
// browse mode: filters only, ranked by the precomputed base score.
type Request struct {
	query             string
	filters           Filters
	sortBy            SortBy
	sortOrder         SortOrder
	limit             int
	offset            int
	includeHighlights bool
}

// New validates and normalizes search parameters.
// Defaults: sortBy=relevance, sortOrder=desc, limit=50 (max 100), offset=0.
func New(
	query string,
	filters Filters,
	sortBy SortBy, sortOrder SortOrder,
	limit, offset int,
	includeHighlights bool,
) (Request, error) {
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if sortBy == "" {
		sortBy = SortRelevance
	}
	if !sortBy.IsValid() {
		return Request{}, fmt.Errorf("invalid sort key %q", sortBy)
	}
	switch sortOrder {
	case "":
		sortOrder = Desc
	case Asc, Desc:
	default:
		return Request{}, fmt.Errorf("invalid sort order %q", sortOrder)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		return Request{}, fmt.Errorf("offset must be >= 0")
	}
	for _, typ := range filters.Types {
		if !typ.IsValid() {
			return Request{}, fmt.Errorf("invalid type filter %q", typ)
		}
	}

	return Request{
		query:             query,
		filters:           filters,
		sortBy:            sortBy,
		sortOrder:         sortOrder,
		limit:             limit,
		offset:            offset,
		includeHighlights: includeHighlights,
	}, nil
}

// Query returns the free-text query, possibly empty.
func (r *Request) Query() string { return r.query }

// Filters returns the filter predicates.
func (r *Request) Filters() Filters { return r.filters }

// SortBy returns the ordering key.
func (r *Request) SortBy() SortBy { return r.sortBy }

// SortOrder returns the ordering direction.
func (r *Request) SortOrder() SortOrder { return r.sortOrder }

// Limit returns the page size, 1-100.
func (r *Request) Limit() int { return r.limit }

// Offset returns the page offset.
func (r *Request) Offset() int { return r.offset }

// IncludeHighlights reports whether term highlights were requested.
func (r *Request) IncludeHighlights() bool { return r.includeHighlights }

// HasQuery reports whether a free-text query is present.
func (r *Request) HasQuery() bool { return r.query != "" }
