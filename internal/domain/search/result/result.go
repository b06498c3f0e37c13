// Package result defines the typed search response shapes. Every payload is
// a concrete struct; consumers never receive untyped bags.
package result

import "github.com/madplan/madsearch/internal/domain/record"

// Hit is a raw match from the record store: the hydrated record plus the
// relevance score the query planner assigned (engine score when a free-text
// query was present, precomputed base score otherwise).
type Hit struct {
	Record record.Record
	Score  float64
}

// Result is a single display-ready search result.
type Result struct {
	ItemID         string          `json:"item_id"`
	ItemType       record.ItemType `json:"item_type"`
	Title          string          `json:"title"`
	Snippet        string          `json:"snippet,omitempty"`
	BoardID        string          `json:"board_id"`
	ListID         string          `json:"list_id,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Labels         []string        `json:"labels,omitempty"`
	RelevanceScore float64         `json:"relevance_score"`
	Highlights     []Highlight     `json:"highlights,omitempty"`
	Metadata       *Meta           `json:"metadata,omitempty"`
	CreatedAt      int64           `json:"created_at"`
	UpdatedAt      int64           `json:"updated_at"`
}

// Meta is the denormalized context attached to card results.
type Meta struct {
	Priority   string   `json:"priority,omitempty"`
	DueDate    int64    `json:"due_date,omitempty"`
	Assignees  []string `json:"assignees,omitempty"`
	Status     string   `json:"status,omitempty"`
	BoardTitle string   `json:"board_title,omitempty"`
	ListTitle  string   `json:"list_title,omitempty"`
}

// Highlight marks one query-term occurrence within a result field.
type Highlight struct {
	Field      string `json:"field"` // "title" or "content"
	Snippet    string `json:"snippet"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
}

// FacetBucket is one value of a facet dimension with its match count.
type FacetBucket struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// Aggregations carries the facet counts for the faceted-search UI. Each
// dimension is counted against all other active filters, never narrowed by
// its own dimension.
type Aggregations struct {
	Types      []FacetBucket `json:"types"`
	Boards     []FacetBucket `json:"boards"`
	Labels     []FacetBucket `json:"labels"`
	Priorities []FacetBucket `json:"priorities"`
	Statuses   []FacetBucket `json:"statuses"`
}

// Suggestion is a query refinement hint.
type Suggestion struct {
	Text  string  `json:"text"`
	Kind  string  `json:"kind"` // "label" or "board"
	Score float64 `json:"score"`
}

// Response is the full search response.
type Response struct {
	Results       []Result     `json:"results"`
	TotalCount    int          `json:"total_count"`
	Query         string       `json:"query"`
	ExecutionTime int64        `json:"execution_time_ms"`
	Aggregations  Aggregations `json:"aggregations"`
	Suggestions   []Suggestion `json:"suggestions"`
	HasMore       bool         `json:"has_more"`
}

// LabelCount is a per-owner label usage tally used for suggestions.
type LabelCount struct {
	Label string
	Count int
}
