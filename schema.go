package madsearch

// Public mirrors of the internal domain types, so SDK callers never touch
// internal packages.

// ItemType identifies what a search result points at.
type ItemType string

// Item types.
const (
	ItemBoard   ItemType = "board"
	ItemList    ItemType = "list"
	ItemCard    ItemType = "card"
	ItemComment ItemType = "comment"
)

// Board is a Kanban board snapshot to index.
type Board struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Archived    bool
	CreatedAt   int64 // unix millis
	UpdatedAt   int64
}

// List is a column snapshot to index.
type List struct {
	ID        string
	BoardID   string
	Title     string
	Position  int
	Archived  bool
	CreatedAt int64
	UpdatedAt int64
}

// Card is a task card snapshot to index.
type Card struct {
	ID          string
	ListID      string
	BoardID     string
	Title       string
	Description string
	Priority    string // low, medium, high, urgent
	Status      string // workflow status (todo, doing, done...)
	Assignees   []string
	DueDate     int64 // unix millis, 0 = none
	Archived    bool
	CreatedAt   int64
	UpdatedAt   int64
}

// Filters narrows a search.
type Filters struct {
	Types         []ItemType
	BoardIDs      []string
	Labels        []string
	Priorities    []string
	Assignees     []string
	Status        string
	DueBefore     int64
	DueAfter      int64
	CreatedBefore int64
	CreatedAfter  int64
}

// SearchOptions configures a search query.
type SearchOptions struct {
	Filters           Filters
	SortBy            string // relevance, date, title, priority
	SortOrder         string // asc, desc
	Limit             int
	Offset            int
	IncludeHighlights bool
}

// Meta is the denormalized context attached to card results.
type Meta struct {
	Priority   string
	DueDate    int64
	Assignees  []string
	Status     string
	BoardTitle string
	ListTitle  string
}

// Highlight marks one query-term occurrence within a result field.
type Highlight struct {
	Field      string
	Snippet    string
	StartIndex int
	EndIndex   int
}

// Result is a single search result.
type Result struct {
	ItemID         string
	ItemType       ItemType
	Title          string
	Snippet        string
	BoardID        string
	ListID         string
	Tags           []string
	Labels         []string
	RelevanceScore float64
	Highlights     []Highlight
	Metadata       *Meta
	CreatedAt      int64
	UpdatedAt      int64
}

// FacetBucket is one value of a facet dimension with its match count.
type FacetBucket struct {
	Value    string
	Count    int
	Selected bool
}

// Aggregations carries the facet counts.
type Aggregations struct {
	Types      []FacetBucket
	Boards     []FacetBucket
	Labels     []FacetBucket
	Priorities []FacetBucket
	Statuses   []FacetBucket
}

// Suggestion is a query refinement hint.
type Suggestion struct {
	Text  string
	Kind  string // "label" or "board"
	Score float64
}

// Response is the full search response.
type Response struct {
	Results       []Result
	TotalCount    int
	Query         string
	ExecutionTime int64 // milliseconds
	Aggregations  Aggregations
	Suggestions   []Suggestion
	HasMore       bool
}
