// Package record defines the IndexRecord aggregate: the denormalized,
// search-optimized copy of a board, list or card kept in the record store.
package record

import (
	"fmt"
	"unicode/utf8"
)

// Field size caps, in runes, applied at index time. Longer source text is
// truncated, not rejected: the record is a search projection, not the system
// of record.
const (
	MaxTitleLen   = 200
	MaxContentLen = 5000
)

// ItemType identifies the source entity a record was built from.
type ItemType string

const (
	// TypeBoard indexes a board.
	TypeBoard ItemType = "board"
	// TypeList indexes a list.
	TypeList ItemType = "list"
	// TypeCard indexes a card.
	TypeCard ItemType = "card"
	// TypeComment indexes a card comment.
	TypeComment ItemType = "comment"
)

// IsValid reports whether t is a known item type.
func (t ItemType) IsValid() bool {
	switch t {
	case TypeBoard, TypeList, TypeCard, TypeComment:
		return true
	}
	return false
}

// Status is the record lifecycle state.
// active -> archived -> active is reversible; deleted records are only ever
// purged by the orphan sweep after the grace period.
type Status string

const (
	// StatusActive means the record is searchable.
	StatusActive Status = "active"
	// StatusArchived means the source entity is archived; hidden from search.
	StatusArchived Status = "archived"
	// StatusDeleted means the source entity was removed; awaiting purge.
	StatusDeleted Status = "deleted"
)

// Metadata is the optional denormalized context bag carried on card records.
type Metadata struct {
	Priority   string
	DueDate    int64 // unix millis, 0 = none
	Assignees  []string
	Status     string // workflow status of the card
	BoardTitle string
	ListTitle  string
}

// Record is one searchable index entry. Exactly one record exists per
// (itemID, itemType) pair; upserts are keyed on that pair.
type Record struct {
	itemID   string
	itemType ItemType
	title    string
	content  string
	tags     []string
	labels   []string
	ownerID  string
	boardID  string
	listID   string
	status   Status
	metadata Metadata

	searchScore float64
	createdAt   int64
	updatedAt   int64
	deletedAt   int64
}

// New validates and creates a Record, recomputing the base relevance score
// from the supplied fields. Title and content are truncated to their caps.
func New(
	itemID string, itemType ItemType,
	title, content string,
	tags, labels []string,
	ownerID, boardID, listID string,
	md Metadata, archived bool,
	createdAt, now int64,
) (Record, error) {
	if itemID == "" {
		return Record{}, fmt.Errorf("item id is required")
	}
	if !itemType.IsValid() {
		return Record{}, fmt.Errorf("invalid item type %q", itemType)
	}
	if ownerID == "" {
		return Record{}, fmt.Errorf("owner id is required")
	}
	if boardID == "" {
		return Record{}, fmt.Errorf("board id is required")
	}
	title = truncate(title, MaxTitleLen)
	content = truncate(content, MaxContentLen)
	status := StatusActive
	if archived {
		status = StatusArchived
	}
	if createdAt == 0 {
		createdAt = now
	}

	return Record{
		itemID:      itemID,
		itemType:    itemType,
		title:       title,
		content:     content,
		tags:        cloneStrings(tags),
		labels:      cloneStrings(labels),
		ownerID:     ownerID,
		boardID:     boardID,
		listID:      listID,
		status:      status,
		metadata:    md,
		searchScore: Score(title, content, len(tags), len(labels), md),
		createdAt:   createdAt,
		updatedAt:   now,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(
	itemID string, itemType ItemType,
	title, content string,
	tags, labels []string,
	ownerID, boardID, listID string,
	status Status, md Metadata,
	searchScore float64,
	createdAt, updatedAt, deletedAt int64,
) Record {
	return Record{
		itemID: itemID, itemType: itemType,
		title: title, content: content,
		tags: tags, labels: labels,
		ownerID: ownerID, boardID: boardID, listID: listID,
		status: status, metadata: md,
		searchScore: searchScore,
		createdAt:   createdAt, updatedAt: updatedAt, deletedAt: deletedAt,
	}
}

// ItemID returns the source entity identifier.
func (r *Record) ItemID() string { return r.itemID }

// ItemType returns the source entity type.
func (r *Record) ItemType() ItemType { return r.itemType }

// Title returns the denormalized title.
func (r *Record) Title() string { return r.title }

// Content returns the denormalized full-text content.
func (r *Record) Content() string { return r.content }

// Tags returns the @mention-derived tags.
func (r *Record) Tags() []string { return r.tags }

// Labels returns the #label-derived labels.
func (r *Record) Labels() []string { return r.labels }

// OwnerID returns the scoping principal.
func (r *Record) OwnerID() string { return r.ownerID }

// BoardID returns the owning board.
func (r *Record) BoardID() string { return r.boardID }

// ListID returns the owning list, empty for boards.
func (r *Record) ListID() string { return r.listID }

// Status returns the lifecycle state.
func (r *Record) Status() Status { return r.status }

// Metadata returns the denormalized context bag.
func (r *Record) Metadata() Metadata { return r.metadata }

// SearchScore returns the precomputed base relevance score.
func (r *Record) SearchScore() float64 { return r.searchScore }

// CreatedAt returns the record creation time (unix millis).
func (r *Record) CreatedAt() int64 { return r.createdAt }

// UpdatedAt returns the last write time (unix millis).
func (r *Record) UpdatedAt() int64 { return r.updatedAt }

// DeletedAt returns the soft-delete time, 0 while not deleted.
func (r *Record) DeletedAt() int64 { return r.deletedAt }

// Searchable reports whether the record is visible to queries.
func (r *Record) Searchable() bool { return r.status == StatusActive }

// SoftDelete transitions the record to the deleted state, stamping the time.
// Idempotent: a second call keeps the original deletedAt.
func (r *Record) SoftDelete(now int64) {
	if r.status == StatusDeleted {
		return
	}
	r.status = StatusDeleted
	r.deletedAt = now
	r.updatedAt = now
}

// PurgeEligible reports whether the record has been soft-deleted for at
// least graceMillis and may be physically removed by the orphan sweep.
func (r *Record) PurgeEligible(now, graceMillis int64) bool {
	return r.status == StatusDeleted && r.deletedAt > 0 && now-r.deletedAt >= graceMillis
}

// Scoring weights for the precomputed base relevance score. The score is
// monotone non-decreasing in title length, content length, tag count and
// label count, and non-negative.
const (
	titleLenDivisor   = 10.0
	contentLenDivisor = 100.0
	tagWeight         = 2.0
	labelWeight       = 2.0
	priorityBonus     = 3.0
	dueDateBonus      = 2.0
	statusBonus       = 1.0
	assigneeWeight    = 1.0
)

// Score computes the content-richness base relevance score.
func Score(title, content string, tagCount, labelCount int, md Metadata) float64 {
	titleLen := len(title)
	if titleLen > MaxTitleLen {
		titleLen = MaxTitleLen
	}
	contentLen := len(content)
	if contentLen > MaxContentLen {
		contentLen = MaxContentLen
	}

	score := float64(titleLen)/titleLenDivisor +
		float64(contentLen)/contentLenDivisor +
		tagWeight*float64(tagCount) +
		labelWeight*float64(labelCount)

	if md.Priority != "" {
		score += priorityBonus
	}
	if md.DueDate > 0 {
		score += dueDateBonus
	}
	if md.Status != "" {
		score += statusBonus
	}
	score += assigneeWeight * float64(len(md.Assignees))

	return score
}

// PriorityRank maps a card priority to a sortable numeric rank.
// Unknown or empty priorities rank lowest.
func PriorityRank(priority string) int {
	switch priority {
	case "urgent":
		return 4
	case "high":
		return 3
	case "medium":
		return 2
	case "low":
		return 1
	}
	return 0
}

// truncate caps s at max runes, never splitting a multibyte character.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
