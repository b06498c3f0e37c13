package madsearch

import (
	"context"

	"github.com/madplan/madsearch/internal/domain/entity"
	indexeruc "github.com/madplan/madsearch/internal/usecase/indexer"
)

// IndexerService exposes the index-maintenance hooks the MadPlan board
// service calls after entity mutations. The write hooks are fire-and-forget:
// indexing failures are logged and never surfaced to the caller.
type IndexerService struct {
	svc *indexeruc.Service
}

// RebuildStats summarizes one rebuild pass.
type RebuildStats struct {
	Boards int
	Lists  int
	Cards  int
	Failed int
}

// CleanupStats summarizes one orphan sweep.
type CleanupStats struct {
	Checked     int
	SoftDeleted int
	Purged      int
}

// IndexBoard indexes a board snapshot.
func (i *IndexerService) IndexBoard(ctx context.Context, b Board) {
	i.svc.IndexBoard(ctx, toBoard(b))
}

// IndexList indexes a list snapshot.
func (i *IndexerService) IndexList(ctx context.Context, l List) {
	i.svc.IndexList(ctx, toList(l))
}

// IndexCard indexes a card snapshot.
func (i *IndexerService) IndexCard(ctx context.Context, c Card) {
	i.svc.IndexCard(ctx, toCard(c))
}

// RemoveBoard soft-deletes a board's record and everything indexed under it.
func (i *IndexerService) RemoveBoard(ctx context.Context, id string) {
	i.svc.RemoveFromIndex(ctx, entity.KindBoard, id)
}

// RemoveList soft-deletes a list's record and the card records under it.
func (i *IndexerService) RemoveList(ctx context.Context, id string) {
	i.svc.RemoveFromIndex(ctx, entity.KindList, id)
}

// RemoveCard soft-deletes a card's record.
func (i *IndexerService) RemoveCard(ctx context.Context, id string) {
	i.svc.RemoveFromIndex(ctx, entity.KindCard, id)
}

// Rebuild reindexes every entity in the store. Only one rebuild runs at a
// time; concurrent calls fail immediately.
func (i *IndexerService) Rebuild(ctx context.Context) (RebuildStats, error) {
	st, err := i.svc.RebuildCompleteIndex(ctx)
	return RebuildStats(st), err
}

// RebuildUser reindexes the boards owned by one user.
func (i *IndexerService) RebuildUser(ctx context.Context, ownerID string) (RebuildStats, error) {
	st, err := i.svc.RebuildUserIndex(ctx, ownerID)
	return RebuildStats(st), err
}

// ResetIndex drops and recreates the search index schema. Record data
// survives; run Rebuild afterwards to repopulate.
func (i *IndexerService) ResetIndex(ctx context.Context) error {
	return i.svc.ResetIndex(ctx)
}

// Cleanup sweeps the index for records whose source entity is gone and
// purges soft-deleted records past the grace period.
func (i *IndexerService) Cleanup(ctx context.Context) (CleanupStats, error) {
	st, err := i.svc.CleanupOrphanedEntries(ctx)
	return CleanupStats{Checked: st.Checked, SoftDeleted: st.SoftDeleted, Purged: st.Purged}, err
}

func toBoard(b Board) *entity.Board {
	return &entity.Board{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Title:       b.Title,
		Description: b.Description,
		Archived:    b.Archived,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toList(l List) *entity.List {
	return &entity.List{
		ID:        l.ID,
		BoardID:   l.BoardID,
		Title:     l.Title,
		Position:  l.Position,
		Archived:  l.Archived,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

func toCard(c Card) *entity.Card {
	card := &entity.Card{
		ID:          c.ID,
		ListID:      c.ListID,
		BoardID:     c.BoardID,
		Title:       c.Title,
		Description: c.Description,
		Priority:    c.Priority,
		Status:      c.Status,
		Assignees:   c.Assignees,
		Archived:    c.Archived,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.DueDate != 0 {
		card.Schedule = &entity.Schedule{DueDate: c.DueDate}
	}
	return card
}
