package indexer

import (
	"context"

	"github.com/madplan/madsearch/internal/domain/entity"
	"github.com/madplan/madsearch/internal/domain/record"
)

// RecordStore persists index records.
type RecordStore interface {
	EnsureIndex(ctx context.Context) error
	ResetIndex(ctx context.Context) error
	Upsert(ctx context.Context, rec *record.Record) error
	UpsertMany(ctx context.Context, recs []*record.Record) error
	SoftDelete(ctx context.Context, itemType record.ItemType, itemID string, now int64) error
	Purge(ctx context.Context, itemType record.ItemType, itemID string) error
	All(ctx context.Context) ([]record.Record, error)
	ByBoard(ctx context.Context, boardID string) ([]record.Record, error)
	ByList(ctx context.Context, listID string) ([]record.Record, error)
	CountActive(ctx context.Context) (int, error)
	SetRebuildStamp(ctx context.Context, unixMillis int64) error
	RebuildStamp(ctx context.Context) (int64, error)
}

// Catalog reads source entity snapshots owned by the board service.
type Catalog interface {
	GetBoard(ctx context.Context, id string) (*entity.Board, error)
	GetList(ctx context.Context, id string) (*entity.List, error)
	GetCard(ctx context.Context, id string) (*entity.Card, error)
	Boards(ctx context.Context) ([]entity.Board, error)
	BoardsByOwner(ctx context.Context, ownerID string) ([]entity.Board, error)
	ListsByBoard(ctx context.Context, boardID string) ([]entity.List, error)
	CardsByList(ctx context.Context, listID string) ([]entity.Card, error)
	CardsByBoard(ctx context.Context, boardID string) ([]entity.Card, error)
	HasBoard(ctx context.Context, id string) (bool, error)
	HasList(ctx context.Context, id string) (bool, error)
	HasCard(ctx context.Context, id string) (bool, error)
}
