// Package catalog reads MadPlan source entities from the shared store. The
// board service owns these documents; this side only hydrates snapshots for
// indexing, keyed under a configurable prefix.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/madplan/madsearch/internal/db"
	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/entity"
)

// store is the consumer interface for entity reads (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo implements the indexer's Catalog contract.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository over the given entity key prefix,
// falling back to the default MadPlan prefix when empty.
func New(s store, prefix string) *Repo {
	if prefix == "" {
		prefix = domain.DefaultEntityPrefix
	}
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) key(kind entity.Kind, id string) string {
	return r.prefix + string(kind) + ":" + id
}

// GetBoard returns a board snapshot by id.
func (r *Repo) GetBoard(ctx context.Context, id string) (*entity.Board, error) {
	var b entity.Board
	if err := r.get(ctx, entity.KindBoard, id, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetList returns a list snapshot by id.
func (r *Repo) GetList(ctx context.Context, id string) (*entity.List, error) {
	var l entity.List
	if err := r.get(ctx, entity.KindList, id, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// GetCard returns a card snapshot by id.
func (r *Repo) GetCard(ctx context.Context, id string) (*entity.Card, error) {
	var c entity.Card
	if err := r.get(ctx, entity.KindCard, id, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) get(ctx context.Context, kind entity.Kind, id string, out any) error {
	key := r.key(kind, id)
	raw, err := r.store.JSONGet(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrEntityNotFound
		}
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Boards returns every board in the catalog.
func (r *Repo) Boards(ctx context.Context) ([]entity.Board, error) {
	var boards []entity.Board
	err := r.scanInto(ctx, entity.KindBoard, func(raw []byte) error {
		var b entity.Board
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		boards = append(boards, b)
		return nil
	})
	return boards, err
}

// BoardsByOwner returns every board owned by the given user.
func (r *Repo) BoardsByOwner(ctx context.Context, ownerID string) ([]entity.Board, error) {
	all, err := r.Boards(ctx)
	if err != nil {
		return nil, err
	}
	boards := all[:0]
	for _, b := range all {
		if b.OwnerID == ownerID {
			boards = append(boards, b)
		}
	}
	return boards, nil
}

// ListsByBoard returns the lists belonging to a board.
func (r *Repo) ListsByBoard(ctx context.Context, boardID string) ([]entity.List, error) {
	var lists []entity.List
	err := r.scanInto(ctx, entity.KindList, func(raw []byte) error {
		var l entity.List
		if err := json.Unmarshal(raw, &l); err != nil {
			return err
		}
		if l.BoardID == boardID {
			lists = append(lists, l)
		}
		return nil
	})
	return lists, err
}

// CardsByList returns the cards in a list.
func (r *Repo) CardsByList(ctx context.Context, listID string) ([]entity.Card, error) {
	return r.cards(ctx, func(c *entity.Card) bool { return c.ListID == listID })
}

// CardsByBoard returns the cards across every list of a board.
func (r *Repo) CardsByBoard(ctx context.Context, boardID string) ([]entity.Card, error) {
	return r.cards(ctx, func(c *entity.Card) bool { return c.BoardID == boardID })
}

func (r *Repo) cards(ctx context.Context, keep func(*entity.Card) bool) ([]entity.Card, error) {
	var cards []entity.Card
	err := r.scanInto(ctx, entity.KindCard, func(raw []byte) error {
		var c entity.Card
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		if keep(&c) {
			cards = append(cards, c)
		}
		return nil
	})
	return cards, err
}

// scanInto walks every document of one entity kind. Documents that vanish
// between the scan and the read are skipped, not errors.
func (r *Repo) scanInto(ctx context.Context, kind entity.Kind, visit func([]byte) error) error {
	pattern := r.prefix + string(kind) + ":*"
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}

	for _, key := range keys {
		raw, err := r.store.JSONGet(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return fmt.Errorf("fetch %s: %w", key, err)
		}
		if err := visit(raw); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
	}
	return nil
}

// HasBoard reports whether the board still exists in the catalog.
func (r *Repo) HasBoard(ctx context.Context, id string) (bool, error) {
	return r.store.Exists(ctx, r.key(entity.KindBoard, id))
}

// HasList reports whether the list still exists in the catalog.
func (r *Repo) HasList(ctx context.Context, id string) (bool, error) {
	return r.store.Exists(ctx, r.key(entity.KindList, id))
}

// HasCard reports whether the card still exists in the catalog.
func (r *Repo) HasCard(ctx context.Context, id string) (bool, error) {
	return r.store.Exists(ctx, r.key(entity.KindCard, id))
}
