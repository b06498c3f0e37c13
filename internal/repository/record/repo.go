// Package record persists IndexRecords as hashes under an FT index.
package record

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/madplan/madsearch/internal/db"
	"github.com/madplan/madsearch/internal/domain"
	domrec "github.com/madplan/madsearch/internal/domain/record"
)

// store is the consumer interface for record persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	Search(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements the indexer's RecordStore contract.
type Repo struct {
	store store
}

// New creates a record repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Key returns the storage key for a (itemID, itemType) pair.
func Key(itemType domrec.ItemType, itemID string) string {
	return domain.RecordKeyPrefix + string(itemType) + ":" + itemID
}

// EnsureIndex creates the FT index over record hashes if it does not exist.
// The text field weights implement the relevance profile: title 10, tags 8,
// labels 6, content 5.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, domain.IndexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := indexDefinition()
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// ResetIndex drops the FT index and recreates it from the current schema.
// Record hashes are untouched; a rebuild repopulates the index afterwards.
func (r *Repo) ResetIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, domain.IndexName); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index: %w", err)
	}
	def, err := indexDefinition()
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func indexDefinition() (*db.IndexDefinition, error) {
	def, err := db.NewIndex(domain.IndexName).
		Prefix(domain.RecordKeyPrefix).
		TextWeightedSortable(FieldTitle, 10).
		TextWeighted(FieldTagsText, 8).
		TextWeighted(FieldLabelsText, 6).
		TextWeighted(FieldContent, 5).
		Tag(FieldItemType).
		Tag(FieldOwnerID).
		Tag(FieldBoardID).
		Tag(FieldListID).
		Tag(FieldStatus).
		TagWithOpts(FieldLabels, TagSeparator, false).
		Tag(FieldPriority).
		Tag(FieldCardStatus).
		TagWithOpts(FieldAssignees, TagSeparator, false).
		Numeric(FieldDueDate).
		NumericSortable(FieldCreatedAt).
		Numeric(FieldUpdatedAt).
		NumericSortable(FieldScore).
		NumericSortable(FieldPriorityRank).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index definition: %w", err)
	}
	return def, nil
}

// Upsert writes a record, replacing any previous version for the same
// (itemID, itemType) pair.
func (r *Repo) Upsert(ctx context.Context, rec *domrec.Record) error {
	key := Key(rec.ItemType(), rec.ItemID())
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// UpsertMany writes a batch of records in a single pipelined round-trip.
func (r *Repo) UpsertMany(ctx context.Context, recs []*domrec.Record) error {
	if len(recs) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, db.HashSetItem{
			Key:    Key(rec.ItemType(), rec.ItemID()),
			Fields: buildHashFields(rec),
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset multi (%d records): %w", len(items), err)
	}
	return nil
}

// Get returns a record by its natural key.
func (r *Repo) Get(ctx context.Context, itemType domrec.ItemType, itemID string) (domrec.Record, error) {
	key := Key(itemType, itemID)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domrec.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return domrec.Record{}, domain.ErrRecordNotFound
	}
	return FromHash(m), nil
}

// SoftDelete transitions a record to the deleted state. Missing records are
// not an error: a delete event may arrive before the entity was ever indexed.
func (r *Repo) SoftDelete(ctx context.Context, itemType domrec.ItemType, itemID string, now int64) error {
	rec, err := r.Get(ctx, itemType, itemID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	rec.SoftDelete(now)
	return r.Upsert(ctx, &rec)
}

// Purge physically removes a record.
func (r *Repo) Purge(ctx context.Context, itemType domrec.ItemType, itemID string) error {
	key := Key(itemType, itemID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// All returns every record regardless of status, for the orphan sweep.
func (r *Repo) All(ctx context.Context) ([]domrec.Record, error) {
	keys, err := r.store.Scan(ctx, domain.RecordKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	maps, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}

	recs := make([]domrec.Record, 0, len(maps))
	for _, m := range maps {
		if len(m) == 0 {
			continue
		}
		recs = append(recs, FromHash(m))
	}
	return recs, nil
}

// ByBoard returns every record under a board, any status. Used for cascading
// removal when the board itself is already gone from the catalog.
func (r *Repo) ByBoard(ctx context.Context, boardID string) ([]domrec.Record, error) {
	return r.query(ctx, fmt.Sprintf("@%s:{%s}", FieldBoardID, db.EscapeTag(boardID)))
}

// ByList returns every record under a list, any status.
func (r *Repo) ByList(ctx context.Context, listID string) ([]domrec.Record, error) {
	return r.query(ctx, fmt.Sprintf("@%s:{%s}", FieldListID, db.EscapeTag(listID)))
}

func (r *Repo) query(ctx context.Context, query string) ([]domrec.Record, error) {
	res, err := r.store.Search(ctx, &db.TextQuery{
		IndexName: domain.IndexName,
		Query:     query,
		Limit:     10_000,
	})
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	recs := make([]domrec.Record, 0, len(res.Entries))
	for _, e := range res.Entries {
		recs = append(recs, FromHash(e.Fields))
	}
	return recs, nil
}

// CountActive returns the number of searchable records.
func (r *Repo) CountActive(ctx context.Context) (int, error) {
	query := fmt.Sprintf("@%s:{%s}", FieldStatus, domrec.StatusActive)
	n, err := r.store.SearchCount(ctx, domain.IndexName, query)
	if err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}
	return n, nil
}

// SetRebuildStamp records the completion time of the last full rebuild.
func (r *Repo) SetRebuildStamp(ctx context.Context, unixMillis int64) error {
	if err := r.store.Set(ctx, domain.RebuildStampKey, []byte(strconv.FormatInt(unixMillis, 10))); err != nil {
		return fmt.Errorf("set rebuild stamp: %w", err)
	}
	return nil
}

// RebuildStamp returns the last rebuild completion time, 0 if never rebuilt.
func (r *Repo) RebuildStamp(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, domain.RebuildStampKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("get rebuild stamp: %w", err)
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse rebuild stamp: %w", err)
	}
	return v, nil
}
