// Package indexer keeps the search index in step with the MadPlan catalog:
// per-entity writes, cascading removals, full and per-owner rebuilds, and the
// orphan sweep.
package indexer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/entity"
	"github.com/madplan/madsearch/internal/domain/markup"
	"github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/metrics"
)

// Service implements the index writer.
type Service struct {
	records RecordStore
	catalog Catalog
	log     *zap.Logger

	graceMillis int64
	now         func() int64 // unix millis

	rebuilding atomic.Bool
}

// NewService creates an index writer. graceHours bounds how long soft-deleted
// records survive before the orphan sweep purges them.
func NewService(records RecordStore, catalog Catalog, log *zap.Logger, graceHours int) *Service {
	return &Service{
		records:     records,
		catalog:     catalog,
		log:         log,
		graceMillis: int64(graceHours) * time.Hour.Milliseconds(),
		now:         func() int64 { return time.Now().UnixMilli() },
	}
}

// Setup creates the FT index if it is missing.
func (s *Service) Setup(ctx context.Context) error {
	return s.records.EnsureIndex(ctx)
}

// ResetIndex drops and recreates the FT index from the current schema. The
// record hashes survive, so a following rebuild (or the ongoing write stream)
// repopulates the index. Refused while a rebuild is running.
func (s *Service) ResetIndex(ctx context.Context) error {
	if s.rebuilding.Load() {
		return domain.ErrRebuildInProgress
	}
	if err := s.records.ResetIndex(ctx); err != nil {
		return err
	}
	s.log.Info("index reset")
	return nil
}

// IndexBoard writes the board's index record. Indexing is best effort:
// failures are logged and swallowed so the calling mutation never fails, and
// the next rebuild heals any gap.
func (s *Service) IndexBoard(ctx context.Context, b *entity.Board) {
	s.observe(entity.KindBoard, b.ID, s.indexBoard(ctx, b))
}

// IndexList writes the list's index record.
func (s *Service) IndexList(ctx context.Context, l *entity.List) {
	s.observe(entity.KindList, l.ID, s.indexList(ctx, l))
}

// IndexCard writes the card's index record.
func (s *Service) IndexCard(ctx context.Context, c *entity.Card) {
	s.observe(entity.KindCard, c.ID, s.indexCard(ctx, c))
}

func (s *Service) observe(kind entity.Kind, id string, err error) {
	if err != nil {
		metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "error").Inc()
		s.log.Error("index write failed",
			zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
		return
	}
	metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "ok").Inc()
}

func (s *Service) indexBoard(ctx context.Context, b *entity.Board) error {
	rec, err := boardRecord(b, s.now())
	if err != nil {
		return err
	}
	return s.records.Upsert(ctx, rec)
}

func (s *Service) indexList(ctx context.Context, l *entity.List) error {
	b, err := s.catalog.GetBoard(ctx, l.BoardID)
	if err != nil {
		return fmt.Errorf("resolve board %s: %w", l.BoardID, err)
	}
	rec, err := listRecord(l, b, s.now())
	if err != nil {
		return err
	}
	return s.records.Upsert(ctx, rec)
}

func (s *Service) indexCard(ctx context.Context, c *entity.Card) error {
	b, err := s.catalog.GetBoard(ctx, c.BoardID)
	if err != nil {
		return fmt.Errorf("resolve board %s: %w", c.BoardID, err)
	}
	listTitle := ""
	if l, err := s.catalog.GetList(ctx, c.ListID); err == nil {
		listTitle = l.Title
	}
	rec, err := cardRecord(c, b, listTitle, s.now())
	if err != nil {
		return err
	}
	return s.records.Upsert(ctx, rec)
}

// RemoveFromIndex soft-deletes the entity's record. Boards and lists cascade
// to every record beneath them; the children are resolved from the index
// itself since the source entities are already gone by the time the delete
// event arrives. Best effort, same as the writes.
func (s *Service) RemoveFromIndex(ctx context.Context, kind entity.Kind, id string) {
	if err := s.remove(ctx, kind, id); err != nil {
		s.log.Error("index removal failed",
			zap.String("kind", string(kind)), zap.String("id", id), zap.Error(err))
	}
}

func (s *Service) remove(ctx context.Context, kind entity.Kind, id string) error {
	now := s.now()
	if err := s.softDelete(ctx, record.ItemType(kind), id, now); err != nil {
		return err
	}

	var (
		children []record.Record
		err      error
	)
	switch kind {
	case entity.KindBoard:
		children, err = s.records.ByBoard(ctx, id)
	case entity.KindList:
		children, err = s.records.ByList(ctx, id)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve children: %w", err)
	}

	for _, child := range children {
		if child.ItemID() == id && child.ItemType() == record.ItemType(kind) {
			continue
		}
		if err := s.softDelete(ctx, child.ItemType(), child.ItemID(), now); err != nil {
			return fmt.Errorf("cascade %s/%s: %w", child.ItemType(), child.ItemID(), err)
		}
	}
	return nil
}

func (s *Service) softDelete(ctx context.Context, itemType record.ItemType, id string, now int64) error {
	if err := s.records.SoftDelete(ctx, itemType, id, now); err != nil {
		return err
	}
	metrics.RecordsRemovedTotal.WithLabelValues("soft").Inc()
	return nil
}

// HandleBoardChange applies one board change event.
func (s *Service) HandleBoardChange(ctx context.Context, ev entity.ChangeEvent) error {
	if ev.Op == entity.OpDelete {
		s.RemoveFromIndex(ctx, entity.KindBoard, ev.ID)
		return nil
	}
	b, err := s.catalog.GetBoard(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("fetch board %s: %w", ev.ID, err)
	}
	s.IndexBoard(ctx, b)
	return nil
}

// HandleListChange applies one list change event.
func (s *Service) HandleListChange(ctx context.Context, ev entity.ChangeEvent) error {
	if ev.Op == entity.OpDelete {
		s.RemoveFromIndex(ctx, entity.KindList, ev.ID)
		return nil
	}
	l, err := s.catalog.GetList(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("fetch list %s: %w", ev.ID, err)
	}
	s.IndexList(ctx, l)
	return nil
}

// HandleCardChange applies one card change event.
func (s *Service) HandleCardChange(ctx context.Context, ev entity.ChangeEvent) error {
	if ev.Op == entity.OpDelete {
		s.RemoveFromIndex(ctx, entity.KindCard, ev.ID)
		return nil
	}
	c, err := s.catalog.GetCard(ctx, ev.ID)
	if err != nil {
		return fmt.Errorf("fetch card %s: %w", ev.ID, err)
	}
	s.IndexCard(ctx, c)
	return nil
}

// IndexStatus reports the index's current shape.
type IndexStatus struct {
	ActiveRecords int   `json:"active_records"`
	LastRebuild   int64 `json:"last_rebuild_ms"` // unix millis, 0 = never
}

// Status returns the active record count and the last rebuild stamp.
func (s *Service) Status(ctx context.Context) (IndexStatus, error) {
	active, err := s.records.CountActive(ctx)
	if err != nil {
		return IndexStatus{}, fmt.Errorf("count records: %w", err)
	}
	stamp, err := s.records.RebuildStamp(ctx)
	if err != nil {
		return IndexStatus{}, fmt.Errorf("read rebuild stamp: %w", err)
	}
	return IndexStatus{ActiveRecords: active, LastRebuild: stamp}, nil
}

// RebuildStats reports a rebuild outcome.
type RebuildStats struct {
	Boards int `json:"boards"`
	Lists  int `json:"lists"`
	Cards  int `json:"cards"`
	Failed int `json:"failed"`
}

// RebuildCompleteIndex reindexes every entity in the catalog. At most one
// full rebuild runs at a time; a second caller gets ErrRebuildInProgress
// immediately instead of queueing behind the first. Stale index entries are
// left to the orphan sweep rather than flushed, so searches keep working
// while the rebuild runs.
func (s *Service) RebuildCompleteIndex(ctx context.Context) (RebuildStats, error) {
	if !s.rebuilding.CompareAndSwap(false, true) {
		metrics.RebuildsSkippedTotal.Inc()
		s.log.Info("rebuild already running, skipping")
		return RebuildStats{}, domain.ErrRebuildInProgress
	}
	defer s.rebuilding.Store(false)

	start := time.Now()
	boards, err := s.catalog.Boards(ctx)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("list boards: %w", err)
	}

	stats, err := s.rebuildBoards(ctx, boards)
	if err != nil {
		return stats, err
	}

	metrics.RebuildDuration.Observe(time.Since(start).Seconds())
	if err := s.records.SetRebuildStamp(ctx, s.now()); err != nil {
		s.log.Warn("failed to stamp rebuild", zap.Error(err))
	}
	s.log.Info("index rebuild complete",
		zap.Int("boards", stats.Boards), zap.Int("lists", stats.Lists),
		zap.Int("cards", stats.Cards), zap.Int("failed", stats.Failed),
		zap.Duration("took", time.Since(start)))
	return stats, nil
}

// RebuildUserIndex reindexes every record owned by one user. It does not
// contend with the full-rebuild guard: the writes are idempotent upserts.
func (s *Service) RebuildUserIndex(ctx context.Context, ownerID string) (RebuildStats, error) {
	boards, err := s.catalog.BoardsByOwner(ctx, ownerID)
	if err != nil {
		return RebuildStats{}, fmt.Errorf("list boards for %s: %w", ownerID, err)
	}
	return s.rebuildBoards(ctx, boards)
}

func (s *Service) rebuildBoards(ctx context.Context, boards []entity.Board) (RebuildStats, error) {
	var stats RebuildStats
	now := s.now()

	for i := range boards {
		b := &boards[i]
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		s.tally(entity.KindBoard, &stats.Boards, &stats.Failed, s.upsertBoard(ctx, b, now))

		lists, err := s.catalog.ListsByBoard(ctx, b.ID)
		if err != nil {
			s.log.Error("rebuild: list lists failed", zap.String("board", b.ID), zap.Error(err))
			stats.Failed++
			continue
		}
		listTitles := make(map[string]string, len(lists))
		listRecs := make([]*record.Record, 0, len(lists))
		for j := range lists {
			l := &lists[j]
			listTitles[l.ID] = l.Title
			rec, rerr := listRecord(l, b, now)
			if rerr != nil {
				s.tally(entity.KindList, &stats.Lists, &stats.Failed, rerr)
				continue
			}
			listRecs = append(listRecs, rec)
		}
		s.flush(ctx, entity.KindList, listRecs, &stats.Lists, &stats.Failed)

		cards, err := s.catalog.CardsByBoard(ctx, b.ID)
		if err != nil {
			s.log.Error("rebuild: list cards failed", zap.String("board", b.ID), zap.Error(err))
			stats.Failed++
			continue
		}
		cardRecs := make([]*record.Record, 0, len(cards))
		for j := range cards {
			c := &cards[j]
			rec, rerr := cardRecord(c, b, listTitles[c.ListID], now)
			if rerr != nil {
				s.tally(entity.KindCard, &stats.Cards, &stats.Failed, rerr)
				continue
			}
			cardRecs = append(cardRecs, rec)
		}
		s.flush(ctx, entity.KindCard, cardRecs, &stats.Cards, &stats.Failed)
	}
	return stats, nil
}

// flush writes a batch of rebuilt records in one pipelined round-trip. A
// batch failure counts every record in it as failed.
func (s *Service) flush(ctx context.Context, kind entity.Kind, recs []*record.Record, ok, failed *int) {
	if len(recs) == 0 {
		return
	}
	if err := s.records.UpsertMany(ctx, recs); err != nil {
		metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "error").Add(float64(len(recs)))
		s.log.Error("rebuild batch write failed",
			zap.String("kind", string(kind)), zap.Int("count", len(recs)), zap.Error(err))
		*failed += len(recs)
		return
	}
	metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "ok").Add(float64(len(recs)))
	*ok += len(recs)
}

func (s *Service) upsertBoard(ctx context.Context, b *entity.Board, now int64) error {
	rec, err := boardRecord(b, now)
	if err != nil {
		return err
	}
	return s.records.Upsert(ctx, rec)
}

// tally records one rebuild write, logging failures without aborting the run.
func (s *Service) tally(kind entity.Kind, ok, failed *int, err error) {
	if err != nil {
		metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "error").Inc()
		s.log.Error("rebuild write failed", zap.String("kind", string(kind)), zap.Error(err))
		*failed++
		return
	}
	metrics.RecordsIndexedTotal.WithLabelValues(string(kind), "ok").Inc()
	*ok++
}

// CleanupStats reports an orphan sweep outcome.
type CleanupStats struct {
	Checked     int `json:"checked"`
	SoftDeleted int `json:"soft_deleted"`
	Purged      int `json:"purged"`
}

// CleanupOrphanedEntries walks every index record and advances the deletion
// state machine: records whose source entity is gone become deleted, and
// records deleted longer than the grace period are purged for good. Per-record
// failures are logged and the sweep moves on.
func (s *Service) CleanupOrphanedEntries(ctx context.Context) (CleanupStats, error) {
	recs, err := s.records.All(ctx)
	if err != nil {
		return CleanupStats{}, fmt.Errorf("scan records: %w", err)
	}

	var stats CleanupStats
	now := s.now()
	for i := range recs {
		rec := &recs[i]
		stats.Checked++

		if rec.Status() == record.StatusDeleted {
			if !rec.PurgeEligible(now, s.graceMillis) {
				continue
			}
			if err := s.records.Purge(ctx, rec.ItemType(), rec.ItemID()); err != nil {
				s.log.Error("purge failed",
					zap.String("type", string(rec.ItemType())), zap.String("id", rec.ItemID()), zap.Error(err))
				continue
			}
			metrics.RecordsRemovedTotal.WithLabelValues("purge").Inc()
			stats.Purged++
			continue
		}

		exists, err := s.sourceExists(ctx, rec)
		if err != nil {
			s.log.Error("orphan check failed",
				zap.String("type", string(rec.ItemType())), zap.String("id", rec.ItemID()), zap.Error(err))
			continue
		}
		if exists {
			continue
		}
		if err := s.softDelete(ctx, rec.ItemType(), rec.ItemID(), now); err != nil {
			s.log.Error("orphan soft delete failed",
				zap.String("type", string(rec.ItemType())), zap.String("id", rec.ItemID()), zap.Error(err))
			continue
		}
		stats.SoftDeleted++
	}
	return stats, nil
}

func (s *Service) sourceExists(ctx context.Context, rec *record.Record) (bool, error) {
	switch rec.ItemType() {
	case record.TypeBoard:
		return s.catalog.HasBoard(ctx, rec.ItemID())
	case record.TypeList:
		return s.catalog.HasList(ctx, rec.ItemID())
	case record.TypeCard:
		return s.catalog.HasCard(ctx, rec.ItemID())
	default:
		// comments have no standalone snapshot; they live and die with
		// their board
		return s.catalog.HasBoard(ctx, rec.BoardID())
	}
}

// --- record construction ---

func boardRecord(b *entity.Board, now int64) (*record.Record, error) {
	text := b.Title + " " + b.Description
	rec, err := record.New(
		b.ID, record.TypeBoard,
		b.Title, b.Description,
		markup.Mentions(text), markup.Labels(text),
		b.OwnerID, b.ID, "",
		record.Metadata{BoardTitle: b.Title},
		b.Archived, b.CreatedAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("build board record %s: %w", b.ID, err)
	}
	return &rec, nil
}

func listRecord(l *entity.List, b *entity.Board, now int64) (*record.Record, error) {
	rec, err := record.New(
		l.ID, record.TypeList,
		l.Title, "",
		markup.Mentions(l.Title), markup.Labels(l.Title),
		b.OwnerID, l.BoardID, l.ID,
		record.Metadata{BoardTitle: b.Title, ListTitle: l.Title},
		l.Archived, l.CreatedAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("build list record %s: %w", l.ID, err)
	}
	return &rec, nil
}

func cardRecord(c *entity.Card, b *entity.Board, listTitle string, now int64) (*record.Record, error) {
	text := c.Title + " " + c.Description
	md := record.Metadata{
		Priority:   c.Priority,
		Assignees:  mergeAssignees(c.Assignees, markup.Assignees(c.Description)),
		Status:     c.Status,
		BoardTitle: b.Title,
		ListTitle:  listTitle,
	}
	if c.Schedule != nil {
		md.DueDate = c.Schedule.DueDate
	}

	rec, err := record.New(
		c.ID, record.TypeCard,
		c.Title, c.Description,
		markup.Mentions(text), markup.Labels(text),
		b.OwnerID, c.BoardID, c.ListID,
		md, c.Archived, c.CreatedAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("build card record %s: %w", c.ID, err)
	}
	return &rec, nil
}

// mergeAssignees unions explicit assignees with @mentions extracted from the
// description, first occurrence wins.
func mergeAssignees(explicit, mentioned []string) []string {
	if len(mentioned) == 0 {
		return explicit
	}
	seen := make(map[string]struct{}, len(explicit)+len(mentioned))
	out := make([]string, 0, len(explicit)+len(mentioned))
	for _, set := range [][]string{explicit, mentioned} {
		for _, a := range set {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
