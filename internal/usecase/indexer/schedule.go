package indexer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain"
)

// Scheduler drives the periodic full rebuild and the trailing orphan sweep.
type Scheduler struct {
	svc      *Service
	interval time.Duration
	log      *zap.Logger
}

// NewScheduler creates a rebuild scheduler. intervalHours <= 0 defaults to
// daily.
func NewScheduler(svc *Service, intervalHours int, log *zap.Logger) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &Scheduler{
		svc:      svc,
		interval: time.Duration(intervalHours) * time.Hour,
		log:      log,
	}
}

// Start launches the schedule loop. On startup it rebuilds opportunistically
// when the index is empty but the catalog is not, then rebuilds and sweeps on
// every tick until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.bootstrap(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.run(ctx)
			}
		}
	}()
}

// bootstrap rebuilds once at startup if the index looks empty while the
// catalog has boards, e.g. after a flushed store or a fresh deploy.
func (s *Scheduler) bootstrap(ctx context.Context) {
	active, err := s.svc.records.CountActive(ctx)
	if err != nil {
		s.log.Warn("startup index probe failed", zap.Error(err))
		return
	}
	if active > 0 {
		return
	}
	boards, err := s.svc.catalog.Boards(ctx)
	if err != nil {
		s.log.Warn("startup catalog probe failed", zap.Error(err))
		return
	}
	if len(boards) == 0 {
		return
	}
	s.log.Info("index empty with a populated catalog, rebuilding",
		zap.Int("boards", len(boards)))
	s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.svc.RebuildCompleteIndex(ctx); err != nil {
		if !errors.Is(err, domain.ErrRebuildInProgress) {
			s.log.Error("scheduled rebuild failed", zap.Error(err))
		}
		return
	}
	if _, err := s.svc.CleanupOrphanedEntries(ctx); err != nil {
		s.log.Error("scheduled orphan sweep failed", zap.Error(err))
	}
}
