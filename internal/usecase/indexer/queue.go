package indexer

import (
	"context"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain/entity"
	"github.com/madplan/madsearch/internal/metrics"
)

// Handler applies one change event for a single entity kind.
type Handler func(ctx context.Context, ev entity.ChangeEvent) error

// Queue decouples change-event producers from index writes: a buffered
// channel drained by one worker goroutine. Enqueue never blocks the producer;
// when the buffer is full the event is dropped and logged, since indexing is
// best effort and the next rebuild heals the gap.
type Queue struct {
	events   chan entity.ChangeEvent
	handlers map[entity.Kind]Handler
	log      *zap.Logger
}

// NewQueue creates a change-event queue with the given buffer size.
func NewQueue(size int, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 1024
	}
	return &Queue{
		events:   make(chan entity.ChangeEvent, size),
		handlers: make(map[entity.Kind]Handler),
		log:      log,
	}
}

// Register sets the handler for one entity kind. Not safe to call after
// Start.
func (q *Queue) Register(kind entity.Kind, h Handler) {
	q.handlers[kind] = h
}

// Enqueue submits a change event without blocking. Returns false when the
// buffer is full and the event was dropped.
func (q *Queue) Enqueue(ev entity.ChangeEvent) bool {
	select {
	case q.events <- ev:
		metrics.EventQueueDepth.Set(float64(len(q.events)))
		return true
	default:
		metrics.EventsDroppedTotal.Inc()
		q.log.Error("event queue full, dropping event",
			zap.String("kind", string(ev.Kind)), zap.String("id", ev.ID), zap.String("op", string(ev.Op)))
		return false
	}
}

// Start runs the worker until ctx is cancelled, draining events in arrival
// order. Handler failures are logged and the worker moves on.
func (q *Queue) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-q.events:
				metrics.EventQueueDepth.Set(float64(len(q.events)))
				q.dispatch(ctx, ev)
			}
		}
	}()
}

func (q *Queue) dispatch(ctx context.Context, ev entity.ChangeEvent) {
	h, ok := q.handlers[ev.Kind]
	if !ok {
		q.log.Error("no handler for entity kind", zap.String("kind", string(ev.Kind)))
		return
	}
	if err := h(ctx, ev); err != nil {
		q.log.Error("event handling failed",
			zap.String("kind", string(ev.Kind)), zap.String("id", ev.ID),
			zap.String("op", string(ev.Op)), zap.Error(err))
	}
}
