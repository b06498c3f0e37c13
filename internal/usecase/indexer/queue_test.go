package indexer

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain/entity"
)

func TestQueue_DispatchesToRegisteredHandler(t *testing.T) {
	q := NewQueue(4, zap.NewNop())
	got := make(chan entity.ChangeEvent, 1)
	q.Register(entity.KindCard, func(_ context.Context, ev entity.ChangeEvent) error {
		got <- ev
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	ev := entity.ChangeEvent{Kind: entity.KindCard, ID: "c1", Op: entity.OpUpdate}
	if !q.Enqueue(ev) {
		t.Fatal("enqueue rejected with room in the buffer")
	}

	select {
	case handled := <-got:
		if handled != ev {
			t.Errorf("handled = %+v, want %+v", handled, ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached the handler")
	}
}

func TestQueue_FullBufferDropsWithoutBlocking(t *testing.T) {
	q := NewQueue(1, zap.NewNop())
	// worker not started, so the buffer stays full

	ev := entity.ChangeEvent{Kind: entity.KindBoard, ID: "b1", Op: entity.OpCreate}
	if !q.Enqueue(ev) {
		t.Fatal("first enqueue should fit")
	}

	done := make(chan bool, 1)
	go func() { done <- q.Enqueue(ev) }()
	select {
	case accepted := <-done:
		if accepted {
			t.Error("second enqueue accepted past the buffer size")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full buffer")
	}
}

func TestQueue_UnknownKindIsLoggedNotFatal(t *testing.T) {
	q := NewQueue(1, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q.Start(ctx)

	q.Enqueue(entity.ChangeEvent{Kind: "widget", ID: "w1", Op: entity.OpCreate})
	// drain happens asynchronously; nothing to assert beyond not panicking
	time.Sleep(50 * time.Millisecond)
}
