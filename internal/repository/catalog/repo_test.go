package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/madplan/madsearch/internal/db"
	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/entity"
)

type mockStore struct {
	docs map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string][]byte)}
}

func (m *mockStore) put(t *testing.T, key string, v any) {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", key, err)
	}
	m.docs[key] = raw
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	raw, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return raw, nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.docs[key]
	return ok, nil
}

func seed(t *testing.T, store *mockStore) {
	t.Helper()
	store.put(t, "madplan:board:b1", entity.Board{ID: "b1", OwnerID: "alice", Title: "Groceries"})
	store.put(t, "madplan:board:b2", entity.Board{ID: "b2", OwnerID: "bob", Title: "Chores"})
	store.put(t, "madplan:list:l1", entity.List{ID: "l1", BoardID: "b1", Title: "Todo"})
	store.put(t, "madplan:list:l2", entity.List{ID: "l2", BoardID: "b2", Title: "Doing"})
	store.put(t, "madplan:card:c1", entity.Card{ID: "c1", ListID: "l1", BoardID: "b1", Title: "Buy milk"})
	store.put(t, "madplan:card:c2", entity.Card{ID: "c2", ListID: "l2", BoardID: "b2", Title: "Walk dog"})
}

func TestGetBoard(t *testing.T) {
	store := newMockStore()
	seed(t, store)
	repo := New(store, "")

	b, err := repo.GetBoard(context.Background(), "b1")
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}
	if b.Title != "Groceries" || b.OwnerID != "alice" {
		t.Errorf("board = %+v", b)
	}
}

func TestGetCard_NotFound(t *testing.T) {
	repo := New(newMockStore(), "")
	_, err := repo.GetCard(context.Background(), "ghost")
	if err != domain.ErrEntityNotFound {
		t.Fatalf("err = %v, want ErrEntityNotFound", err)
	}
}

func TestBoardsByOwner(t *testing.T) {
	store := newMockStore()
	seed(t, store)
	repo := New(store, "")

	boards, err := repo.BoardsByOwner(context.Background(), "alice")
	if err != nil {
		t.Fatalf("BoardsByOwner: %v", err)
	}
	if len(boards) != 1 || boards[0].ID != "b1" {
		t.Fatalf("boards = %+v", boards)
	}
}

func TestListsByBoard(t *testing.T) {
	store := newMockStore()
	seed(t, store)
	repo := New(store, "")

	lists, err := repo.ListsByBoard(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ListsByBoard: %v", err)
	}
	if len(lists) != 1 || lists[0].ID != "l1" {
		t.Fatalf("lists = %+v", lists)
	}
}

func TestCardsByBoard(t *testing.T) {
	store := newMockStore()
	seed(t, store)
	repo := New(store, "")

	cards, err := repo.CardsByBoard(context.Background(), "b2")
	if err != nil {
		t.Fatalf("CardsByBoard: %v", err)
	}
	if len(cards) != 1 || cards[0].ID != "c2" {
		t.Fatalf("cards = %+v", cards)
	}
}

func TestCustomPrefix(t *testing.T) {
	store := newMockStore()
	store.put(t, "staging:card:c9", entity.Card{ID: "c9", ListID: "l9", BoardID: "b9", Title: "X"})
	repo := New(store, "staging:")

	ok, err := repo.HasCard(context.Background(), "c9")
	if err != nil || !ok {
		t.Fatalf("HasCard = %v, %v; want true", ok, err)
	}
}
