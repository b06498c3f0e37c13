package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
)

type mockRepo struct {
	hits      []result.Hit
	total     int
	searchErr error
	facetsErr error
	labels    []result.LabelCount
	labelsErr error
	boards    []string
	boardsErr error
}

func (m *mockRepo) Search(context.Context, string, *request.Request) ([]result.Hit, int, error) {
	return m.hits, m.total, m.searchErr
}

func (m *mockRepo) Facets(context.Context, string, *request.Request) (result.Aggregations, error) {
	return result.Aggregations{}, m.facetsErr
}

func (m *mockRepo) LabelCounts(context.Context, string) ([]result.LabelCount, error) {
	return m.labels, m.labelsErr
}

func (m *mockRepo) BoardTitles(context.Context, string) ([]string, error) {
	return m.boards, m.boardsErr
}

func cardHit(t *testing.T, id, title, content string, score float64) result.Hit {
	t.Helper()
	rec, err := record.New(
		id, record.TypeCard, title, content,
		nil, []string{"groceries"},
		"alice", "b1", "l1",
		record.Metadata{Priority: "high", BoardTitle: "Home", ListTitle: "Todo"},
		false, 100, 200,
	)
	if err != nil {
		t.Fatalf("record.New: %v", err)
	}
	return result.Hit{Record: rec, Score: score}
}

func mustRequest(t *testing.T, query string, limit, offset int, withHighlights bool) *request.Request {
	t.Helper()
	req, err := request.New(query, request.Filters{}, request.SortRelevance, request.Desc, limit, offset, withHighlights)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func TestSearchGlobal_EnrichesHits(t *testing.T) {
	repo := &mockRepo{
		hits: []result.Hit{
			cardHit(t, "c1", "Buy milk", "from the corner store", 3.5),
			cardHit(t, "c2", "Buy eggs", "a dozen, free range", 2.0),
		},
		total: 2,
	}
	svc := NewService(repo, zap.NewNop())

	resp, err := svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "buy", 50, 0, false))
	if err != nil {
		t.Fatalf("SearchGlobal: %v", err)
	}

	if resp.TotalCount != 2 || len(resp.Results) != 2 {
		t.Fatalf("total = %d, results = %d", resp.TotalCount, len(resp.Results))
	}
	if resp.HasMore {
		t.Error("hasMore = true with all results returned")
	}
	first := resp.Results[0]
	if first.ItemID != "c1" || first.RelevanceScore != 3.5 {
		t.Errorf("first = %+v", first)
	}
	if first.Metadata == nil || first.Metadata.BoardTitle != "Home" {
		t.Errorf("card metadata missing: %+v", first.Metadata)
	}
	if first.Snippet != "from the corner store" {
		t.Errorf("snippet = %q", first.Snippet)
	}
	if resp.Query != "buy" {
		t.Errorf("query echoed as %q", resp.Query)
	}
}

func TestSearchGlobal_HasMorePagination(t *testing.T) {
	repo := &mockRepo{hits: []result.Hit{cardHit(t, "c1", "Buy milk", "", 1)}, total: 3}
	svc := NewService(repo, zap.NewNop())

	resp, err := svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "buy", 1, 0, false))
	if err != nil {
		t.Fatalf("SearchGlobal: %v", err)
	}
	if !resp.HasMore {
		t.Error("hasMore = false, want true with 3 total and 1 returned")
	}

	resp, err = svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "buy", 1, 2, false))
	if err != nil {
		t.Fatalf("SearchGlobal: %v", err)
	}
	if resp.HasMore {
		t.Error("hasMore = true on the last page")
	}
}

func TestSearchGlobal_RequiresUser(t *testing.T) {
	svc := NewService(&mockRepo{}, zap.NewNop())

	_, err := svc.SearchGlobal(context.Background(), "", mustRequest(t, "buy", 50, 0, false))
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("err = %v, want ErrInvalidRequest", err)
	}
}

func TestSearchGlobal_QueryFailure(t *testing.T) {
	svc := NewService(&mockRepo{searchErr: errors.New("conn reset")}, zap.NewNop())

	_, err := svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "buy", 50, 0, false))
	if !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("err = %v, want ErrSearchFailed", err)
	}
}

func TestSearchGlobal_SuggestionFailureDegrades(t *testing.T) {
	repo := &mockRepo{
		total:     0,
		labelsErr: errors.New("agg timeout"),
		boardsErr: errors.New("agg timeout"),
	}
	svc := NewService(repo, zap.NewNop())

	resp, err := svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "buy", 50, 0, false))
	if err != nil {
		t.Fatalf("SearchGlobal: %v", err)
	}
	if len(resp.Suggestions) != 0 {
		t.Errorf("suggestions = %+v, want empty on failure", resp.Suggestions)
	}
}

func TestSuggestions_RankedAndCapped(t *testing.T) {
	repo := &mockRepo{
		labels: []result.LabelCount{
			{Label: "groceries", Count: 9},
			{Label: "grocery-run", Count: 2},
			{Label: "work", Count: 50},
		},
		boards: []string{"Groceries", "Chores"},
	}
	svc := NewService(repo, zap.NewNop())

	got := svc.suggestions(context.Background(), "alice", "gro")
	if len(got) != 3 {
		t.Fatalf("suggestions = %+v", got)
	}
	if got[0].Text != "groceries" || got[0].Kind != "label" || got[0].Score != 9 {
		t.Errorf("top suggestion = %+v", got[0])
	}
	if got[1].Kind != "board" || got[1].Text != "Groceries" {
		t.Errorf("second = %+v, want board title above weaker label", got[1])
	}
	if got[2].Text != "grocery-run" {
		t.Errorf("third = %+v", got[2])
	}
}

func TestSuggestions_EmptyQuery(t *testing.T) {
	svc := NewService(&mockRepo{labels: []result.LabelCount{{Label: "x", Count: 1}}}, zap.NewNop())
	if got := svc.suggestions(context.Background(), "alice", "  "); got != nil {
		t.Errorf("suggestions = %+v, want none in browse mode", got)
	}
}

func TestSearchGlobal_Highlights(t *testing.T) {
	repo := &mockRepo{
		hits:  []result.Hit{cardHit(t, "c1", "Buy milk", "remember to buy milk today", 1)},
		total: 1,
	}
	svc := NewService(repo, zap.NewNop())

	resp, err := svc.SearchGlobal(context.Background(), "alice", mustRequest(t, "milk", 50, 0, true))
	if err != nil {
		t.Fatalf("SearchGlobal: %v", err)
	}

	hl := resp.Results[0].Highlights
	if len(hl) != 2 {
		t.Fatalf("highlights = %+v, want title and content", hl)
	}
	if hl[0].Field != "title" || !strings.Contains(hl[0].Snippet, "<mark>milk</mark>") {
		t.Errorf("title highlight = %+v", hl[0])
	}
	if hl[1].Field != "content" || hl[1].StartIndex != strings.Index("remember to buy milk today", "milk") {
		t.Errorf("content highlight = %+v", hl[1])
	}
}
