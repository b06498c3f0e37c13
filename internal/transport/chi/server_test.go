package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain/search/request"
	"github.com/madplan/madsearch/internal/domain/search/result"
	healthuc "github.com/madplan/madsearch/internal/usecase/health"
	indexeruc "github.com/madplan/madsearch/internal/usecase/indexer"
	searchuc "github.com/madplan/madsearch/internal/usecase/search"
)

type mockSearchRepo struct {
	err       error
	lastLimit int
}

func (m *mockSearchRepo) Search(_ context.Context, _ string, req *request.Request) ([]result.Hit, int, error) {
	m.lastLimit = req.Limit()
	return nil, 0, m.err
}

func (m *mockSearchRepo) Facets(context.Context, string, *request.Request) (result.Aggregations, error) {
	return result.Aggregations{}, nil
}

func (m *mockSearchRepo) LabelCounts(context.Context, string) ([]result.LabelCount, error) {
	return nil, nil
}

func (m *mockSearchRepo) BoardTitles(context.Context, string) ([]string, error) {
	return nil, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestRouter(searchErr error) chi.Router {
	r, _ := newTestRouterPages(searchErr, PageLimits{Default: 50, Max: 100})
	return r
}

func newTestRouterPages(searchErr error, pages PageLimits) (chi.Router, *mockSearchRepo) {
	repo := &mockSearchRepo{err: searchErr}
	search := searchuc.NewService(repo, zap.NewNop())
	queue := indexeruc.NewQueue(1, zap.NewNop())
	health := healthuc.New(okPinger{}, nil)

	srv := NewServer(search, nil, queue, health, pages, zap.NewNop())
	r := chi.NewRouter()
	srv.RegisterRoutes(r)
	return r, repo
}

func TestHandleSearch_OK(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"milk"}`))
	req.Header.Set(userHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp result.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Query != "milk" {
		t.Errorf("query = %q", resp.Query)
	}
}

func TestHandleSearch_DefaultPageSizeFromConfig(t *testing.T) {
	r, repo := newTestRouterPages(nil, PageLimits{Default: 25, Max: 100})

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"milk"}`))
	req.Header.Set(userHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if repo.lastLimit != 25 {
		t.Errorf("limit = %d, want configured default 25", repo.lastLimit)
	}
}

func TestHandleSearch_MaxPageSizeClampsRequest(t *testing.T) {
	r, repo := newTestRouterPages(nil, PageLimits{Default: 25, Max: 40})

	body := `{"query":"milk","limit":90}`
	req := httptest.NewRequest("POST", "/search", strings.NewReader(body))
	req.Header.Set(userHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if repo.lastLimit != 40 {
		t.Errorf("limit = %d, want clamped to 40", repo.lastLimit)
	}
}

func TestHandleSearch_MissingUser_400(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"milk"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleSearch_BadSortKey_400(t *testing.T) {
	r := newTestRouter(nil)

	body := `{"query":"milk","sort_by":"magic"}`
	req := httptest.NewRequest("POST", "/search", strings.NewReader(body))
	req.Header.Set(userHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if errResp.Code != codeValidationFailed {
		t.Errorf("code = %q", errResp.Code)
	}
}

func TestHandleSearch_BackendDown_502(t *testing.T) {
	r := newTestRouter(errors.New("conn refused"))

	req := httptest.NewRequest("POST", "/search", strings.NewReader(`{"query":"milk"}`))
	req.Header.Set(userHeader, "alice")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestHandleEvent_Accepted(t *testing.T) {
	r := newTestRouter(nil)

	body := `{"kind":"card","id":"c1","operation":"update"}`
	req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rr.Code)
	}
}

func TestHandleEvent_UnknownKind_400(t *testing.T) {
	r := newTestRouter(nil)

	body := `{"kind":"widget","id":"w1","operation":"update"}`
	req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleEvent_QueueFull_503(t *testing.T) {
	r := newTestRouter(nil)

	body := `{"kind":"card","id":"c1","operation":"update"}`
	// queue buffer is 1 and no worker runs; the second event must shed
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/events", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		want := http.StatusAccepted
		if i == 1 {
			want = http.StatusServiceUnavailable
		}
		if rr.Code != want {
			t.Fatalf("event %d: status = %d, want %d", i, rr.Code, want)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != string(healthuc.Healthy) {
		t.Errorf("status = %q", resp.Status)
	}
}
