// Package chi exposes the HTTP API: search, change-event ingestion, index
// administration, health, and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/madplan/madsearch/internal/domain"
	"github.com/madplan/madsearch/internal/domain/entity"
	"github.com/madplan/madsearch/internal/domain/record"
	"github.com/madplan/madsearch/internal/domain/search/request"
	healthuc "github.com/madplan/madsearch/internal/usecase/health"
	indexeruc "github.com/madplan/madsearch/internal/usecase/indexer"
	searchuc "github.com/madplan/madsearch/internal/usecase/search"
)

// userHeader carries the authenticated principal, resolved by the external
// auth layer in front of this service. The Bearer key authenticates the
// calling service itself.
const userHeader = "X-User-ID"

// Error codes returned in the response body.
const (
	codeBadRequest        = "bad_request"
	codeValidationFailed  = "validation_failed"
	codeRebuildInProgress = "rebuild_in_progress"
	codeSearchFailed      = "search_failed"
	codeQueueFull         = "queue_full"
	codeInternalError     = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PageLimits bounds search page sizes, from the index configuration.
type PageLimits struct {
	Default int // applied when the request omits a limit
	Max     int // larger requested limits are clamped down
}

// Server handles the HTTP API.
type Server struct {
	search  *searchuc.Service
	indexer *indexeruc.Service
	queue   *indexeruc.Queue
	health  *healthuc.Service
	pages   PageLimits
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	indexer *indexeruc.Service,
	queue *indexeruc.Queue,
	health *healthuc.Service,
	pages PageLimits,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:  search,
		indexer: indexer,
		queue:   queue,
		health:  health,
		pages:   pages,
		logger:  logger,
	}
}

// RegisterRoutes mounts every endpoint on the router.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Post("/search", s.handleSearch)
	r.Post("/events", s.handleEvent)
	r.Post("/index/rebuild", s.handleRebuild)
	r.Post("/index/rebuild/user/{userID}", s.handleRebuildUser)
	r.Post("/index/cleanup", s.handleCleanup)
	r.Post("/index/reset", s.handleIndexReset)
	r.Get("/index/status", s.handleIndexStatus)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// searchFilters mirrors request.Filters on the wire.
type searchFilters struct {
	Types         []string `json:"types,omitempty"`
	BoardIDs      []string `json:"board_ids,omitempty"`
	Labels        []string `json:"labels,omitempty"`
	Priorities    []string `json:"priorities,omitempty"`
	Assignees     []string `json:"assignees,omitempty"`
	Status        string   `json:"status,omitempty"`
	DueBefore     int64    `json:"due_before,omitempty"`
	DueAfter      int64    `json:"due_after,omitempty"`
	CreatedBefore int64    `json:"created_before,omitempty"`
	CreatedAfter  int64    `json:"created_after,omitempty"`
}

type searchRequest struct {
	Query             string        `json:"query"`
	Filters           searchFilters `json:"filters"`
	SortBy            string        `json:"sort_by,omitempty"`
	SortOrder         string        `json:"sort_order,omitempty"`
	Limit             int           `json:"limit,omitempty"`
	Offset            int           `json:"offset,omitempty"`
	IncludeHighlights bool          `json:"include_highlights,omitempty"`
}

// handleSearch handles POST /search.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(userHeader)
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "missing "+userHeader+" header")
		return
	}

	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	types := make([]record.ItemType, len(body.Filters.Types))
	for i, t := range body.Filters.Types {
		types[i] = record.ItemType(t)
	}

	limit := body.Limit
	if limit <= 0 && s.pages.Default > 0 {
		limit = s.pages.Default
	}
	if s.pages.Max > 0 && limit > s.pages.Max {
		limit = s.pages.Max
	}

	req, err := request.New(
		body.Query,
		request.Filters{
			Types:         types,
			BoardIDs:      body.Filters.BoardIDs,
			Labels:        body.Filters.Labels,
			Priorities:    body.Filters.Priorities,
			Assignees:     body.Filters.Assignees,
			Status:        body.Filters.Status,
			DueBefore:     body.Filters.DueBefore,
			DueAfter:      body.Filters.DueAfter,
			CreatedBefore: body.Filters.CreatedBefore,
			CreatedAfter:  body.Filters.CreatedAfter,
		},
		request.SortBy(body.SortBy), request.SortOrder(body.SortOrder),
		limit, body.Offset,
		body.IncludeHighlights,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	resp, err := s.search.SearchGlobal(r.Context(), userID, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEvent handles POST /events. Accepted events are indexed
// asynchronously; a full queue sheds load instead of blocking the caller.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev entity.ChangeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := ev.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if !s.queue.Enqueue(ev) {
		writeError(w, http.StatusServiceUnavailable, codeQueueFull, "event queue full")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleRebuild handles POST /index/rebuild.
func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	stats, err := s.indexer.RebuildCompleteIndex(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleRebuildUser handles POST /index/rebuild/user/{userID}.
func (s *Server) handleRebuildUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "user id is required")
		return
	}

	stats, err := s.indexer.RebuildUserIndex(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCleanup handles POST /index/cleanup.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	stats, err := s.indexer.CleanupOrphanedEntries(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleIndexReset handles POST /index/reset.
func (s *Server) handleIndexReset(w http.ResponseWriter, r *http.Request) {
	if err := s.indexer.ResetIndex(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleIndexStatus handles GET /index/status.
func (s *Server) handleIndexStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.indexer.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, codeValidationFailed, domain.ErrInvalidRequest.Error())
	case errors.Is(err, domain.ErrRebuildInProgress):
		writeError(w, http.StatusConflict, codeRebuildInProgress, domain.ErrRebuildInProgress.Error())
	case errors.Is(err, domain.ErrSearchFailed):
		s.logger.Error("search backend failure", zap.Error(err))
		writeError(w, http.StatusBadGateway, codeSearchFailed, domain.ErrSearchFailed.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
