package health

import (
	"context"

	"github.com/madplan/madsearch/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the store is up but the search index is missing.
	Degraded Status = "degraded"
	// Unhealthy indicates the store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexProber
}

// New creates a Service. index can be nil.
func New(db DBPinger, index IndexProber) *Service {
	return &Service{db: db, index: index}
}

// Check runs health checks against the store and the search index.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	if s.index != nil {
		exists, err := s.index.IndexExists(ctx, domain.IndexName)
		if err != nil || !exists {
			checks["index"] = CheckError
			status = Degraded
		} else {
			checks["index"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
