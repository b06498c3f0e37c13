package health

import (
	"context"
	"errors"
	"testing"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type prober struct {
	exists bool
	err    error
}

func (p prober) IndexExists(context.Context, string) (bool, error) { return p.exists, p.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(pinger{}, prober{exists: true})
	report := svc.Check(context.Background())

	if report.Status != Healthy {
		t.Errorf("status = %s, want ok", report.Status)
	}
	if report.Checks["database"] != CheckOK || report.Checks["index"] != CheckOK {
		t.Errorf("checks = %v", report.Checks)
	}
}

func TestCheck_StoreDown(t *testing.T) {
	svc := New(pinger{err: errors.New("refused")}, prober{exists: true})
	report := svc.Check(context.Background())

	if report.Status != Unhealthy {
		t.Errorf("status = %s, want error", report.Status)
	}
}

func TestCheck_MissingIndexDegrades(t *testing.T) {
	svc := New(pinger{}, prober{exists: false})
	report := svc.Check(context.Background())

	if report.Status != Degraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
	if report.Checks["index"] != CheckError {
		t.Errorf("checks = %v", report.Checks)
	}
}
