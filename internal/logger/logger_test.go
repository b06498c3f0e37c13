package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_LevelOverride(t *testing.T) {
	l, err := New("prod", "debug")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug override not applied")
	}
}

func TestNew_UnknownEnvironment(t *testing.T) {
	if _, err := New("staging", ""); err == nil {
		t.Fatal("expected error for unknown environment")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New("prod", "loud"); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestContext_RoundTrip(t *testing.T) {
	l := zap.NewExample()
	ctx := NewContext(context.Background(), l)
	if got := FromContext(ctx); got != l {
		t.Error("context did not return the stored logger")
	}
}

func TestFromContext_MissingLoggerIsNop(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected nop logger, got nil")
	}
}
