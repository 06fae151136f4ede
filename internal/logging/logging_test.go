package logging

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := ContextWithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Error("expected the attached logger back")
	}

	if got := FromContext(context.Background()); got != nil {
		t.Errorf("expected nil for a bare context, got %v", got)
	}
}

func TestContextWithLoggerNilSafe(t *testing.T) {
	ctx := context.Background()
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Error("a nil logger must not derive a new context")
	}
}

func TestDefault(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := Default(logger); got != logger {
		t.Error("a set logger must be returned unchanged")
	}
	if got := Default(nil); got != slog.Default() {
		t.Error("a nil logger must fall back to the process default")
	}
}
