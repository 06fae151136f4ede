package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerAttachesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	sawLogger := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if LoggerFromContext(r.Context()) != nil {
			sawLogger = true
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := RequestLogger(base)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if !sawLogger {
		t.Error("expected a logger on the request context")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected the wrapped handler to run, got %d", rec.Code)
	}

	logged := buf.String()
	if !strings.Contains(logged, "request started") || !strings.Contains(logged, "request completed") {
		t.Errorf("request lifecycle not logged: %s", logged)
	}
	if !strings.Contains(logged, `"request_number":1`) {
		t.Errorf("request number missing: %s", logged)
	}
}

func TestRequestLoggerIncrementsRequestNumber(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	}

	if !strings.Contains(buf.String(), `"request_number":2`) {
		t.Errorf("expected the counter to advance: %s", buf.String())
	}
}
