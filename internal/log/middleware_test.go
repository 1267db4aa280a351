package log

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newCapturedLogger(buf *bytes.Buffer) *Logger {
	cfg := DefaultConfig()
	cfg.Component = "test"
	cfg.Handler = slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	return New(cfg)
}

func TestMiddlewareAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedLogger(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})
	handler := Middleware(logger)(inner)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	out := buf.String()
	if !strings.Contains(out, "handled") || !strings.Contains(out, "component=test") {
		t.Fatalf("log output = %q", out)
	}
}

func TestRequestIDMiddlewareEnrichesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newCapturedLogger(&buf)

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).InfoContext(r.Context(), "handled")
	})
	handler := Middleware(logger)(RequestIDMiddleware(func(r *http.Request) string {
		return r.Header.Get("X-Request-Id")
	})(inner))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req_abc123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "request_id=req_abc123") {
		t.Fatalf("log output missing request id: %q", out)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	if logger == nil || logger.Logger == nil {
		t.Fatal("FromContext without middleware must still return a usable logger")
	}
}
