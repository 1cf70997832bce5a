package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentLedger)

	l.Info("Day saved", FieldDate, "2025-01-01")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "date=2025-01-01") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).With(FieldRequestID, "abc").Warn("Slow")
	out = buf.String()
	if !strings.Contains(out, "component=http") || !strings.Contains(out, "request_id=abc") {
		t.Fatalf("unexpected output: %s", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component should appear once: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentApp)

	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}
	if got := FromContext(WithLogger(context.Background(), l)); got != l {
		t.Fatal("expected logger from context")
	}
}

func TestMiddlewareChain(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, ComponentHTTP)

	h := Middleware(l)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("Inside handler")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in log: %s", buf.String())
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf, ComponentHTTP))
	ctx := context.Background()

	sl.LogHTTPEnd(ctx, httptest.NewRequest(http.MethodPut, "/api/days/2025-01-01", nil), 500, 12, "10.0.0.1")
	if out := buf.String(); !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=500") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	sl.LogDaySaved(ctx, "2025-01-01", "10.00", "2.00")
	if out := buf.String(); !strings.Contains(out, "operation=update") || !strings.Contains(out, "income=10.00") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	sl.LogError(ctx, "Save failed", errors.New("boom"), OpUpdate, nil)
	if out := buf.String(); !strings.Contains(out, "error=boom") {
		t.Fatalf("unexpected output: %s", out)
	}
}
