package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(&buf, nil),
	})
	return logger, &buf
}

func TestLoggerTagsComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentSheets)

	logger.Info("export done", FieldRecordID, "r1")

	out := buf.String()
	if !strings.Contains(out, "component=sheets") {
		t.Errorf("output should carry the component tag, got %q", out)
	}
	if !strings.Contains(out, "record_id=r1") {
		t.Errorf("output should carry caller fields, got %q", out)
	}
}

func TestMiddlewareInjectsLogger(t *testing.T) {
	logger, _ := newBufferLogger(ComponentHTTP)

	var got *Logger
	h := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != logger {
		t.Error("handler should see the injected logger")
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext should never return nil")
	}
	if logger.component != ComponentApp {
		t.Errorf("fallback component = %s, want %s", logger.component, ComponentApp)
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status    int
		wantLevel string
	}{
		{200, "level=INFO"},
		{404, "level=WARN"},
		{500, "level=ERROR"},
	}

	for _, tt := range tests {
		logger, buf := newBufferLogger(ComponentHTTP)
		sl := NewStructuredLogger(logger)
		req := httptest.NewRequest(http.MethodGet, "/api/records", nil)

		sl.LogHTTPEnd(context.Background(), req, tt.status, 3, "127.0.0.1", "req_x")

		if out := buf.String(); !strings.Contains(out, tt.wantLevel) {
			t.Errorf("status %d: output %q should contain %s", tt.status, out, tt.wantLevel)
		}
	}
}
