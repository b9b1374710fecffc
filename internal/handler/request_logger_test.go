package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureLogs swaps the default logger for one writing JSON to a buffer.
func captureLogs(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLogger_LogsStatusAndRequestID(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)

	h := middleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/leads", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "INFO" || entry["msg"] != "request" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["status"] != float64(http.StatusCreated) {
		t.Errorf("expected status 201, got %v", entry["status"])
	}
	if entry["bytes"] != float64(10) {
		t.Errorf("expected 10 bytes, got %v", entry["bytes"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("expected a request_id")
	}
}

func TestRequestLogger_Levels(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/api/leads", http.StatusOK, "INFO"},
		{"/api/leads", http.StatusInternalServerError, "WARN"},
		{"/metrics", http.StatusOK, "DEBUG"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			buf := captureLogs(t, slog.LevelDebug)
			h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("decode log: %v", err)
			}
			if entry["level"] != tt.want {
				t.Errorf("expected level %s, got %v", tt.want, entry["level"])
			}
		})
	}
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	buf := captureLogs(t, slog.LevelInfo)
	h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/test", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("a handler that writes nothing answers 200, logged %v", entry["status"])
	}
}
