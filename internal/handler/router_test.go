package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRouter_PreflightOnRecordRoute(t *testing.T) {
	router := NewRouter(New(&mockRecordService{}, "file:test.json", ""), nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/leads/123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected origin *, got %q", got)
	}
}

func TestRouter_RateLimitsSubmissionsOnly(t *testing.T) {
	rl := NewRateLimiter(1)
	defer rl.Close()
	router := NewRouter(New(&mockRecordService{}, "file:test.json", ""), rl, nil)

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/leads", strings.NewReader(`{}`))
		req.RemoteAddr = "10.1.1.1:5000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}
	if code := post(); code == http.StatusTooManyRequests {
		t.Fatal("first submission should not be limited")
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("expected 429 on second submission, got %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	req.RemoteAddr = "10.1.1.1:5000"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("reads must not be limited, got %d", rec.Code)
	}
}

func TestRouter_Metrics(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("studio_records_created_total 0\n"))
	})
	router := NewRouter(New(&mockRecordService{}, "file:test.json", ""), nil, metrics)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "studio_records_created_total") {
		t.Errorf("expected metrics body, got %s", rec.Body.String())
	}
}

func TestRouter_HealthRoute(t *testing.T) {
	router := NewRouter(New(&mockRecordService{}, "file:test.json", ""), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
