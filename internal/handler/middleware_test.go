package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		path      string
		wantCache string
	}{
		{"/api/leads", "no-store"},
		{"/metrics", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			called := false
			inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusTeapot)
			})

			rec := httptest.NewRecorder()
			SecurityHeaders(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if !called || rec.Code != http.StatusTeapot {
				t.Fatalf("inner handler not reached (called=%v, status=%d)", called, rec.Code)
			}
			for _, kv := range apiHeaders {
				if got := rec.Header().Get(kv[0]); got != kv[1] {
					t.Errorf("%s: want %q, got %q", kv[0], kv[1], got)
				}
			}
			if got := rec.Header().Get("Cache-Control"); got != tt.wantCache {
				t.Errorf("Cache-Control: want %q, got %q", tt.wantCache, got)
			}
			if csp := rec.Header().Get("Content-Security-Policy"); !strings.Contains(csp, "frame-ancestors 'none'") {
				t.Errorf("CSP must forbid framing: %s", csp)
			}
		})
	}
}

func TestRecover_PanicBecomes500(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/leads", nil)
	rec := httptest.NewRecorder()
	Recover(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal_error") {
		t.Errorf("expected internal_error body, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Errorf("panic value leaked: %s", rec.Body.String())
	}
}

func TestRecover_ReraisesAbort(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
		}
	}()
	Recover(inner).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
