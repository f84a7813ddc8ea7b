package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteMatchingOrder(t *testing.T) {
	r := New()
	var hit string
	r.GET("/api/v1/runs/*/errors", func(w http.ResponseWriter, _ *http.Request) { hit = "errors" })
	r.GET("/api/v1/runs/*", func(w http.ResponseWriter, _ *http.Request) { hit = "detail" })

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/runs/abc/errors", "errors"},
		{"/api/v1/runs/abc", "detail"},
	}
	for _, tt := range tests {
		hit = ""
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
		if hit != tt.want {
			t.Errorf("GET %s hit %q, want %q", tt.path, hit, tt.want)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	r := New()
	r.GET("/api/v1/runs", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestNotFound(t *testing.T) {
	r := New()
	r.GET("/api/v1/runs", func(w http.ResponseWriter, _ *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMountPrefix(t *testing.T) {
	r := New()
	r.Mount("/swagger/", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want mounted handler to answer", rec.Code)
	}
}

func TestTrailingWildcardSwallowsRest(t *testing.T) {
	r := New()
	var hit bool
	r.GET("/files/*", func(w http.ResponseWriter, _ *http.Request) { hit = true })

	req := httptest.NewRequest(http.MethodGet, "/files/partitions/clean.jsonl", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)
	if !hit {
		t.Error("trailing wildcard did not match nested path")
	}
}
