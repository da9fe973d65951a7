package router

import (
	"testing"

	"github.com/octet-server/octet/core/http"
)

func noopHandler(req *http.Request) (*http.Response, error) {
	return http.NewResponse(http.StatusOK), nil
}

// TestRadixRouterBasic tests basic static routing
func TestRadixRouterBasic(t *testing.T) {
	router := NewRadixRouter()

	router.Add("GET", "/", noopHandler)
	router.Add("GET", "/hello", noopHandler)
	router.Add("GET", "/hello/world", noopHandler)

	tests := []struct {
		path        string
		shouldMatch bool
	}{
		{"/", true},
		{"/hello", true},
		{"/hello/world", true},
		{"/notfound", false},
	}

	for _, tt := range tests {
		h, _ := router.Find("GET", tt.path)
		matched := h != nil
		if matched != tt.shouldMatch {
			t.Errorf("Path %s: expected match=%v, got match=%v", tt.path, tt.shouldMatch, matched)
		}
	}
}

// TestRadixRouterPriority tests route priority (exact > param)
func TestRadixRouterPriority(t *testing.T) {
	router := NewRadixRouter()

	router.Add("GET", "/user/admin", noopHandler)
	router.Add("GET", "/user/:id", noopHandler)

	tests := []struct {
		path         string
		shouldMatch  bool
		isExactMatch bool
	}{
		{"/user/admin", true, true},
		{"/user/123", true, false},
	}

	for _, tt := range tests {
		h, params := router.Find("GET", tt.path)
		if (h != nil) != tt.shouldMatch {
			t.Errorf("Path %s: expected match=%v, got match=%v", tt.path, tt.shouldMatch, h != nil)
		}
		if tt.shouldMatch {
			_, hasParam := params["id"]
			if tt.isExactMatch && hasParam {
				t.Errorf("Path %s: should be exact match, but got params", tt.path)
			}
			if !tt.isExactMatch && !hasParam {
				t.Errorf("Path %s: should be param match, but no params", tt.path)
			}
		}
	}
}

// Benchmarks
func BenchmarkRadixRouterStatic(b *testing.B) {
	router := NewRadixRouter()
	router.Add("GET", "/hello/world", noopHandler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.Find("GET", "/hello/world")
	}
}

func BenchmarkRadixRouterParam(b *testing.B) {
	router := NewRadixRouter()
	router.Add("GET", "/user/:id", noopHandler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		router.Find("GET", "/user/123")
	}
}
