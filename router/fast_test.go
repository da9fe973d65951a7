package router

import "testing"

func TestFastRouterStaticAndParam(t *testing.T) {
	r := NewFastRouter()
	r.Add("GET", "/health", noopHandler)
	r.Add("GET", "/api/users/:id", noopHandler)
	r.Add("GET", "/static/*path", noopHandler)

	if h, _ := r.Find("GET", "/health"); h == nil {
		t.Fatal("expected /health to match")
	}
	if h, params := r.Find("GET", "/api/users/42"); h == nil || params["id"] != "42" {
		t.Fatalf("expected param match with id=42, got params=%v", params)
	}
	if h, params := r.Find("GET", "/static/css/app.css"); h == nil || params["path"] != "css/app.css" {
		t.Fatalf("expected wildcard match, got params=%v", params)
	}
	if h, _ := r.Find("GET", "/missing"); h != nil {
		t.Fatal("expected no match for unregistered path")
	}
}

func TestFastRouterMarkHot(t *testing.T) {
	r := NewFastRouter()
	r.Add("GET", "/metrics", noopHandler)
	r.MarkHot("GET", "/metrics")

	if r.hot[0].handler == nil || r.hot[0].path != "/metrics" {
		t.Fatal("expected /metrics promoted to the hot slot")
	}
	if h, _ := r.Find("GET", "/metrics"); h == nil {
		t.Fatal("expected hot route to still be found")
	}

	// MarkHot on a route that was never Added is a no-op.
	r.MarkHot("GET", "/never-added")
	if r.hot[0].path != "/metrics" {
		t.Fatal("MarkHot on an unregistered route should not disturb existing hot slots")
	}
}

func TestFastRouterStaticHashVerification(t *testing.T) {
	r := NewFastRouter()
	r.Add("GET", "/a", noopHandler)

	// A different method+path must never be served by a collision on
	// the same hash bucket; Find verifies method and path, not just
	// the hash.
	if h, _ := r.Find("POST", "/a"); h != nil {
		t.Fatal("POST /a should not match a route registered only for GET")
	}
}
