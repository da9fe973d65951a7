package router

import (
	"github.com/octet-server/octet/core"
	"github.com/octet-server/octet/core/http"
)

// lookup is satisfied by any of the three route-matching strategies in
// this package; Router is agnostic to which one backs it.
type lookup interface {
	Add(method, path string, handler HandlerFunc)
	Find(method, path string) (HandlerFunc, map[string]string)
}

// Router adapts a route-matching strategy to core.HandlerFunc, filling
// in matched path parameters on the request and falling back to a
// configurable NotFound handler.
type Router struct {
	routes   lookup
	notFound core.HandlerFunc
}

// New builds a Router backed by FastRouter, the default lookup
// strategy: inline fast paths for common routes, hashed static routes,
// linear scan for single-parameter routes, radix tree fallback for
// everything else.
func New() *Router {
	return &Router{
		routes:   NewFastRouter(),
		notFound: defaultNotFound,
	}
}

// NewWithLookup builds a Router backed by an explicit lookup strategy,
// for callers that want the plain radix tree or the compile-time
// CompiledRouter instead of FastRouter's heuristics.
func NewWithLookup(l lookup) *Router {
	return &Router{routes: l, notFound: defaultNotFound}
}

// NewCompiled builds a Router backed by CompiledRouter: a result cache
// plus O(1) static-route lookup, for a route table that's fully
// registered up front and never changes once the server starts. Call
// Finalize after the last route registration to pre-warm the cache.
func NewCompiled() *Router {
	return NewWithLookup(NewCompiledRouter())
}

// Finalize pre-warms the route cache if the Router is backed by a
// CompiledRouter; it's a no-op for every other strategy. Safe to call
// unconditionally right before Run.
func (r *Router) Finalize() *Router {
	if c, ok := r.routes.(*CompiledRouter); ok {
		c.Build()
	}
	return r
}

// CacheStats reports the backing CompiledRouter's cumulative cache
// hit/miss counts. ok is false for any other strategy, which tracks no
// such cache.
func (r *Router) CacheStats() (hits, misses uint64, hitRate float64, ok bool) {
	c, ok := r.routes.(*CompiledRouter)
	if !ok {
		return 0, 0, 0, false
	}
	hits, misses, hitRate = c.Stats()
	return hits, misses, hitRate, true
}

// MarkHot promotes an already-registered static route into FastRouter's
// inline fast path; a no-op for every other strategy or for a route
// not previously registered via Get/Post/Put/Delete/Handle.
func (r *Router) MarkHot(method, path string) *Router {
	if f, ok := r.routes.(*FastRouter); ok {
		f.MarkHot(method, path)
	}
	return r
}

func defaultNotFound(req *http.Request) (*http.Response, error) {
	resp := http.NewResponse(http.StatusNotFound)
	resp.SetBody([]byte("404 not found\n"))
	return resp, nil
}

// NotFound overrides the handler invoked when no route matches.
func (r *Router) NotFound(handler core.HandlerFunc) *Router {
	r.notFound = handler
	return r
}

// Handle registers handler for method and path.
func (r *Router) Handle(method, path string, handler core.HandlerFunc) *Router {
	r.routes.Add(method, path, handler)
	return r
}

// Get registers a GET route.
func (r *Router) Get(path string, handler core.HandlerFunc) *Router {
	return r.Handle("GET", path, handler)
}

// Post registers a POST route.
func (r *Router) Post(path string, handler core.HandlerFunc) *Router {
	return r.Handle("POST", path, handler)
}

// Put registers a PUT route.
func (r *Router) Put(path string, handler core.HandlerFunc) *Router {
	return r.Handle("PUT", path, handler)
}

// Delete registers a DELETE route.
func (r *Router) Delete(path string, handler core.HandlerFunc) *Router {
	return r.Handle("DELETE", path, handler)
}

// Handler returns the dispatching core.HandlerFunc to hand to
// core.NewEngine: match method+URI, stamp matched params onto the
// request, and fall back to NotFound.
func (r *Router) Handler() core.HandlerFunc {
	return func(req *http.Request) (*http.Response, error) {
		handler, params := r.routes.Find(req.Method.String(), requestPath(req.URI))
		if handler == nil {
			return r.notFound(req)
		}
		if len(params) > 0 {
			req.Params = params
		}
		return handler(req)
	}
}

// requestPath strips a query string off a request URI, since routers
// match on path only.
func requestPath(uri string) string {
	for i := 0; i < len(uri); i++ {
		if uri[i] == '?' {
			return uri[:i]
		}
	}
	return uri
}
