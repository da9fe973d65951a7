package router

import "strings"

// FastRouter is the default route-matching strategy: an inline fast
// path for a handful of operator-designated hot routes, a hashed map
// for the rest of the static routes, a linear scan for single-param
// routes and for wildcard routes, and a radix tree fallback for
// multi-param routes without a wildcard.
type FastRouter struct {
	// hot holds up to len(hot) routes promoted out of staticMap via
	// MarkHot, checked before any map lookup. Unlike a fixed pair of
	// hardcoded endpoint names, which route (if any) lives here is the
	// caller's choice — a metrics or health endpoint under heavy
	// monitoring traffic, say.
	hot [2]hotEntry

	// Static routes: hashed for O(1) average lookup. The hash is
	// verified against the stored method+path on every hit, so a hash
	// collision between two distinct routes degrades to an extra
	// string compare instead of silently serving the wrong handler.
	staticMap map[uint64]staticEntry

	// Parameterized routes: optimized for cache locality
	paramRoutes []paramRoute

	// Fallback to radix tree for complex routes
	radix *RadixRouter
}

type hotEntry struct {
	method  string
	path    string
	handler HandlerFunc
}

type staticEntry struct {
	method  string
	path    string
	handler HandlerFunc
}

type paramRoute struct {
	method      string
	prefix      string // "/api/users/"
	suffix      string // empty or trailing path
	paramName   string // "id"
	handler     HandlerFunc
	prefixLen   int
	hasWildcard bool
}

// NewFastRouter creates a new fast router
func NewFastRouter() *FastRouter {
	return &FastRouter{
		staticMap:   make(map[uint64]staticEntry, 64),
		paramRoutes: make([]paramRoute, 0, 16),
		radix:       NewRadixRouter(),
	}
}

// MarkHot promotes an already-registered static route into the inline
// fast path, bypassing the hash map entirely. Only the two most recent
// calls survive; MarkHot on a route that was never added via Add is a
// no-op. Meant for a server's one or two highest-traffic endpoints,
// decided by the caller rather than baked into the router.
func (r *FastRouter) MarkHot(method, path string) {
	hash := hashRoute(method, path)
	entry, ok := r.staticMap[hash]
	if !ok || entry.method != method || entry.path != path {
		return
	}
	r.hot[1] = r.hot[0]
	r.hot[0] = hotEntry{method: method, path: path, handler: entry.handler}
}

// Add adds a route with compile-time optimization hints
func (r *FastRouter) Add(method, path string, handler HandlerFunc) {
	// Static routes: pre-compute hash for O(1) lookup
	if !strings.Contains(path, ":") && !strings.Contains(path, "*") {
		hash := hashRoute(method, path)
		r.staticMap[hash] = staticEntry{method: method, path: path, handler: handler}
		return
	}

	// Parameterized routes: optimize for single parameter
	if strings.Count(path, ":") == 1 && !strings.Contains(path, "*") {
		idx := strings.Index(path, ":")
		slashIdx := strings.Index(path[idx:], "/")

		var prefix, suffix, paramName string
		prefix = path[:idx]

		if slashIdx == -1 {
			// Last segment is param: /api/users/:id
			paramName = path[idx+1:]
			suffix = ""
		} else {
			// Middle param: /api/users/:id/posts
			paramName = path[idx+1 : idx+slashIdx]
			suffix = path[idx+slashIdx:]
		}

		r.paramRoutes = append(r.paramRoutes, paramRoute{
			method:      method,
			prefix:      prefix,
			suffix:      suffix,
			paramName:   paramName,
			handler:     handler,
			prefixLen:   len(prefix),
			hasWildcard: false,
		})
		return
	}

	// Wildcard routes
	if strings.Contains(path, "*") {
		idx := strings.Index(path, "*")
		prefix := path[:idx]
		paramName := path[idx+1:]

		r.paramRoutes = append(r.paramRoutes, paramRoute{
			method:      method,
			prefix:      prefix,
			suffix:      "",
			paramName:   paramName,
			handler:     handler,
			prefixLen:   len(prefix),
			hasWildcard: true,
		})
		return
	}

	// Complex routes: fallback to radix tree
	r.radix.Add(method, path, handler)
}

// Find finds a handler, checking the hot-route slots first, then the
// static hash map, then param routes, then the radix tree.
func (r *FastRouter) Find(method, path string) (HandlerFunc, map[string]string) {
	for _, h := range r.hot {
		if h.handler != nil && h.method == method && h.path == path {
			return h.handler, nil
		}
	}

	hash := hashRoute(method, path)
	if entry, ok := r.staticMap[hash]; ok && entry.method == method && entry.path == path {
		return entry.handler, nil
	}

	if handler, params := r.findParamRouteFast(method, path); handler != nil {
		return handler, params
	}

	return r.radix.Find(method, path)
}

// findParamRouteFast uses a linear scan: faster than a map lookup for
// the small number of single-param routes a typical server registers.
func (r *FastRouter) findParamRouteFast(method, path string) (HandlerFunc, map[string]string) {
	pathLen := len(path)

	for i := range r.paramRoutes {
		route := &r.paramRoutes[i]

		if route.method != method {
			continue
		}
		if pathLen < route.prefixLen {
			continue
		}
		if !strings.HasPrefix(path, route.prefix) {
			continue
		}

		if route.hasWildcard {
			paramValue := path[route.prefixLen:]
			params := make(map[string]string, 1)
			params[route.paramName] = paramValue
			return route.handler, params
		}

		start := route.prefixLen
		end := pathLen

		if route.suffix != "" {
			rel := strings.Index(path[start:], route.suffix)
			if rel == -1 {
				continue
			}
			end = start + rel

			if !strings.HasSuffix(path, route.suffix) {
				continue
			}
		}

		paramValue := path[start:end]
		params := make(map[string]string, 1)
		params[route.paramName] = paramValue
		return route.handler, params
	}

	return nil, nil
}

// hashRoute computes an FNV-1a hash of method+path for the static
// route map. Collisions are possible and handled by Find verifying
// the stored method/path before returning a hit.
func hashRoute(method, path string) uint64 {
	const prime = 1099511628211
	hash := uint64(14695981039346656037)

	for i := 0; i < len(method); i++ {
		hash ^= uint64(method[i])
		hash *= prime
	}
	for i := 0; i < len(path); i++ {
		hash ^= uint64(path[i])
		hash *= prime
	}

	return hash
}
