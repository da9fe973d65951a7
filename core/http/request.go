package http

import "strings"

// Request is an immutable snapshot derived from a completed Parser: the
// method, URI, a lowercased header map, the body bytes, and query
// parameters parsed out of the URI.
type Request struct {
	Method  Method
	URI     string
	Headers map[string]string
	Body    []byte
	Query   map[string]string

	// Params holds named path segments matched by a router (e.g. "id"
	// from "/users/:id"). Left nil for requests that never reach a
	// router, or that match no parameterized route.
	Params map[string]string
}

// Header looks up a header by name, case-insensitively (the map itself
// is already keyed by lowercased name).
func (r *Request) Header(name string) (string, bool) {
	v, ok := r.Headers[strings.ToLower(name)]
	return v, ok
}

// Param looks up a named path parameter set by a router.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.Params[name]
	return v, ok
}

// parseQuery splits the substring after the first '?' in uri into
// name=value pairs on '&', each pair split on the first '='. A pair
// without '=' is a flag-style key with an empty value. The URI itself is
// kept whole (query string included) — only the derived map is split out,
// matching the parser's source behaviour.
func parseQuery(uri string) map[string]string {
	idx := strings.IndexByte(uri, '?')
	if idx == -1 {
		return nil
	}

	query := make(map[string]string)
	for _, pair := range strings.Split(uri[idx+1:], "&") {
		if pair == "" {
			continue
		}
		if eq := strings.IndexByte(pair, '='); eq != -1 {
			query[pair[:eq]] = pair[eq+1:]
		} else {
			query[pair] = ""
		}
	}

	return query
}
