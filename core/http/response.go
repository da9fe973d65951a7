package http

import (
	"strconv"
	"strings"
)

const serverHeaderValue = "octet/0.1"

// headerField is one entry of Response's insertion-ordered header list.
type headerField struct {
	name  string
	value string
}

// Response is an outgoing HTTP/1.1 response: a status, a header map that
// preserves the caller's casing and insertion order for deterministic
// serialization, and a body.
type Response struct {
	Status  Status
	fields  []headerField
	index   map[string]int // lowercased name -> index into fields
	Body    []byte
}

// NewResponse builds a Response with the default Server and
// Connection: close headers already set, matching the core's
// close-after-response policy: no keep-alive, one response per
// connection.
func NewResponse(status Status) *Response {
	r := &Response{Status: status, index: make(map[string]int)}
	r.SetHeader("Server", serverHeaderValue)
	r.SetHeader("Connection", "close")
	return r
}

// SetHeader sets a header, preserving the caller's casing. Setting an
// already-present header (case-insensitively) overwrites its value in
// place rather than appending a duplicate.
func (r *Response) SetHeader(name, value string) {
	key := strings.ToLower(name)
	if i, ok := r.index[key]; ok {
		r.fields[i] = headerField{name: name, value: value}
		return
	}
	r.index[key] = len(r.fields)
	r.fields = append(r.fields, headerField{name: name, value: value})
}

// Reset clears a Response back to its just-constructed state (default
// Server/Connection headers, no body) with the given status, so it can
// be recycled from an object pool instead of reallocated per request.
func (r *Response) Reset(status Status) {
	r.Status = status
	r.fields = r.fields[:0]
	for k := range r.index {
		delete(r.index, k)
	}
	r.Body = nil
	r.SetHeader("Server", serverHeaderValue)
	r.SetHeader("Connection", "close")
}

// Header looks up a header value, case-insensitively.
func (r *Response) Header(name string) (string, bool) {
	if i, ok := r.index[strings.ToLower(name)]; ok {
		return r.fields[i].value, true
	}
	return "", false
}

// SetBody sets the response body and updates Content-Length and
// Content-Type. Call SetHeader afterwards to override Content-Type for
// a non-text body.
func (r *Response) SetBody(body []byte) {
	r.Body = body
	r.SetHeader("Content-Length", strconv.Itoa(len(body)))
	r.SetHeader("Content-Type", "text/plain")
}

// Serialize appends the wire representation of the response to dst and
// returns the extended slice: status line, each header in insertion
// order, the blank line, then the body verbatim.
func (r *Response) Serialize(dst []byte) []byte {
	dst = append(dst, "HTTP/1.1 "...)
	dst = strconv.AppendInt(dst, int64(r.Status), 10)
	dst = append(dst, ' ')
	dst = append(dst, r.Status.Reason()...)
	dst = append(dst, "\r\n"...)

	for _, f := range r.fields {
		dst = append(dst, f.name...)
		dst = append(dst, ": "...)
		dst = append(dst, f.value...)
		dst = append(dst, "\r\n"...)
	}

	dst = append(dst, "\r\n"...)
	dst = append(dst, r.Body...)
	return dst
}
