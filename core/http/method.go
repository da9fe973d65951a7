// Package http implements the HTTP/1.1 parser and the Request/Response
// data model the core's event loop drives. It deliberately mirrors the
// naming of Go's standard net/http for familiarity, but shares none of
// its implementation.
package http

import "github.com/octet-server/octet/core/errs"

// Method is one of the nine HTTP/1.1 methods the parser accepts.
type Method uint8

const (
	GET Method = iota
	HEAD
	POST
	PUT
	DELETE
	OPTIONS
	TRACE
	CONNECT
	PATCH
)

var methodNames = [...]string{
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	OPTIONS: "OPTIONS",
	TRACE:   "TRACE",
	CONNECT: "CONNECT",
	PATCH:   "PATCH",
}

// String returns the wire-form name of the method.
func (m Method) String() string {
	if int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "UNKNOWN"
}

// ParseMethod maps a request-line method token to its enum value.
// Unknown tokens are an HttpParse error.
func ParseMethod(s string) (Method, error) {
	for i, name := range methodNames {
		if name == s {
			return Method(i), nil
		}
	}
	return 0, errs.New(errs.HttpParse, "invalid method: %s", s)
}
