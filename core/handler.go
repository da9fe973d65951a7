package core

import "github.com/octet-server/octet/core/http"

// HandlerFunc produces a response for a parsed request. It runs
// synchronously on the worker that owns the connection; there is no
// default offload to a separate goroutine pool (see Engine.Offload for
// the opt-in escape hatch).
type HandlerFunc func(*http.Request) (*http.Response, error)

func notFoundHandler(*http.Request) (*http.Response, error) {
	r := http.NewResponse(http.StatusNotFound)
	r.SetBody([]byte("404 not found\n"))
	return r, nil
}
