/*
Package octet is the root of an HTTP/1.1 server core built around a
readiness-based event loop: one worker goroutine per CPU core, each
owning its own SO_REUSEPORT acceptor, its own epoll/kqueue poller, and
its own connection table, with no cross-worker connection migration.

Handlers are plain functions, func(*http.Request) (*http.Response,
error), run synchronously on the worker that read the request. Slow
work is opted into a background pool via Engine.Offload rather than
assumed by default.

Quick start

	package main

	import (
	    "github.com/octet-server/octet/app"
	    "github.com/octet-server/octet/config"
	    "github.com/octet-server/octet/core/http"
	)

	func main() {
	    cfg := &config.Config{Addr: ":8080"}
	    application := app.New(cfg)

	    application.Router().Get("/hello", func(req *http.Request) (*http.Response, error) {
	        resp := http.NewResponse(http.StatusOK)
	        resp.SetBody([]byte("Hello, World!"))
	        return resp, nil
	    })

	    application.Run()
	}

Packages

  - app: wires config, router, middleware, and the engine into a
    runnable server
  - config: flag/env/file configuration via viper, with config-file
    hot-reload via fsnotify
  - core: the event loop, connection state machine, and engine
  - core/http: request/response types and the incremental HTTP/1.1
    parser
  - buffer: growable ring buffer used for per-connection I/O
  - memory: sized-class slab allocator
  - core/poller: platform readiness multiplexing (epoll, kqueue)
  - core/pools: connection, response, and task object pools
  - router: radix-tree, compiled, and hashed route lookup behind one
    facade
  - middleware: a decorator-style pipeline (recovery, logging, CORS,
    rate limiting, request IDs, Prometheus metrics)
  - cmd/octetd: the CLI entrypoint

Every accepted connection closes after its one response; there is no
keep-alive and no connection reuse across requests.
*/
package octet
