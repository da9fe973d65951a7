// Package middleware implements a decorator-style request pipeline
// layered on top of core's handler contract. It is an external
// collaborator: core never imports it, it imports core, the same way
// the engine's router is kept outside the hot-path package.
package middleware

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/octet-server/octet/core"
	"github.com/octet-server/octet/core/http"
	"github.com/octet-server/octet/core/pools"
)

// Middleware wraps a core.HandlerFunc, typically running work before
// and/or after calling next.
type Middleware func(next core.HandlerFunc) core.HandlerFunc

// Pipeline composes a chain of Middleware around a final handler.
type Pipeline struct {
	chain []Middleware
}

// NewPipeline creates an empty pipeline, pre-sized for 16 middlewares.
func NewPipeline() *Pipeline {
	return &Pipeline{chain: make([]Middleware, 0, 16)}
}

// Use appends a middleware to the chain. Middlewares run in the order
// they were added, outermost first, each free to short-circuit by not
// calling next.
func (p *Pipeline) Use(m Middleware) *Pipeline {
	p.chain = append(p.chain, m)
	return p
}

// Build wraps final with every middleware in the chain, outermost
// first, and returns the composed handler ready to hand to
// core.NewEngine.
func (p *Pipeline) Build(final core.HandlerFunc) core.HandlerFunc {
	h := final
	for i := len(p.chain) - 1; i >= 0; i-- {
		h = p.chain[i](h)
	}
	return h
}

// Recovery converts a panic in a downstream handler into a 500
// response instead of crashing the worker goroutine that owns the
// connection.
func Recovery() Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (resp *http.Response, err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("panic handling %s %s: %v", req.Method, req.URI, r)
					resp = http.NewResponse(http.StatusInternalServerError)
					resp.SetBody([]byte("Internal Server Error\n"))
					err = nil
				}
			}()
			return next(req)
		}
	}
}

// Logger logs method, URI, status, and latency for every request. With
// a non-nil offload pool the log write runs there, off the hot path;
// with nil it runs inline on the calling goroutine.
func Logger(offload *pools.TaskPool) Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			method, uri := req.Method, req.URI
			status := 0
			if resp != nil {
				status = int(resp.Status)
			}
			elapsed := time.Since(start)

			logLine := func() {
				log.Printf("%s %s -> %d (%s)", method, uri, status, elapsed)
			}
			if offload != nil {
				offload.Submit(logLine)
			} else {
				logLine()
			}

			return resp, err
		}
	}
}

// CORS adds permissive CORS headers and answers preflight OPTIONS
// requests directly without reaching the downstream handler.
func CORS() Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			if req.Method == http.OPTIONS {
				resp := http.NewResponse(http.StatusNoContent)
				applyCORSHeaders(resp)
				return resp, nil
			}

			resp, err := next(req)
			if resp != nil {
				applyCORSHeaders(resp)
			}
			return resp, err
		}
	}
}

func applyCORSHeaders(resp *http.Response) {
	resp.SetHeader("Access-Control-Allow-Origin", "*")
	resp.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	resp.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

// RateLimiter rejects requests past a fixed per-second token budget
// with a 429. Tokens refill once per second; this is a simple fixed
// window, not a sliding one.
func RateLimiter(requestsPerSecond int) Middleware {
	var (
		mu         sync.Mutex
		tokens     = requestsPerSecond
		lastRefill = time.Now()
	)

	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			mu.Lock()
			now := time.Now()
			if now.Sub(lastRefill) > time.Second {
				tokens = requestsPerSecond
				lastRefill = now
			}

			if tokens <= 0 {
				mu.Unlock()
				resp := http.NewResponse(http.StatusTooManyRequests)
				resp.SetBody([]byte("Too Many Requests\n"))
				return resp, nil
			}
			tokens--
			mu.Unlock()

			return next(req)
		}
	}
}

// RequestID stamps every response with a monotonically increasing
// X-Request-Id header, useful for correlating a response with its
// access log line.
func RequestID() Middleware {
	var counter uint64

	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			id := atomic.AddUint64(&counter, 1)
			resp, err := next(req)
			if resp != nil {
				resp.SetHeader("X-Request-Id", fmt.Sprintf("%d", id))
			}
			return resp, err
		}
	}
}

// Metrics records request counts and latency histograms per method
// and status code via prometheus/client_golang.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the request counter and latency
// histogram with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "octet_requests_total",
			Help: "Total requests processed, labelled by method and status.",
		}, []string{"method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "octet_request_duration_seconds",
			Help:    "Request handling latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(m.requests, m.latency)
	return m
}

// Middleware returns the Middleware that records this Metrics
// collector's counters for every request.
func (m *Metrics) Middleware() Middleware {
	return func(next core.HandlerFunc) core.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			status := "error"
			if resp != nil {
				status = fmt.Sprintf("%d", resp.Status)
			}
			m.requests.WithLabelValues(req.Method.String(), status).Inc()
			m.latency.WithLabelValues(req.Method.String()).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
