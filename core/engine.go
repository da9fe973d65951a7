// Package core implements the readiness-driven HTTP/1.1 server: one
// worker goroutine per CPU core, each with its own SO_REUSEPORT
// acceptor, poller, and connection table, so an accepted connection is
// serviced by exactly the worker that accepted it for its entire
// lifetime.
package core

import (
	"context"
	"log"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/octet-server/octet/core/pools"
)

// Engine supervises the fixed pool of workers bound to one listening
// address.
type Engine struct {
	addr        string
	handler     HandlerFunc
	numWorkers  int
	idleTimeout time.Duration
	gcConfig    *pools.GCConfig
	offload     *pools.TaskPool
	workers     []*worker
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithWorkers overrides the worker count (default: runtime.NumCPU()).
func WithWorkers(n int) Option {
	return func(e *Engine) { e.numWorkers = n }
}

// WithIdleTimeout overrides the default 30s idle connection timeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(e *Engine) { e.idleTimeout = d }
}

// WithGCProfile overrides the worker-count-scaled GC tuning NewEngine
// applies by default. Pass pools.DefaultGCConfig() to opt back into the
// runtime's untouched GOGC=100.
func WithGCProfile(cfg pools.GCConfig) Option {
	return func(e *Engine) { e.gcConfig = &cfg }
}

// NewEngine builds an Engine bound to addr that dispatches completed
// requests to handler. No worker is started until Run is called.
func NewEngine(addr string, handler HandlerFunc, opts ...Option) *Engine {
	e := &Engine{
		addr:        addr,
		handler:     handler,
		numWorkers:  runtime.NumCPU(),
		idleTimeout: defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.gcConfig != nil {
		pools.ApplyGCConfig(*e.gcConfig)
	} else {
		pools.ApplyGCConfig(pools.ForWorkerCount(e.numWorkers))
	}
	e.offload = pools.NewTaskPool(e.numWorkers)

	return e
}

// Offload submits fn to the opt-in background worker pool instead of
// running it on the event loop goroutine. Use this only for handlers
// that block or do real CPU work; the default hot path never offloads.
func (e *Engine) Offload(fn func()) {
	e.offload.Submit(fn)
}

// Run starts numWorkers workers, each bound to addr via SO_REUSEPORT,
// and blocks until ctx is cancelled or a worker returns a fatal error.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	log.Printf("octet: starting %d workers on %s", e.numWorkers, e.addr)

	e.workers = make([]*worker, 0, e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		id := i
		w, err := newWorker(id, e.addr, e.handler, e.idleTimeout)
		if err != nil {
			cancel()
			g.Wait()
			return err
		}
		e.workers = append(e.workers, w)

		g.Go(func() error {
			log.Printf("octet: worker %d listening", id)
			return w.run(ctx)
		})
	}

	return g.Wait()
}
