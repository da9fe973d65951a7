// Package app wires config, router, middleware, and the core engine
// into a runnable server, the way octetd's cmd/octetd/main.go would be
// tested or embedded without its own CLI.
package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/octet-server/octet/config"
	"github.com/octet-server/octet/core"
	"github.com/octet-server/octet/middleware"
	"github.com/octet-server/octet/router"
)

// App binds one Router and one Pipeline to a config; the core.Engine
// itself isn't built until Run, so every route can be registered on
// Router() first.
type App struct {
	cfg      *config.Config
	router   *router.Router
	pipeline *middleware.Pipeline
}

// New creates an application instance with an empty router and a
// pipeline pre-loaded with Recovery and RequestID, the same baseline
// middleware every handler gets regardless of what the caller adds.
func New(cfg *config.Config) *App {
	return &App{
		cfg:      cfg,
		router:   newRouter(cfg.Router),
		pipeline: middleware.NewPipeline().Use(middleware.Recovery()).Use(middleware.RequestID()),
	}
}

// newRouter picks the route-matching strategy named by cfg.Router,
// falling back to the FastRouter default for an empty or unrecognized
// value rather than rejecting the config outright.
func newRouter(strategy string) *router.Router {
	switch strategy {
	case "compiled":
		return router.NewCompiled()
	default:
		return router.New()
	}
}

// Router returns the app's router for route registration.
func (a *App) Router() *router.Router {
	return a.router
}

// Use appends middleware to the app's pipeline, outermost call wins.
func (a *App) Use(m middleware.Middleware) *App {
	a.pipeline.Use(m)
	return a
}

// Run builds the engine from the registered routes and middleware and
// blocks until a SIGINT/SIGTERM triggers graceful shutdown.
func (a *App) Run() error {
	a.router.Finalize()
	handler := a.pipeline.Build(a.router.Handler())

	opts := []core.Option{core.WithIdleTimeout(a.cfg.IdleTimeout)}
	if a.cfg.Workers > 0 {
		opts = append(opts, core.WithWorkers(a.cfg.Workers))
	}
	engine := core.NewEngine(a.cfg.Addr, handler, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go awaitSignal(cancel)

	log.Printf("octetd: listening on %s", a.cfg.Addr)
	return engine.Run(ctx)
}

func awaitSignal(cancel context.CancelFunc) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Printf("octetd: received %v, shutting down", sig)
	cancel()
}
