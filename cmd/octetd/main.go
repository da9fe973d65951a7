// Command octetd runs the octet HTTP server core behind a small demo
// router: a health check, an echo handler, and Prometheus metrics on a
// side listener.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/octet-server/octet/app"
	"github.com/octet-server/octet/config"
	corehttp "github.com/octet-server/octet/core/http"
	"github.com/octet-server/octet/middleware"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "octetd",
		Short: "octetd runs the octet HTTP/1.1 server core",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, v)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a config file (yaml/json/toml)")
	config.BindFlags(v, cmd.Flags())

	return cmd
}

func run(configPath string, v *viper.Viper) error {
	config.Init(v, configPath)

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	config.WatchAndReload(v, func(updated *config.Config) {
		log.Printf("octetd: config file changed, rate-limit and log-level will apply on next restart")
		cfg.RateLimit = updated.RateLimit
		cfg.LogLevel = updated.LogLevel
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	metrics := middleware.NewMetrics(registry)

	application := app.New(cfg)
	application.Use(metrics.Middleware())
	if cfg.RateLimit > 0 {
		application.Use(middleware.RateLimiter(cfg.RateLimit))
	}
	application.Use(middleware.CORS())
	application.Use(middleware.Logger(nil))

	registerRoutes(application)

	go serveMetrics(cfg.MetricsAddr, registry)

	return application.Run()
}

func registerRoutes(a *app.App) {
	a.Router().Get("/health", func(req *corehttp.Request) (*corehttp.Response, error) {
		resp := corehttp.NewResponse(corehttp.StatusOK)
		resp.SetBody([]byte("ok\n"))
		return resp, nil
	})

	a.Router().Get("/echo/:word", func(req *corehttp.Request) (*corehttp.Response, error) {
		word, _ := req.Param("word")
		resp := corehttp.NewResponse(corehttp.StatusOK)
		resp.SetBody([]byte(word + "\n"))
		return resp, nil
	})
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	log.Printf("octetd: metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("octetd: metrics server stopped: %v", err)
	}
}
