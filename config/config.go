// Package config loads octetd's configuration from flags, environment
// variables, and an optional config file via viper, and can hot-reload
// the file via fsnotify while the server runs.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds octetd's runtime configuration.
type Config struct {
	Addr        string        `mapstructure:"addr"`
	Workers     int           `mapstructure:"workers"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
	LogLevel    string        `mapstructure:"log_level"`
	RateLimit   int           `mapstructure:"rate_limit"`
	// Router selects the route-matching strategy: "fast" (default,
	// FastRouter's heuristics) or "compiled" (CompiledRouter, for a
	// route table that's fixed before the server starts).
	Router string `mapstructure:"router"`
}

// BindFlags registers octetd's flags on fs and binds each to v, so
// flag > env > config-file > default precedence falls out of viper for
// free.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String("addr", ":8080", "address to listen on")
	fs.Int("workers", 0, "number of event-loop workers (0 = runtime.NumCPU())")
	fs.Duration("idle-timeout", 30*time.Second, "idle connection timeout")
	fs.String("metrics-addr", ":9090", "address for the Prometheus /metrics endpoint")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Int("rate-limit", 0, "requests per second per process (0 = disabled)")
	fs.String("router", "fast", "route-matching strategy: fast or compiled")

	v.BindPFlag("addr", fs.Lookup("addr"))
	v.BindPFlag("workers", fs.Lookup("workers"))
	v.BindPFlag("idle_timeout", fs.Lookup("idle-timeout"))
	v.BindPFlag("metrics_addr", fs.Lookup("metrics-addr"))
	v.BindPFlag("log_level", fs.Lookup("log-level"))
	v.BindPFlag("rate_limit", fs.Lookup("rate-limit"))
	v.BindPFlag("router", fs.Lookup("router"))
}

// Init configures v with an OCTET_ prefixed environment override for
// every key, and an optional config file at configPath (any format
// viper supports: yaml, json, toml...). Flags should already be bound
// via BindFlags before calling Init, so flag > env > file > default
// precedence holds.
func Init(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("octet")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	}
}

// New builds a fresh viper instance pre-configured for octetd, for
// callers that don't need cobra/pflag flag binding.
func New(configPath string) *viper.Viper {
	v := viper.New()
	Init(v, configPath)
	return v
}

// Load reads configPath (if it exists) and unmarshals the merged
// flag/env/file/default values into a Config.
func Load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// WatchAndReload installs an fsnotify-backed watch on v's config file
// (a no-op if none was set) and calls onChange with the freshly
// unmarshaled Config every time the file is written.
func WatchAndReload(v *viper.Viper, onChange func(*Config)) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := Load(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
