// Package config handles loading and validating httpresource's runtime
// configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level configuration for the httpresource server.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	WorkerPool WorkerPoolConfig `koanf:"worker_pool"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Tracing    TracingConfig    `koanf:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// WorkerPoolConfig sizes the pool that runs the decision flow off the
// HTTP accept loop.
type WorkerPoolConfig struct {
	Size       int `koanf:"size"`
	QueueDepth int `koanf:"queue_depth"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level    string `koanf:"level"`
	Encoding string `koanf:"encoding"`
}

// MetricsConfig configures Prometheus exposition.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// TracingConfig configures OpenTelemetry span emission.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// Default returns the configuration used when no file is supplied:
// sane defaults for every section so the server runs out of the box.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		WorkerPool: WorkerPoolConfig{
			Size:       16,
			QueueDepth: 256,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "console",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "httpresource",
		},
	}
}

// Load reads configuration from a YAML file, layers environment
// variable overrides on top, and returns a fully populated Config. A
// missing file is not an error: defaults plus env overrides still
// produce a usable Config.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config file %q: %w", path, err)
			}
		}
	}

	// Layer environment variables on top. Any env var starting with
	// "HTTPRESOURCE_" can override a config value, e.g.
	// HTTPRESOURCE_SERVER_PORT -> server.port.
	if err := k.Load(env.Provider("HTTPRESOURCE_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "HTTPRESOURCE_")),
			"_", ".",
		)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	out := Default()
	if err := k.Unmarshal("", &out); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &out, nil
}
