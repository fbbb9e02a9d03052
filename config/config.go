// Package config provides unified configuration loading for the pipeline:
// defaults, then a YAML file, then environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "A2APIPE"

// Config is the complete configuration for clients, hosts, and the pipeline.
type Config struct {
	// Research configures the research agent host.
	Research HostConfig `yaml:"research"`
	// Blog configures the blogpost agent host.
	Blog HostConfig `yaml:"blog"`
	// Client configures outbound relay clients.
	Client ClientConfig `yaml:"client"`
	// Log configures logging.
	Log LogConfig `yaml:"log"`
	// Metrics configures the metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// HostConfig configures one agent host.
type HostConfig struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`
	// BaseURL is the externally reachable base URL; it is both advertised on
	// the agent card and used by pipeline clients.
	BaseURL string `yaml:"base_url"`
	// OutputDir is where the agent saves generated artifacts, if it does.
	OutputDir string `yaml:"output_dir"`
}

// ClientConfig configures outbound relay clients.
type ClientConfig struct {
	// Timeout bounds one whole streamed invocation.
	Timeout time.Duration `yaml:"timeout"`
	// DiscoverRetries is the retry count for agent card discovery.
	DiscoverRetries int `yaml:"discover_retries"`
	// DiscoverRetryDelay is the delay between discovery retries.
	DiscoverRetryDelay time.Duration `yaml:"discover_retry_delay"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Development switches to the human-readable console encoder.
	Development bool `yaml:"development"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	Enabled bool `yaml:"enabled"`
	// Addr is the metrics listen address.
	Addr string `yaml:"addr"`
	// Namespace prefixes all metric names.
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used when no file or environment
// overrides are present. Ports match the historical deployment: research on
// 8003, blog on 8004.
func Default() *Config {
	return &Config{
		Research: HostConfig{
			Addr:    ":8003",
			BaseURL: "http://localhost:8003",
		},
		Blog: HostConfig{
			Addr:      ":8004",
			BaseURL:   "http://localhost:8004",
			OutputDir: ".",
		},
		Client: ClientConfig{
			Timeout:            5 * time.Minute,
			DiscoverRetries:    2,
			DiscoverRetryDelay: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:   false,
			Addr:      ":9090",
			Namespace: "a2apipe",
		},
	}
}

// Load builds the configuration: defaults, overlaid with the YAML file at
// path when non-empty, overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv applies A2APIPE_* environment overrides for the knobs that vary
// between deployments.
func applyEnv(cfg *Config) {
	envString(&cfg.Research.Addr, "RESEARCH_ADDR")
	envString(&cfg.Research.BaseURL, "RESEARCH_URL")
	envString(&cfg.Blog.Addr, "BLOG_ADDR")
	envString(&cfg.Blog.BaseURL, "BLOG_URL")
	envString(&cfg.Blog.OutputDir, "BLOG_OUTPUT_DIR")
	envDuration(&cfg.Client.Timeout, "CLIENT_TIMEOUT")
	envString(&cfg.Log.Level, "LOG_LEVEL")
	envBool(&cfg.Metrics.Enabled, "METRICS_ENABLED")
	envString(&cfg.Metrics.Addr, "METRICS_ADDR")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(EnvPrefix + "_" + key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
