package main

import (
	"fmt"
	"time"

	"github.com/kbukum/rxlab/catalog"
	"github.com/kbukum/rxlab/config"
	"github.com/kbukum/rxlab/observability"
	"github.com/kbukum/rxlab/sandbox"
	"github.com/kbukum/rxlab/server"
	"github.com/kbukum/rxlab/validation"
)

const (
	serviceName = "rxlab"
	envPrefix   = "RXLAB"
)

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled                    bool `yaml:"enabled" mapstructure:"enabled"`
	observability.TracerConfig `yaml:",inline" mapstructure:",squash"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled                   bool `yaml:"enabled" mapstructure:"enabled"`
	observability.MeterConfig `yaml:",inline" mapstructure:",squash"`
}

// APIConfig tunes the HTTP handlers.
type APIConfig struct {
	OperationTimeout time.Duration `yaml:"operation_timeout" mapstructure:"operation_timeout" validate:"gte=0"`
	StreamKeepAlive  time.Duration `yaml:"stream_keep_alive" mapstructure:"stream_keep_alive" validate:"gte=0"`
}

// AppConfig is the full rxlab configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server  server.Config  `yaml:"server" mapstructure:"server"`
	API     APIConfig      `yaml:"api" mapstructure:"api"`
	Sandbox sandbox.Config `yaml:"sandbox" mapstructure:"sandbox"`
	Tracing TracingConfig  `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig  `yaml:"metrics" mapstructure:"metrics"`
}

// newAppConfig returns a config whose catalog counts are preset, so a file
// that leaves them out keeps the standard demo instead of zero.
func newAppConfig() *AppConfig {
	return &AppConfig{Sandbox: sandbox.Config{Timing: catalog.DefaultTiming()}}
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Sandbox.ApplyDefaults()

	tracing := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = tracing.Endpoint
	}

	meter := observability.DefaultMeterConfig(c.Name)
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = c.Name
	}
	if c.Metrics.ServiceVersion == "" {
		c.Metrics.ServiceVersion = c.Version
	}
	if c.Metrics.Environment == "" {
		c.Metrics.Environment = c.Environment
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = meter.Endpoint
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = meter.Interval
	}
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Sandbox.Validate(); err != nil {
		return fmt.Errorf("config.sandbox: %w", err)
	}
	if err := validation.Validate(c.API); err != nil {
		return fmt.Errorf("config.api: %w", err)
	}
	if err := validation.Validate(c.Tracing); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	if err := validation.Validate(c.Metrics); err != nil {
		return fmt.Errorf("config.metrics: %w", err)
	}
	return nil
}

func loadConfig(configFile, envFile string) (*AppConfig, error) {
	cfg := newAppConfig()
	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
