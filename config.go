package procsim

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/procsim/internal/logging"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the simulator configuration.
// It can be populated from YAML or JSON; LoadConfig decodes on top of
// DefaultConfig so omitted fields keep their defaults.
type Config struct {
	Memory    allocator.Config `json:"memory" yaml:"memory"`
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Events    EventsConfig     `json:"events" yaml:"events"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Log       logging.Config   `json:"log" yaml:"log"`
}

// EventsConfig controls the lifecycle event stream
type EventsConfig struct {
	Enabled       bool `json:"enabled" yaml:"enabled"`
	memory.Config `yaml:",inline"`
}

// TracingConfig controls OpenTelemetry span export
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// OutputFile receives the spans; stdout when empty
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Memory:    allocator.DefaultConfig(),
		Scheduler: scheduler.DefaultConfig(),
		Events:    EventsConfig{Config: memory.DefaultConfig()},
		Tracing: TracingConfig{
			ServiceName:    "procsim",
			ServiceVersion: "0.1.0",
		},
		Log: logging.DefaultConfig(),
	}
}

// Validate returns an error describing the first invalid setting or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Memory.Capacity <= 0 {
		return fmt.Errorf("memory.capacity must be > 0, got %d", c.Memory.Capacity)
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.buffer must be >= 0, got %d", c.Events.QueueBuffer)
	}
	if c.Events.MaxRetries < 0 {
		return fmt.Errorf("events.maxRetries must be >= 0, got %d", c.Events.MaxRetries)
	}
	return c.Log.Validate()
}

// LoadConfig downloads a YAML (or JSON) document from any afs supported URL,
// expands ${env.NAME} expressions and decodes it on top of DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	return DecodeConfig(data)
}

// DecodeConfig decodes a YAML (or JSON) document on top of DefaultConfig
func DecodeConfig(data []byte) (*Config, error) {
	ret := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), ret); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
