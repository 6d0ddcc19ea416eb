package scheduler

import (
	"fmt"
	"time"
)

// Config represents scheduler configuration
type Config struct {
	// Interval is the wall time between two ticks
	Interval time.Duration `json:"interval" yaml:"interval"`
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval: 100 * time.Millisecond,
	}
}

// Validate returns an error describing invalid settings or nil.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be > 0, got %v", c.Interval)
	}
	return nil
}
