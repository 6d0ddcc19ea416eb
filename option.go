package procsim

import (
	"log/slog"
	"time"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/scheduler"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option configures the Service; options are applied in order
type Option func(s *Service)

// WithConfig replaces the whole configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		if config != nil {
			clone := *config
			s.config = &clone
		}
	}
}

// WithMemoryCapacity sets the allocator capacity in bytes
func WithMemoryCapacity(capacity int) Option {
	return func(s *Service) {
		s.config.Memory.Capacity = capacity
	}
}

// WithInterval sets the wall time between ticks
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		s.config.Scheduler.Interval = interval
	}
}

// WithLogger sets the logger; by default one is built from the log config
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTicker overrides the ticker factory driving the scheduler loop
func WithTicker(newTicker clock.NewTickerFunc) Option {
	return func(s *Service) {
		s.newTicker = newTicker
	}
}

// WithEventListener enables the lifecycle event stream and registers a handler
// called for every published transition
func WithEventListener(handler func(*event.Event[event.Transition])) Option {
	return func(s *Service) {
		s.config.Events.Enabled = true
		s.eventHandlers = append(s.eventHandlers, handler)
	}
}

// WithTransitionListeners registers synchronous transition listeners; they
// run on the caller goroutine right after each operation, in operation order.
// A listener must not call back into the Runtime.
func WithTransitionListeners(listeners ...scheduler.TransitionListener) Option {
	return func(s *Service) {
		s.transitionListeners = append(s.transitionListeners, listeners...)
	}
}

// WithStatsListener registers a callback receiving the counters after every change
func WithStatsListener(listener func(progress.Counters)) Option {
	return func(s *Service) {
		s.statsListener = listener
	}
}

// WithTracing enables the stdout span exporter. If outputFile is empty spans
// are written to stdout. The first successful tracing initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		s.config.Tracing = TracingConfig{
			Enabled:        true,
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
			OutputFile:     outputFile,
		}
	}
}

// WithTracingExporter configures tracing with a custom SpanExporter, for
// example OTLP or an in-memory exporter in tests.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		s.config.Tracing.ServiceName = serviceName
		s.config.Tracing.ServiceVersion = serviceVersion
		s.exporter = exporter
	}
}
