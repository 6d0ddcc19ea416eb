package scheduler

import (
	"log/slog"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
)

type Option func(*Service)

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithProcessTable sets the process table implementation
func WithProcessTable(table dao.Service[int, process.Process]) Option {
	return func(s *Service) {
		s.table = table
	}
}

// WithAllocator sets the memory allocator
func WithAllocator(memory *allocator.Service) Option {
	return func(s *Service) {
		s.allocator = memory
	}
}

// WithProgress sets the counters tracker
func WithProgress(tracker *progress.Progress) Option {
	return func(s *Service) {
		s.progress = tracker
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTicker sets the ticker factory used by Start
func WithTicker(newTicker clock.NewTickerFunc) Option {
	return func(s *Service) {
		s.newTicker = newTicker
	}
}

// WithTransitionListeners registers callbacks invoked after every operation
// with the transitions it produced, outside the scheduler lock.
func WithTransitionListeners(fns ...TransitionListener) Option {
	return func(s *Service) {
		if len(fns) == 0 {
			return
		}
		s.listeners = append(s.listeners, fns...)
	}
}
