package procsim

import (
	"errors"
	"log/slog"
	"os"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/logging"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/event"
	"github.com/viant/procsim/service/messaging"
	mmemory "github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
	"github.com/viant/procsim/tracing"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Service wires the simulator components and exposes the Runtime
type Service struct {
	config              *Config
	logger              *slog.Logger
	newTicker           clock.NewTickerFunc
	eventHandlers       []func(*event.Event[event.Transition])
	transitionListeners []scheduler.TransitionListener
	statsListener       func(progress.Counters)
	exporter            sdktrace.SpanExporter
	runtime             *Runtime
}

// New creates a simulator service
func New(options ...Option) (*Service, error) {
	ret := &Service{config: DefaultConfig()}
	if err := ret.init(options); err != nil {
		return nil, err
	}
	return ret, nil
}

// Runtime returns the command API
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Config returns the effective configuration
func (s *Service) Config() *Config {
	return s.config
}

func (s *Service) init(options []Option) error {
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if s.logger == nil {
		s.logger = logging.New(s.config.Log, os.Stderr)
	}
	if err := s.initTracing(); err != nil {
		return err
	}

	memory, err := allocator.New(s.config.Memory)
	if err != nil {
		return err
	}
	s.runtime = &Runtime{logger: s.logger}
	listeners := append([]scheduler.TransitionListener{}, s.transitionListeners...)
	if s.config.Events.Enabled {
		s.runtime.queue = mmemory.NewQueue[event.Event[event.Transition]](s.config.Events.Config)
		s.runtime.publisher = event.NewPublisher[event.Transition](s.runtime.queue)
		listeners = append(listeners, s.runtime.publishTransition)
		if len(s.eventHandlers) > 0 {
			s.runtime.listener = event.NewListener[event.Transition](s.runtime.publisher, s.dispatch, s.logger)
		}
	}

	schedulerOptions := []scheduler.Option{
		scheduler.WithConfig(s.config.Scheduler),
		scheduler.WithAllocator(memory),
		scheduler.WithProgress(progress.New(s.statsListener)),
		scheduler.WithLogger(s.logger),
		scheduler.WithTransitionListeners(listeners...),
	}
	if s.newTicker != nil {
		schedulerOptions = append(schedulerOptions, scheduler.WithTicker(s.newTicker))
	}
	s.runtime.scheduler, err = scheduler.New(schedulerOptions...)
	return err
}

func (s *Service) initTracing() error {
	tracingConfig := s.config.Tracing
	if s.exporter != nil {
		return tracing.InitWithExporter(tracingConfig.ServiceName, tracingConfig.ServiceVersion, s.exporter)
	}
	if !tracingConfig.Enabled {
		return nil
	}
	return tracing.Init(tracingConfig.ServiceName, tracingConfig.ServiceVersion, tracingConfig.OutputFile)
}

func (s *Service) dispatch(anEvent *event.Event[event.Transition]) {
	for _, handler := range s.eventHandlers {
		handler(anEvent)
	}
}

// publishTransition forwards a transition to the event stream. It runs inside
// scheduler operations, so it never waits for a consumer: a full queue drops
// the event whatever DropWhenFull says.
func (r *Runtime) publishTransition(transition event.Transition) {
	err := event.TryPublishTransition(r.publisher, transition)
	if err == nil {
		return
	}
	if errors.Is(err, messaging.ErrQueueFull) {
		r.logger.Debug("transition event dropped", slog.Int("pid", transition.PID), slog.String("kind", string(transition.Kind)))
		return
	}
	r.logger.Warn("failed to publish transition", slog.Int("pid", transition.PID), logging.ErrAttr(err))
}
