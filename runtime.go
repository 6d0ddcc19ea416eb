package procsim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/procsim/internal/logging"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
	"github.com/viant/procsim/service/event"
	mmemory "github.com/viant/procsim/service/messaging/memory"
	"github.com/viant/procsim/service/scheduler"
	"github.com/viant/procsim/tracing"
)

var (
	// ErrOutOfMemory is returned when a process does not fit the free capacity
	ErrOutOfMemory = allocator.ErrOutOfMemory
	// ErrNotFound is returned for an unknown process id
	ErrNotFound = dao.ErrNotFound
	// ErrInvalidArgument is returned for a process spec that cannot run
	ErrInvalidArgument = process.ErrInvalidArgument
)

// Runtime represents the simulator command API
type Runtime struct {
	scheduler *scheduler.Service
	logger    *slog.Logger
	queue     *mmemory.Queue[event.Event[event.Transition]]
	publisher *event.Publisher[event.Transition]
	listener  *event.Listener[event.Transition]

	mux  sync.Mutex
	done chan struct{}
}

// CreateProcess validates spec and admits a new process, returning its id
func (r *Runtime) CreateProcess(ctx context.Context, spec process.Spec) (pid int, err error) {
	ctx, span := tracing.StartSpan(ctx, "procsim.CreateProcess", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithInt("burst", spec.BurstTime).WithInt("memory", spec.MemorySize)
	if spec.HasIO() {
		span.WithInt("ioStart", spec.IOStartTime).WithInt("ioEnd", spec.IOEndTime)
	}

	if err = spec.Validate(); err != nil {
		r.logger.Warn("rejected process spec", logging.ErrAttr(err))
		return 0, err
	}
	created, err := r.scheduler.Create(ctx, spec)
	if err != nil {
		if errors.Is(err, ErrOutOfMemory) {
			status := r.scheduler.MemoryStatus()
			r.logger.Warn("not enough memory to create process",
				slog.Int("memory", spec.MemorySize),
				slog.Int("free", status.Free()))
		}
		return 0, err
	}
	span.WithInt("pid", created.ID)
	r.logger.Info("process created",
		slog.Int("pid", created.ID),
		slog.Int("memory", created.MemorySize),
		slog.Int("address", created.MemoryAddress))
	return created.ID, nil
}

// KillProcess terminates a live process and releases its memory
func (r *Runtime) KillProcess(ctx context.Context, pid int) (err error) {
	ctx, span := tracing.StartSpan(ctx, "procsim.KillProcess", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()
	span.WithInt("pid", pid)

	if err = r.scheduler.Kill(ctx, pid); err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Warn("no process found", slog.Int("pid", pid))
		}
		return err
	}
	r.logger.Info("process killed", slog.Int("pid", pid))
	return nil
}

// ListProcesses returns summaries of live processes ordered by id, optionally
// restricted to the given states
func (r *Runtime) ListProcesses(ctx context.Context, states ...process.State) (summaries []process.Summary, err error) {
	ctx, span := tracing.StartSpan(ctx, "procsim.ListProcesses", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	for _, state := range states {
		if !state.IsValid() {
			return nil, fmt.Errorf("%w: unknown state %v", ErrInvalidArgument, state)
		}
	}
	summaries, err = r.scheduler.List(ctx, states...)
	span.WithInt("count", len(summaries))
	return summaries, err
}

// MemoryStatus returns used and total memory capacity
func (r *Runtime) MemoryStatus(ctx context.Context) allocator.Status {
	_, span := tracing.StartSpan(ctx, "procsim.MemoryStatus", "INTERNAL")
	status := r.scheduler.MemoryStatus()
	span.WithInt("used", status.Used).WithInt("total", status.Total)
	tracing.EndSpan(span, nil)
	return status
}

// Stats returns scheduling counters, including transition events dropped on a
// full event queue
func (r *Runtime) Stats() progress.Counters {
	counters := r.scheduler.Stats()
	if r.queue != nil {
		counters.EventsDropped = r.queue.Dropped()
	}
	return counters
}

// Tick advances the simulation by one quantum outside the loop
func (r *Runtime) Tick(ctx context.Context) {
	r.scheduler.Tick(ctx)
}

// Events returns the lifecycle event publisher, nil when events are disabled
func (r *Runtime) Events() *event.Publisher[event.Transition] {
	return r.publisher
}

// Start launches the event listener and the scheduler loop in the background
func (r *Runtime) Start(ctx context.Context) error {
	r.mux.Lock()
	defer r.mux.Unlock()
	if r.done != nil {
		return fmt.Errorf("runtime already started")
	}
	if r.listener != nil {
		r.listener.Start(ctx)
	}
	r.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		if err := r.scheduler.Start(ctx); err != nil {
			r.logger.Warn("scheduler loop stopped", logging.ErrAttr(err))
		}
	}(r.done)
	r.logger.Info("scheduler started")
	return nil
}

// Shutdown stops the scheduler loop and the event listener, waiting for the
// loop to exit or ctx to be done
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mux.Lock()
	done := r.done
	r.mux.Unlock()

	r.scheduler.Shutdown()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.listener != nil {
		r.listener.Stop()
	}
	r.logger.Info("scheduler stopped")
	return nil
}
