package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/progress"
	"github.com/viant/procsim/service/allocator"
	"github.com/viant/procsim/service/dao"
	pmemory "github.com/viant/procsim/service/dao/process/memory"
	"github.com/viant/procsim/service/event"
)

// TransitionListener observes lifecycle transitions. Listeners see transitions
// in the order operations took effect and must not call back into the Service.
type TransitionListener func(transition event.Transition)

type memoryAccounter interface {
	TotalMemory(ctx context.Context) int
}

// Service schedules simulated processes round robin with a one quantum slice
type Service struct {
	config    Config
	table     dao.Service[int, process.Process]
	allocator *allocator.Service
	progress  *progress.Progress
	logger    *slog.Logger
	listeners []TransitionListener
	newTicker clock.NewTickerFunc

	mux      sync.Mutex
	emitMux  sync.Mutex
	sequence *idgen.Sequence
	ready    *readyQueue
	blocked  map[int]*process.Process
	running  *process.Process
	tick     uint64

	shutdownCh   chan struct{}
	shutdownOnce sync.Once
}

// New creates a scheduler; table, allocator and tracker default to fresh instances
func New(options ...Option) (*Service, error) {
	s := &Service{
		config:     DefaultConfig(),
		sequence:   idgen.NewSequence(),
		ready:      newReadyQueue(),
		blocked:    make(map[int]*process.Process),
		newTicker:  clock.NewTicker,
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range options {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if s.table == nil {
		s.table = pmemory.New()
	}
	if s.allocator == nil {
		var err error
		if s.allocator, err = allocator.New(allocator.DefaultConfig()); err != nil {
			return nil, err
		}
	}
	if s.progress == nil {
		s.progress = progress.New(nil)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Create admits a new process: reserves its memory, assigns the next id and
// queues it at the ready tail. On allocator.ErrOutOfMemory nothing changes,
// the id sequence included.
func (s *Service) Create(ctx context.Context, spec process.Spec) (*process.Process, error) {
	s.mux.Lock()
	offset, err := s.allocator.Reserve(spec.MemorySize)
	if err != nil {
		s.emit(progress.Delta{OutOfMemory: 1})
		return nil, err
	}
	aProcess := process.New(s.sequence.Next(), spec, clock.Now())
	aProcess.MemoryAddress = offset
	if err = s.table.Insert(ctx, aProcess); err != nil {
		s.allocator.Release(spec.MemorySize)
		s.mux.Unlock()
		return nil, fmt.Errorf("failed to register process %d: %w", aProcess.ID, err)
	}
	s.enqueue(aProcess)
	transition := s.transition(aProcess, event.KindCreated, process.StateReady)
	snapshot := aProcess.Clone()
	s.emit(progress.Delta{Created: 1}, transition)
	return snapshot, nil
}

// Kill removes the process from whichever structure holds it, drops it from
// the table and releases its memory. Unknown ids yield dao.ErrNotFound.
func (s *Service) Kill(ctx context.Context, id int) error {
	s.mux.Lock()
	aProcess, err := s.table.Find(ctx, id)
	if err != nil {
		s.mux.Unlock()
		return err
	}
	s.logger.Debug("killing process", slog.Int("pid", id), slog.String("location", aProcess.Location.String()))
	s.detach(aProcess)
	if _, err = s.table.Remove(ctx, id); err != nil {
		panic(fmt.Sprintf("scheduler: process %d vanished from table during kill: %v", id, err))
	}
	s.allocator.Release(aProcess.MemorySize)
	transition := s.transition(aProcess, event.KindKilled, process.StateTerminated)
	aProcess.State = process.StateTerminated
	s.emit(progress.Delta{Killed: 1}, transition)
	return nil
}

// List returns summaries of live processes ordered by id, optionally
// restricted to the given states
func (s *Service) List(ctx context.Context, states ...process.State) ([]process.Summary, error) {
	var parameters []*dao.Parameter
	if len(states) > 0 {
		names := make([]string, 0, len(states))
		for _, state := range states {
			names = append(names, state.String())
		}
		parameters = append(parameters, dao.NewParameter(dao.StateParameter, names...))
	}
	s.mux.Lock()
	processes, err := s.table.List(ctx, parameters...)
	s.mux.Unlock()
	if err != nil {
		return nil, err
	}
	ret := make([]process.Summary, 0, len(processes))
	for _, p := range processes {
		ret = append(ret, p.Summary())
	}
	return ret, nil
}

// MemoryStatus returns used and total capacity
func (s *Service) MemoryStatus() allocator.Status {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.allocator.Status()
}

// Stats returns the scheduling counters
func (s *Service) Stats() progress.Counters {
	return s.progress.Snapshot()
}

// ReadyIDs returns the ready queue from head to tail
func (s *Service) ReadyIDs() []int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.ready.ids()
}

// BlockedIDs returns the blocked set in ascending id order
func (s *Service) BlockedIDs() []int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.blockedIDs()
}

// Ticks returns the number of ticks executed so far
func (s *Service) Ticks() uint64 {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.tick
}

// Tick advances virtual time by one quantum.
func (s *Service) Tick(ctx context.Context) {
	s.mux.Lock()
	transitions, delta := s.step(ctx)
	if s.logger.Enabled(ctx, slog.LevelDebug) {
		s.checkMemory(ctx)
	}
	s.emit(delta, transitions...)
}

// checkMemory panics when reserved memory drifts from the live process total
func (s *Service) checkMemory(ctx context.Context) {
	accounter, ok := s.table.(memoryAccounter)
	if !ok {
		return
	}
	if used, total := s.allocator.Status().Used, accounter.TotalMemory(ctx); used != total {
		panic(fmt.Sprintf("scheduler: %d bytes reserved but live processes hold %d at tick %d", used, total, s.tick))
	}
}

func (s *Service) step(ctx context.Context) ([]event.Transition, progress.Delta) {
	s.tick++
	delta := progress.Delta{Ticks: 1}
	var transitions []event.Transition

	justBlocked := -1
	if aProcess := s.ready.popFront(); aProcess != nil {
		if _, err := s.table.Find(ctx, aProcess.ID); err != nil {
			panic(fmt.Sprintf("scheduler: ready process %d missing from table: %v", aProcess.ID, err))
		}
		transitions = append(transitions, s.transition(aProcess, event.KindScheduled, process.StateRunning))
		aProcess.SetState(process.StateRunning)
		aProcess.Location = process.LocationRunning
		s.running = aProcess
		aProcess.Grant()

		switch {
		case aProcess.IsComplete():
			transitions = append(transitions, s.transition(aProcess, event.KindTerminated, process.StateTerminated))
			s.terminate(ctx, aProcess)
			delta.Completed++
		case aProcess.ShouldBlock():
			transitions = append(transitions, s.transition(aProcess, event.KindBlocked, process.StateBlocked))
			aProcess.SetState(process.StateBlocked)
			aProcess.Location = process.LocationBlocked
			s.blocked[aProcess.ID] = aProcess
			justBlocked = aProcess.ID
			delta.Blocked++
		default:
			transitions = append(transitions, s.transition(aProcess, event.KindRequeued, process.StateReady))
			aProcess.SetState(process.StateReady)
			s.enqueue(aProcess)
		}
	} else {
		delta.IdleTicks++
	}

	// a process blocked during this tick starts waiting on the next one
	for _, id := range s.blockedIDs() {
		if id == justBlocked {
			continue
		}
		aProcess := s.blocked[id]
		aProcess.Grant()
		if !aProcess.IOComplete() {
			continue
		}
		delete(s.blocked, id)
		transitions = append(transitions, s.transition(aProcess, event.KindUnblocked, process.StateReady))
		aProcess.SetState(process.StateReady)
		s.enqueue(aProcess)
		delta.Unblocked++
	}

	s.running = nil
	return transitions, delta
}

func (s *Service) enqueue(aProcess *process.Process) {
	aProcess.Location = process.LocationReady
	s.ready.pushBack(aProcess)
}

func (s *Service) terminate(ctx context.Context, aProcess *process.Process) {
	if _, err := s.table.Remove(ctx, aProcess.ID); err != nil {
		panic(fmt.Sprintf("scheduler: running process %d missing from table: %v", aProcess.ID, err))
	}
	s.allocator.Release(aProcess.MemorySize)
	aProcess.SetState(process.StateTerminated)
	aProcess.Location = process.LocationNone
	if s.running == aProcess {
		s.running = nil
	}
}

// detach removes the process from the structure its location points at
func (s *Service) detach(aProcess *process.Process) {
	switch aProcess.Location {
	case process.LocationRunning:
		if s.running != nil && s.running.ID == aProcess.ID {
			s.running = nil
		}
	case process.LocationReady:
		s.ready.remove(aProcess.ID)
	case process.LocationBlocked:
		delete(s.blocked, aProcess.ID)
	}
	aProcess.Location = process.LocationNone
}

func (s *Service) blockedIDs() []int {
	ids := make([]int, 0, len(s.blocked))
	for id := range s.blocked {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Service) transition(aProcess *process.Process, kind event.Kind, to process.State) event.Transition {
	return event.Transition{
		PID:     aProcess.ID,
		Kind:    kind,
		From:    aProcess.State,
		To:      to,
		Runtime: aProcess.Runtime,
		Tick:    s.tick,
	}
}

// emit releases the scheduler lock, which must be held, then applies delta and
// notifies listeners. The emit lock is taken first so that listeners observe
// operations in the order they took effect.
func (s *Service) emit(delta progress.Delta, transitions ...event.Transition) {
	s.emitMux.Lock()
	s.mux.Unlock()
	defer s.emitMux.Unlock()
	s.progress.Update(delta)
	s.notify(transitions...)
}

func (s *Service) notify(transitions ...event.Transition) {
	for _, transition := range transitions {
		s.logger.Debug("process transition",
			slog.Int("pid", transition.PID),
			slog.String("kind", string(transition.Kind)),
			slog.String("from", transition.From.String()),
			slog.String("to", transition.To.String()),
			slog.Uint64("tick", transition.Tick))
		for _, listener := range s.listeners {
			listener(transition)
		}
	}
}

// Start runs the tick loop until the context is done or Shutdown is called
func (s *Service) Start(ctx context.Context) error {
	ticker := s.newTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-s.shutdownCh:
			return nil
		case <-ticker.C():
			s.Tick(ctx)
		}
	}
}

// Shutdown stops the tick loop
func (s *Service) Shutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownCh) })
}
