package process

import (
	"errors"
	"fmt"
	"time"
)

// NoIO marks an I/O offset as unused
const NoIO = -1

// ErrInvalidArgument is returned when a Spec cannot describe a runnable process
var ErrInvalidArgument = errors.New("invalid argument")

// Spec describes a process creation request
type Spec struct {
	BurstTime   int `json:"burstTime" yaml:"burstTime"`
	MemorySize  int `json:"memorySize" yaml:"memorySize"`
	IOStartTime int `json:"ioStartTime" yaml:"ioStartTime"`
	IOEndTime   int `json:"ioEndTime" yaml:"ioEndTime"`
}

// NewSpec returns a spec for a process that never blocks for I/O
func NewSpec(burstTime, memorySize int) Spec {
	return Spec{BurstTime: burstTime, MemorySize: memorySize, IOStartTime: NoIO, IOEndTime: NoIO}
}

// WithIO returns a copy of the spec blocking on [start, end) of its runtime clock
func (s Spec) WithIO(start, end int) Spec {
	s.IOStartTime = start
	s.IOEndTime = end
	return s
}

// HasIO reports whether the process blocks for I/O at some point
func (s Spec) HasIO() bool {
	return s.IOStartTime != NoIO
}

// Validate checks that the spec describes a process that can run to completion.
// The I/O window must lie strictly inside the burst: the wait advances the same
// runtime clock, so a window reaching the burst would overshoot it.
func (s Spec) Validate() error {
	if s.BurstTime <= 0 {
		return fmt.Errorf("%w: burst time must be > 0, got %d", ErrInvalidArgument, s.BurstTime)
	}
	if s.MemorySize <= 0 {
		return fmt.Errorf("%w: memory size must be > 0, got %d", ErrInvalidArgument, s.MemorySize)
	}
	if s.IOStartTime == NoIO && s.IOEndTime == NoIO {
		return nil
	}
	if s.IOStartTime == NoIO || s.IOEndTime == NoIO {
		return fmt.Errorf("%w: io start and end must both be %d or both be set", ErrInvalidArgument, NoIO)
	}
	if s.IOStartTime < 1 || s.IOStartTime >= s.IOEndTime || s.IOEndTime >= s.BurstTime {
		return fmt.Errorf("%w: io window [%d, %d) must satisfy 1 <= start < end < burst (%d)",
			ErrInvalidArgument, s.IOStartTime, s.IOEndTime, s.BurstTime)
	}
	return nil
}

// Process represents one simulated task and its execution progress
type Process struct {
	ID            int       `json:"id"`
	BurstTime     int       `json:"burstTime"`
	Runtime       int       `json:"runtime"`
	MemorySize    int       `json:"memorySize"`
	MemoryAddress int       `json:"memoryAddress"`
	IOStartTime   int       `json:"ioStartTime"`
	IOEndTime     int       `json:"ioEndTime"`
	State         State     `json:"state"`
	Location      Location  `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// New creates a Ready process with an unassigned memory address
func New(id int, spec Spec, createdAt time.Time) *Process {
	return &Process{
		ID:            id,
		BurstTime:     spec.BurstTime,
		MemorySize:    spec.MemorySize,
		MemoryAddress: -1,
		IOStartTime:   spec.IOStartTime,
		IOEndTime:     spec.IOEndTime,
		State:         StateReady,
		CreatedAt:     createdAt,
	}
}

// SetState moves the process to next, panicking on an illegal transition
func (p *Process) SetState(next State) {
	if !p.State.CanTransition(next) {
		panic(fmt.Sprintf("process %d: illegal transition %v -> %v", p.ID, p.State, next))
	}
	p.State = next
}

// Grant adds one quantum to the runtime clock
func (p *Process) Grant() {
	p.Runtime++
}

// IsComplete reports whether the process has received its whole burst
func (p *Process) IsComplete() bool {
	return p.Runtime == p.BurstTime
}

// ShouldBlock reports whether the runtime clock sits on the I/O start offset
func (p *Process) ShouldBlock() bool {
	return p.IOStartTime != NoIO && p.Runtime == p.IOStartTime
}

// IOComplete reports whether a blocked process has reached its I/O end offset
func (p *Process) IOComplete() bool {
	return p.Runtime == p.IOEndTime
}

// Clone returns a detached copy safe to hand to callers
func (p *Process) Clone() *Process {
	if p == nil {
		return nil
	}
	ret := *p
	return &ret
}

// Summary is a read-only listing view of a process
type Summary struct {
	ID            int   `json:"id"`
	State         State `json:"state"`
	Runtime       int   `json:"runtime"`
	BurstTime     int   `json:"burstTime"`
	MemorySize    int   `json:"memorySize"`
	MemoryAddress int   `json:"memoryAddress"`
	IOStartTime   int   `json:"ioStartTime"`
	IOEndTime     int   `json:"ioEndTime"`
}

// Summary returns the listing view of p
func (p *Process) Summary() Summary {
	return Summary{
		ID:            p.ID,
		State:         p.State,
		Runtime:       p.Runtime,
		BurstTime:     p.BurstTime,
		MemorySize:    p.MemorySize,
		MemoryAddress: p.MemoryAddress,
		IOStartTime:   p.IOStartTime,
		IOEndTime:     p.IOEndTime,
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("PID: %d, State: %v, Memory Size: %d bytes, Memory Address: %d", s.ID, s.State, s.MemorySize, s.MemoryAddress)
}
