// Package progress provides a lightweight tracker that keeps aggregated
// scheduler counters.  The tracker instance is owned by the scheduler and
// every transition applies a Delta to it.

package progress

import (
	"sync"
	"time"

	"github.com/viant/procsim/internal/clock"
)

// Delta represents an incremental counter change emitted by the scheduler
// or the command API.
type Delta struct {
	Created     int
	Completed   int
	Killed      int
	OutOfMemory int
	Blocked     int
	Unblocked   int
	Ticks       int
	IdleTicks   int
}

// Counters is a value copy of the tracked counters
type Counters struct {
	StartedAt   time.Time `json:"startedAt"`
	Created     int       `json:"created"`
	Completed   int       `json:"completed"`
	Killed      int       `json:"killed"`
	OutOfMemory int       `json:"outOfMemory"`
	Blocked     int       `json:"blocked"`
	Unblocked   int       `json:"unblocked"`
	Ticks       int       `json:"ticks"`
	IdleTicks   int       `json:"idleTicks"`
	// EventsDropped counts transition events lost on a full event queue
	EventsDropped int64 `json:"eventsDropped"`
}

// Live returns the number of processes created and not yet gone
func (c Counters) Live() int {
	return c.Created - c.Completed - c.Killed
}

// Progress keeps aggregated counters.  It is safe for concurrent use.
type Progress struct {
	mu       sync.Mutex
	counters Counters
	onChange func(Counters)
}

// New creates a tracker; onChange may be nil
func New(onChange func(Counters)) *Progress {
	return &Progress{
		counters: Counters{StartedAt: clock.Now()},
		onChange: onChange,
	}
}

// Update applies the supplied delta to the tracker.  It is safe to call from
// multiple goroutines.  If an onChange callback has been registered it will be
// invoked with a copy of the updated counters outside the critical section.
func (p *Progress) Update(d Delta) {
	if p == nil {
		return
	}

	p.mu.Lock()
	p.counters.Created += d.Created
	p.counters.Completed += d.Completed
	p.counters.Killed += d.Killed
	p.counters.OutOfMemory += d.OutOfMemory
	p.counters.Blocked += d.Blocked
	p.counters.Unblocked += d.Unblocked
	p.counters.Ticks += d.Ticks
	p.counters.IdleTicks += d.IdleTicks
	snapshot := p.counters
	cb := p.onChange
	p.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the counters suitable for read-only inspection.
func (p *Progress) Snapshot() Counters {
	if p == nil {
		return Counters{}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counters
}
