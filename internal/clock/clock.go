package clock

import (
	"sync"
	"time"
)

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Ticker delivers ticks on C until stopped
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// NewTickerFunc creates tickers; the scheduler takes one as an option
type NewTickerFunc func(interval time.Duration) Ticker

type realTicker struct {
	*time.Ticker
}

func (t *realTicker) C() <-chan time.Time { return t.Ticker.C }

// NewTicker returns a wall clock ticker
func NewTicker(interval time.Duration) Ticker {
	return &realTicker{Ticker: time.NewTicker(interval)}
}

// ManualTicker is a Ticker advanced explicitly by tests
type ManualTicker struct {
	ch       chan time.Time
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewManualTicker creates an unbuffered manual ticker
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

// C returns the tick channel
func (m *ManualTicker) C() <-chan time.Time { return m.ch }

// Stop releases any pending Advance call
func (m *ManualTicker) Stop() {
	m.stopOnce.Do(func() { close(m.stopped) })
}

// Advance delivers one tick and blocks until the consumer receives it.
// It returns false once the ticker has been stopped.
func (m *ManualTicker) Advance() bool {
	select {
	case m.ch <- Now():
		return true
	case <-m.stopped:
		return false
	}
}

// Func adapts the manual ticker to NewTickerFunc
func (m *ManualTicker) Func() NewTickerFunc {
	return func(time.Duration) Ticker { return m }
}
