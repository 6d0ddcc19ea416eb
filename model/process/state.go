package process

import (
	"fmt"
	"strings"
)

// State represents the lifecycle state of a process
type State int

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateTerminated
)

var stateNames = [...]string{
	StateReady:      "Ready",
	StateRunning:    "Running",
	StateBlocked:    "Blocked",
	StateTerminated: "Terminated",
}

func (s State) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// IsValid reports whether s is one of the four lifecycle states
func (s State) IsValid() bool {
	return s >= StateReady && s <= StateTerminated
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
// Terminated is absorbing.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateReady:
		return next == StateRunning
	case StateRunning:
		return next == StateTerminated || next == StateBlocked || next == StateReady
	case StateBlocked:
		return next == StateReady
	}
	return false
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid process state: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name (case-insensitive)
func (s *State) UnmarshalText(text []byte) error {
	state, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseState converts a state name into a State
func ParseState(name string) (State, error) {
	for i, candidate := range stateNames {
		if strings.EqualFold(candidate, name) {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("unknown process state: %q", name)
}

// Location tags which scheduler structure currently holds a process
type Location int

const (
	LocationNone Location = iota
	LocationReady
	LocationRunning
	LocationBlocked
)

func (l Location) String() string {
	switch l {
	case LocationReady:
		return "ready"
	case LocationRunning:
		return "running"
	case LocationBlocked:
		return "blocked"
	}
	return "none"
}
