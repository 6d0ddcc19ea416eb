package idgen

import (
	"sync"

	"github.com/google/uuid"
)

// New returns a new globally unique identifier as string. It is implemented
// as a thin wrapper so tests can stub it.

var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// Sequence is a monotonic id source starting at 1. Ids are never reused.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewSequence creates a sequence whose first id is 1
func NewSequence() *Sequence {
	return &Sequence{next: 1}
}

// Next consumes and returns the next id
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ret := s.next
	s.next++
	return ret
}
