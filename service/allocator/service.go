package allocator

import (
	"errors"
	"fmt"
	"sync"
)

// ErrOutOfMemory is returned when a reservation exceeds the free capacity
var ErrOutOfMemory = errors.New("allocator: out of memory")

// DefaultCapacity is 1 MiB
const DefaultCapacity = 1024 * 1024

// Config represents allocator configuration
type Config struct {
	// Capacity is the total number of bytes that can be reserved
	Capacity int `json:"capacity" yaml:"capacity"`
}

// DefaultConfig returns the default allocator configuration
func DefaultConfig() Config {
	return Config{Capacity: DefaultCapacity}
}

// Status is a point in time view of the allocator counters
type Status struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

// Free returns the remaining capacity
func (s Status) Free() int {
	return s.Total - s.Used
}

// Service tracks used and total memory capacity
type Service struct {
	mux   sync.Mutex
	total int
	used  int
}

// New creates an allocator with the configured capacity
func New(config Config) (*Service, error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("allocator: capacity must be > 0, got %d", config.Capacity)
	}
	return &Service{total: config.Capacity}, nil
}

// Reserve assigns size bytes at the current usage offset
func (s *Service) Reserve(size int) (int, error) {
	if size <= 0 {
		return -1, fmt.Errorf("allocator: reservation size must be > 0, got %d", size)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if size > s.total-s.used {
		return -1, fmt.Errorf("%w: requested %d bytes, %d of %d free", ErrOutOfMemory, size, s.total-s.used, s.total)
	}
	offset := s.used
	s.used += size
	return offset, nil
}

// Release returns size bytes; the caller guarantees a matching Reserve.
func (s *Service) Release(size int) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if size < 0 || size > s.used {
		panic(fmt.Sprintf("allocator: release of %d bytes with %d in use", size, s.used))
	}
	s.used -= size
}

// Status returns a snapshot of the counters
func (s *Service) Status() Status {
	s.mux.Lock()
	defer s.mux.Unlock()
	return Status{Used: s.used, Total: s.total}
}
