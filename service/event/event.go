package event

import (
	"time"

	"github.com/viant/procsim/model/process"
)

// Kind names a lifecycle transition
type Kind string

const (
	KindCreated    Kind = "created"
	KindScheduled  Kind = "scheduled"
	KindRequeued   Kind = "requeued"
	KindBlocked    Kind = "blocked"
	KindUnblocked  Kind = "unblocked"
	KindTerminated Kind = "terminated"
	KindKilled     Kind = "killed"
)

// Transition describes one state change of a process
type Transition struct {
	PID     int           `json:"pid"`
	Kind    Kind          `json:"kind"`
	From    process.State `json:"from"`
	To      process.State `json:"to"`
	Runtime int           `json:"runtime"`
	Tick    uint64        `json:"tick"`
}

type Context struct {
	ID        string `json:"id"`
	ProcessID int    `json:"processID"`
	EventType string `json:"eventType"`
}

type Event[T any] struct {
	Context   *Context               `json:"context"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata"`
	Data      T                      `json:"data"`
}

func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		Context:  context,
		Metadata: make(map[string]interface{}),
		Data:     data,
	}
}
