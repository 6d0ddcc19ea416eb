package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/procsim/model/process"
	"github.com/viant/procsim/service/messaging"
	"github.com/viant/procsim/service/messaging/memory"
)

func TestPublisher_PublishTransition(t *testing.T) {
	ctx := context.Background()
	publisher := NewPublisher[Transition](memory.NewQueue[Event[Transition]](memory.DefaultConfig()))
	transition := Transition{PID: 7, Kind: KindBlocked, From: process.StateRunning, To: process.StateBlocked, Runtime: 3, Tick: 3}
	assert.NoError(t, PublishTransition(ctx, publisher, transition))

	event, err := publisher.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, transition, event.Data)
	assert.Equal(t, 7, event.Context.ProcessID)
	assert.Equal(t, "blocked", event.Context.EventType)
	assert.NotEmpty(t, event.Context.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestListener(t *testing.T) {
	ctx := context.Background()
	publisher := NewPublisher[Transition](memory.NewQueue[Event[Transition]](memory.DefaultConfig()))

	var mu sync.Mutex
	var received []int
	listener := NewListener[Transition](publisher, func(e *Event[Transition]) {
		mu.Lock()
		received = append(received, e.Data.PID)
		mu.Unlock()
	}, nil)
	listener.Start(ctx)
	listener.Start(ctx)

	for pid := 1; pid <= 3; pid++ {
		assert.NoError(t, PublishTransition(ctx, publisher, Transition{PID: pid, Kind: KindCreated}))
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 3
	}, time.Second, 5*time.Millisecond)

	listener.Stop()
	listener.Stop()
	mu.Lock()
	assert.Equal(t, []int{1, 2, 3}, received)
	mu.Unlock()
}

func TestTryPublishTransition(t *testing.T) {
	queue := memory.NewQueue[Event[Transition]](memory.Config{QueueBuffer: 1, DropWhenFull: false})
	publisher := NewPublisher[Transition](queue)

	done := make(chan error, 1)
	go func() {
		for pid := 1; pid <= 3; pid++ {
			if err := TryPublishTransition(publisher, Transition{PID: pid, Kind: KindCreated}); err != nil && !errors.Is(err, messaging.ErrQueueFull) {
				done <- err
				return
			}
		}
		done <- nil
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("publishing to a full queue waited for a consumer")
	}
	assert.Equal(t, 1, queue.Size())
	assert.EqualValues(t, 2, queue.Dropped())

	event, err := publisher.Consume(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, event.Data.PID)
}

type blockingQueue struct {
	messaging.Queue[Event[Transition]]
}

func TestPublisher_TryPublishUnsupported(t *testing.T) {
	inner := memory.NewQueue[Event[Transition]](memory.DefaultConfig())
	publisher := NewPublisher[Transition](blockingQueue{Queue: inner})
	assert.Error(t, TryPublishTransition(publisher, Transition{PID: 1, Kind: KindCreated}))
	assert.Equal(t, 0, inner.Size())
}

func TestListener_HandlerPanic(t *testing.T) {
	testCases := []struct {
		name          string
		maxRetries    int
		panics        int
		expectHandled []int
		expectDropped int64
	}{
		{name: "redelivered after panic", maxRetries: 1, panics: 1, expectHandled: []int{2, 1}},
		{name: "dropped past retry limit", maxRetries: 1, panics: 2, expectHandled: []int{2}, expectDropped: 1},
		{name: "no retries", maxRetries: 0, panics: 1, expectHandled: []int{2}, expectDropped: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			queue := memory.NewQueue[Event[Transition]](memory.Config{MaxRetries: tc.maxRetries, QueueBuffer: 8, DropWhenFull: true})
			publisher := NewPublisher[Transition](queue)
			assert.NoError(t, PublishTransition(ctx, publisher, Transition{PID: 1, Kind: KindCreated}))
			assert.NoError(t, PublishTransition(ctx, publisher, Transition{PID: 2, Kind: KindCreated}))

			var mu sync.Mutex
			var handled []int
			attempts := 0
			listener := NewListener[Transition](publisher, func(e *Event[Transition]) {
				mu.Lock()
				defer mu.Unlock()
				if e.Data.PID == 1 && attempts < tc.panics {
					attempts++
					panic("handler failure")
				}
				handled = append(handled, e.Data.PID)
			}, nil)
			listener.Start(ctx)
			defer listener.Stop()

			assert.Eventually(t, func() bool {
				mu.Lock()
				defer mu.Unlock()
				return len(handled) == len(tc.expectHandled) && queue.Size() == 0
			}, time.Second, 5*time.Millisecond)
			listener.Stop()
			mu.Lock()
			assert.Equal(t, tc.expectHandled, handled)
			mu.Unlock()
			assert.Equal(t, tc.expectDropped, queue.Dropped())
		})
	}
}
