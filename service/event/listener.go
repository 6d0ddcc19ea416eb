package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/viant/procsim/service/messaging"
)

// Listener drains a publisher and hands every event to handler until stopped.
// An event whose handler panics is nacked and redelivered within the queue
// retry limit.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*Event[T])
	logger    *slog.Logger
	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewListener[T any](publisher *Publisher[T], handler func(*Event[T]), logger *slog.Logger) *Listener[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		logger:    logger,
	}
}

// Start launches the consuming goroutine; subsequent calls are no-ops
func (l *Listener[T]) Start(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return
	}
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
}

// Stop cancels the listener and waits for the consuming goroutine to exit
func (l *Listener[T]) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (l *Listener[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		msg, err := l.publisher.consume(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			l.logger.Error("failed to consume event", slog.Any("error", err))
			continue
		}
		if msg != nil {
			l.handle(msg)
		}
	}
}

func (l *Listener[T]) handle(msg messaging.Message[Event[T]]) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err := fmt.Errorf("event handler panic: %v", r)
		l.logger.Error("failed to handle event", slog.String("id", msg.ID()), slog.Any("error", err))
		if nackErr := msg.Nack(err); nackErr != nil {
			l.logger.Error("failed to nack event", slog.String("id", msg.ID()), slog.Any("error", nackErr))
		}
	}()
	l.handler(msg.T())
	if err := msg.Ack(); err != nil {
		l.logger.Error("failed to ack event", slog.String("id", msg.ID()), slog.Any("error", err))
	}
}
