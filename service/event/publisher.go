package event

import (
	"context"
	"fmt"

	"github.com/viant/procsim/internal/clock"
	"github.com/viant/procsim/internal/idgen"
	"github.com/viant/procsim/service/messaging"
)

type Publisher[T any] struct {
	queue messaging.Queue[Event[T]]
}

func NewPublisher[T any](queue messaging.Queue[Event[T]]) *Publisher[T] {
	return &Publisher[T]{
		queue: queue,
	}
}

func (p *Publisher[T]) Publish(ctx context.Context, event *Event[T]) error {
	p.stamp(event)
	return p.queue.Publish(ctx, event)
}

// TryPublish publishes without waiting for room; the queue must implement
// messaging.TryPublisher
func (p *Publisher[T]) TryPublish(event *Event[T]) error {
	queue, ok := p.queue.(messaging.TryPublisher[Event[T]])
	if !ok {
		return fmt.Errorf("event: queue %T cannot publish without waiting", p.queue)
	}
	p.stamp(event)
	return queue.TryPublish(event)
}

func (p *Publisher[T]) stamp(event *Event[T]) {
	event.CreatedAt = clock.Now()
	if event.Context == nil {
		event.Context = &Context{}
	}
	if event.Context.ID == "" {
		event.Context.ID = idgen.New()
	}
}

func (p *Publisher[T]) Consume(ctx context.Context) (*Event[T], error) {
	msg, err := p.consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}

func (p *Publisher[T]) consume(ctx context.Context) (messaging.Message[Event[T]], error) {
	return p.queue.Consume(ctx)
}

// PublishTransition wraps a transition into an event and publishes it
func PublishTransition(ctx context.Context, publisher *Publisher[Transition], transition Transition) error {
	return publisher.Publish(ctx, newTransitionEvent(transition))
}

// TryPublishTransition is PublishTransition that never waits for queue room
func TryPublishTransition(publisher *Publisher[Transition], transition Transition) error {
	return publisher.TryPublish(newTransitionEvent(transition))
}

func newTransitionEvent(transition Transition) *Event[Transition] {
	eCtx := &Context{ProcessID: transition.PID, EventType: string(transition.Kind)}
	return NewEvent[Transition](eCtx, transition)
}
