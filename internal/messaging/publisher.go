package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// MetadataEventType names the Go type carried in a message payload.
const MetadataEventType = "event_type"

// ErrPublisherClosed is returned by publish funcs after the group shut down.
var ErrPublisherClosed = errors.New("publisher closed")

// Publish sends one typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
// Messages carry the event type in their metadata so consumers can drop
// payloads meant for another handler.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	eventType := fmt.Sprintf("%T", *new(T))

	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", eventType, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataEventType, eventType)
		msg.SetContext(ctx)

		if err := publisher.Publish(topic, msg); err != nil {
			return fmt.Errorf("publishing to %s: %w", topic, err)
		}

		return nil
	}
}

// PublisherGroup owns a publisher shared by several typed publish funcs.
type PublisherGroup struct {
	publisher message.Publisher

	mu     sync.RWMutex
	topics []string
	closed bool
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher binds a typed publish func for topic to the group.
// Once the group shuts down the func returns ErrPublisherClosed.
func Publisher[T any](g *PublisherGroup, topic string) Publish[T] {
	g.mu.Lock()
	g.topics = append(g.topics, topic)
	g.mu.Unlock()

	publish := NewPublishFunc[T](g.publisher, topic)

	return func(ctx context.Context, event *T) error {
		g.mu.RLock()
		defer g.mu.RUnlock()

		if g.closed {
			return ErrPublisherClosed
		}

		return publish(ctx, event)
	}
}

// Topics lists the topics bound through Publisher.
func (g *PublisherGroup) Topics() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return append([]string(nil), g.topics...)
}

// Shutdown closes the underlying publisher. Calling it twice is a no-op.
func (g *PublisherGroup) Shutdown() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}

	g.closed = true

	if err := g.publisher.Close(); err != nil {
		return fmt.Errorf("closing publisher: %w", err)
	}

	return nil
}
