package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/serroba/slugly/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type mockSubscriber struct {
	msgChan      chan *message.Message
	subscribeErr error
	mu           sync.Mutex
	topics       []string
	closed       bool
}

func newMockSubscriber() *mockSubscriber {
	return &mockSubscriber{
		msgChan: make(chan *message.Message, 10),
	}
}

func (m *mockSubscriber) Subscribe(_ context.Context, topic string) (<-chan *message.Message, error) {
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}

	m.mu.Lock()
	m.topics = append(m.topics, topic)
	m.mu.Unlock()

	return m.msgChan, nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.msgChan)
	}

	return nil
}

func noopHandler(context.Context, *testEvent) error { return nil }

func newMessage(t *testing.T, event any) *message.Message {
	t.Helper()

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return message.NewMessage(uuid.NewString(), payload)
}

// outcome waits for msg to be acked or nacked.
func outcome(t *testing.T, msg *message.Message) string {
	t.Helper()

	select {
	case <-msg.Acked():
		return "ack"
	case <-msg.Nacked():
		return "nack"
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ack or nack")

		return ""
	}
}

func startConsumer(t *testing.T, handler messaging.Handler[testEvent]) *mockSubscriber {
	t.Helper()

	sub := newMockSubscriber()
	consumer := messaging.NewConsumer(sub, "test.topic", handler, zap.NewNop())

	require.NoError(t, consumer.Start(context.Background()))
	t.Cleanup(func() { _ = consumer.Shutdown() })

	return sub
}

func TestConsumer_Start(t *testing.T) {
	t.Run("subscribes to its topic", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, "test.topic", noopHandler, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		assert.Equal(t, "test.topic", consumer.Topic())
		assert.Equal(t, []string{"test.topic"}, sub.topics)

		require.NoError(t, consumer.Shutdown())
	})

	t.Run("returns error when subscribe fails", func(t *testing.T) {
		sub := &mockSubscriber{subscribeErr: errors.New("subscribe error")}
		consumer := messaging.NewConsumer(sub, "test.topic", noopHandler, zap.NewNop())

		err := consumer.Start(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "test.topic")
		assert.NoError(t, consumer.Shutdown())
	})

	t.Run("shutdown without start is a no-op", func(t *testing.T) {
		consumer := messaging.NewConsumer(newMockSubscriber(), "test.topic", noopHandler, zap.NewNop())

		assert.NoError(t, consumer.Shutdown())
	})
}

func TestConsumer_HandleMessage(t *testing.T) {
	t.Run("acks on successful handling", func(t *testing.T) {
		received := make(chan *testEvent, 1)
		sub := startConsumer(t, func(_ context.Context, event *testEvent) error {
			received <- event

			return nil
		})

		msg := newMessage(t, &testEvent{ID: "123", Name: "test"})
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))

		event := <-received
		assert.Equal(t, "123", event.ID)
		assert.Equal(t, "test", event.Name)
	})

	t.Run("accepts messages tagged with the expected type", func(t *testing.T) {
		sub := startConsumer(t, noopHandler)

		msg := newMessage(t, &testEvent{ID: "1"})
		msg.Metadata.Set(messaging.MetadataEventType, "messaging_test.testEvent")
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))
	})

	t.Run("drops undecodable payloads", func(t *testing.T) {
		called := false
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := message.NewMessage(uuid.NewString(), []byte("invalid json"))
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))
		assert.False(t, called)
	})

	t.Run("drops events of another type", func(t *testing.T) {
		called := false
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			called = true

			return nil
		})

		msg := newMessage(t, &testEvent{ID: "1"})
		msg.Metadata.Set(messaging.MetadataEventType, "analytics.URLCreatedEvent")
		sub.msgChan <- msg

		assert.Equal(t, "ack", outcome(t, msg))
		assert.False(t, called)
	})

	t.Run("nacks on handler error", func(t *testing.T) {
		sub := startConsumer(t, func(context.Context, *testEvent) error {
			return errors.New("handler error")
		})

		msg := newMessage(t, &testEvent{ID: "123"})
		sub.msgChan <- msg

		assert.Equal(t, "nack", outcome(t, msg))
	})
}

func TestConsumer_Shutdown(t *testing.T) {
	t.Run("returns after the subscriber closes its channel", func(t *testing.T) {
		sub := newMockSubscriber()
		consumer := messaging.NewConsumer(sub, "test.topic", noopHandler, zap.NewNop())
		require.NoError(t, consumer.Start(context.Background()))

		require.NoError(t, sub.Close())

		assert.NoError(t, consumer.Shutdown())
	})
}
