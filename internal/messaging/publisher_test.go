package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/slugly/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	published  map[string][]*message.Message
	publishErr error
	closeErr   error
	closeCalls int
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{published: make(map[string][]*message.Message)}
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	if m.publishErr != nil {
		return m.publishErr
	}

	m.published[topic] = append(m.published[topic], msgs...)

	return nil
}

func (m *mockPublisher) Close() error {
	m.closeCalls++

	return m.closeErr
}

type publishTestEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestNewPublishFunc(t *testing.T) {
	t.Run("marshals the event and tags its type", func(t *testing.T) {
		pub := newMockPublisher()
		publish := messaging.NewPublishFunc[publishTestEvent](pub, "test.topic")

		require.NoError(t, publish(context.Background(), &publishTestEvent{ID: "123", Name: "test"}))

		msgs := pub.published["test.topic"]
		require.Len(t, msgs, 1)
		assert.JSONEq(t, `{"id":"123","name":"test"}`, string(msgs[0].Payload))
		assert.Equal(t, "messaging_test.publishTestEvent", msgs[0].Metadata.Get(messaging.MetadataEventType))
		assert.NotEmpty(t, msgs[0].UUID)
	})

	t.Run("wraps publisher errors with the topic", func(t *testing.T) {
		errBroker := errors.New("broker down")
		pub := newMockPublisher()
		pub.publishErr = errBroker
		publish := messaging.NewPublishFunc[publishTestEvent](pub, "test.topic")

		err := publish(context.Background(), &publishTestEvent{ID: "123"})

		require.ErrorIs(t, err, errBroker)
		assert.Contains(t, err.Error(), "test.topic")
	})
}

func TestPublisherGroup(t *testing.T) {
	t.Run("binds typed publishers per topic", func(t *testing.T) {
		pub := newMockPublisher()
		group := messaging.NewPublisherGroup(pub)

		created := messaging.Publisher[publishTestEvent](group, "url.created")
		accessed := messaging.Publisher[publishTestEvent](group, "url.accessed")

		require.NoError(t, created(context.Background(), &publishTestEvent{ID: "1"}))
		require.NoError(t, accessed(context.Background(), &publishTestEvent{ID: "2"}))
		require.NoError(t, accessed(context.Background(), &publishTestEvent{ID: "3"}))

		assert.Len(t, pub.published["url.created"], 1)
		assert.Len(t, pub.published["url.accessed"], 2)
		assert.Equal(t, []string{"url.created", "url.accessed"}, group.Topics())
	})

	t.Run("rejects publishes after shutdown", func(t *testing.T) {
		pub := newMockPublisher()
		group := messaging.NewPublisherGroup(pub)
		publish := messaging.Publisher[publishTestEvent](group, "url.created")

		require.NoError(t, group.Shutdown())

		err := publish(context.Background(), &publishTestEvent{ID: "1"})

		require.ErrorIs(t, err, messaging.ErrPublisherClosed)
		assert.Empty(t, pub.published["url.created"])
	})

	t.Run("closes the publisher once", func(t *testing.T) {
		pub := newMockPublisher()
		group := messaging.NewPublisherGroup(pub)

		require.NoError(t, group.Shutdown())
		require.NoError(t, group.Shutdown())

		assert.Equal(t, 1, pub.closeCalls)
	})

	t.Run("wraps close errors", func(t *testing.T) {
		errClose := errors.New("close error")
		pub := newMockPublisher()
		pub.closeErr = errClose
		group := messaging.NewPublisherGroup(pub)

		err := group.Shutdown()

		require.ErrorIs(t, err, errClose)
	})
}
