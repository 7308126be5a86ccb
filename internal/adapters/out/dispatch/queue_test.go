package dispatch_test

import (
	"context"
	"testing"

	"orderflow/internal/adapters/out/dispatch"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct{}

func (failingPublisher) Publish(string, ...*message.Message) error {
	return assert.AnError
}

func (failingPublisher) Close() error { return nil }

func TestWatermillDispatchQueue(t *testing.T) {
	t.Run("should enqueue a status changed task", func(t *testing.T) {
		aggregate, event := fixtureConfirmedOrder(t)
		pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
		messages, err := pubsub.Subscribe(context.Background(), dispatch.TopicOrderStatusChanged)
		require.NoError(t, err)

		queue := dispatch.NewWatermillDispatchQueue(pubsub, discardLogger())
		require.NoError(t, queue.EnqueueStatusChanged(context.Background(), aggregate, event))

		msg := <-messages
		msg.Ack()
		assert.Contains(t, string(msg.Payload), aggregate.ID().String())
		assert.Contains(t, string(msg.Payload), event.ID().String())
	})

	t.Run("should not fail a committed transition when publishing breaks", func(t *testing.T) {
		aggregate, event := fixtureConfirmedOrder(t)
		queue := dispatch.NewWatermillDispatchQueue(failingPublisher{}, discardLogger())

		assert.NoError(t, queue.EnqueueStatusChanged(context.Background(), aggregate, event))
		assert.NoError(t, queue.EnqueueNewOrder(context.Background(), aggregate))
	})
}
