package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLogin(t *testing.T) {
	ctx := context.Background()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, TopicLogin)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub)
	require.NoError(t, p.PublishLogin(ctx, "w-1", "0xabc"))

	select {
	case msg := <-messages:
		var event AuthEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "w-1", event.WalletID)
		assert.Equal(t, "0xabc", event.Address)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no login event received")
	}
}

func TestPublishWalletCreated(t *testing.T) {
	ctx := context.Background()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, TopicWalletCreated)
	require.NoError(t, err)

	p := NewWatermillPublisher(pubSub)
	require.NoError(t, p.PublishWalletCreated(ctx, "w-2", "0xdef"))

	select {
	case msg := <-messages:
		var event AuthEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &event))
		assert.Equal(t, "w-2", event.WalletID)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("no wallet created event received")
	}
}
