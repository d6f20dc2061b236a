package pubsub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	ps := NewPubSub[string]()
	a := ps.Subscribe("snapshot")
	b := ps.Subscribe("snapshot")
	other := ps.Subscribe("other")

	ps.Publish("snapshot", "hello")

	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)
	assert.Empty(t, other)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	ps := NewPubSub[int]()
	sub := ps.Subscribe("t")

	// overflow the buffer; the extra publishes are dropped, not blocked on
	for i := 0; i < subscriberBuffer*2; i++ {
		ps.Publish("t", i)
	}

	assert.Len(t, sub, subscriberBuffer)
	assert.Equal(t, 0, <-sub)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	ps := NewPubSub[int]()
	sub := ps.Subscribe("t")
	ps.Unsubscribe("t", sub)

	_, open := <-sub
	require.False(t, open)

	// publishing after unsubscribe must not panic on the closed channel
	ps.Publish("t", 1)
}
