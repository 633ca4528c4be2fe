package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubDeliversToGroupSubscribers(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("group-1")
	defer cancel()
	otherEvents, otherCancel := hub.Subscribe("group-2")
	defer otherCancel()

	hub.Publish(Event{GroupID: "group-1", Kind: KindTask, Action: ActionCreated, EntityID: "task-1"})

	received := <-events
	assert.Equal(t, "group-1", received.GroupID)
	assert.Equal(t, KindTask, received.Kind)
	assert.Equal(t, ActionCreated, received.Action)
	assert.Equal(t, "task-1", received.EntityID)
	assert.False(t, received.At.IsZero())

	select {
	case unexpected := <-otherEvents:
		t.Fatalf("subscriber of another group received %+v", unexpected)
	default:
	}
}

func TestHubFansOut(t *testing.T) {
	hub := NewHub()

	first, cancelFirst := hub.Subscribe("group-1")
	defer cancelFirst()
	second, cancelSecond := hub.Subscribe("group-1")
	defer cancelSecond()

	hub.Publish(Event{GroupID: "group-1", Kind: KindSetlist, Action: ActionUpdated, EntityID: "set-1"})

	assert.Equal(t, "set-1", (<-first).EntityID)
	assert.Equal(t, "set-1", (<-second).EntityID)
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("group-1")
	require.Equal(t, 1, hub.Subscribers("group-1"))

	cancel()
	assert.Equal(t, 0, hub.Subscribers("group-1"))

	_, open := <-events
	assert.False(t, open)

	// Cancelling twice must not panic.
	cancel()

	// Publishing to a group without subscribers is a no-op.
	hub.Publish(Event{GroupID: "group-1", Kind: KindTask, Action: ActionDeleted, EntityID: "task-1"})
}

func TestHubDropsEventsForSlowSubscribers(t *testing.T) {
	hub := NewHub()

	events, cancel := hub.Subscribe("group-1")
	defer cancel()

	// Nobody drains the channel: the buffer fills up and later events
	// are dropped instead of blocking the publisher.
	for i := 0; i < subscriberBuffer+5; i++ {
		hub.Publish(Event{GroupID: "group-1", Kind: KindTask, Action: ActionUpdated, EntityID: "task-1"})
	}

	drained := 0
	for {
		select {
		case <-events:
			drained++
			continue
		default:
		}
		break
	}
	assert.Equal(t, subscriberBuffer, drained)
}
