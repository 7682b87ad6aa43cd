package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	a, unsubA := bus.Subscribe(1)
	b, unsubB := bus.Subscribe(1)
	defer unsubA()
	defer unsubB()

	bus.Publish(Event{Type: TypeCartChanged})

	gotA := <-a
	gotB := <-b
	assert.Equal(t, TypeCartChanged, gotA.Type)
	assert.Equal(t, TypeCartChanged, gotB.Type)
	assert.False(t, gotA.At.IsZero())
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice must not panic.
	unsubscribe()
	bus.Publish(Event{Type: TypeTabSaved})
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	bus.Publish(Event{Type: TypeTabSaved})
	bus.Publish(Event{Type: TypeTabDeleted}) // buffer full, dropped

	got := <-ch
	require.Equal(t, TypeTabSaved, got.Type)
	select {
	case e := <-ch:
		t.Fatalf("unexpected extra event %q", e.Type)
	default:
	}
}

func TestBus_CloseStopsDelivery(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, _ := bus.Subscribe(1)
	bus.Close()

	bus.Publish(Event{Type: TypeOrderCompleted})
	_, open := <-ch
	assert.False(t, open)
}
