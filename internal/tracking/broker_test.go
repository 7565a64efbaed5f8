package tracking

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversInOrder(t *testing.T) {
	broker := NewBroker(8)
	orderID := uuid.New()

	ch, unsubscribe := broker.Subscribe(orderID)
	defer unsubscribe()

	notes := []string{"leaving", "halfway", "arriving"}
	for i := range notes {
		broker.Publish(Event{OrderID: orderID, Note: &notes[i]})
	}

	for _, want := range notes {
		got := <-ch
		require.NotNil(t, got.Note)
		assert.Equal(t, want, *got.Note)
	}
}

func TestBrokerScopesByOrder(t *testing.T) {
	broker := NewBroker(8)
	mine := uuid.New()
	theirs := uuid.New()

	ch, unsubscribe := broker.Subscribe(mine)
	defer unsubscribe()

	broker.Publish(Event{OrderID: theirs})
	broker.Publish(Event{OrderID: mine})

	got := <-ch
	assert.Equal(t, mine, got.OrderID)
	assert.Empty(t, ch)
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	broker := NewBroker(8)
	orderID := uuid.New()

	ch, unsubscribe := broker.Subscribe(orderID)
	assert.Equal(t, 1, broker.SubscriberCount(orderID))

	unsubscribe()
	assert.Equal(t, 0, broker.SubscriberCount(orderID))

	_, open := <-ch
	assert.False(t, open)

	// double unsubscribe is safe
	unsubscribe()

	// publishing after unsubscribe must not panic
	broker.Publish(Event{OrderID: orderID})
}

func TestBrokerDropsWhenSubscriberLagging(t *testing.T) {
	broker := NewBroker(2)
	orderID := uuid.New()

	ch, unsubscribe := broker.Subscribe(orderID)
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		broker.Publish(Event{OrderID: orderID})
	}

	// buffer holds two; the rest were dropped instead of blocking
	assert.Len(t, ch, 2)
}

func TestBrokerFanOut(t *testing.T) {
	broker := NewBroker(8)
	orderID := uuid.New()

	first, stopFirst := broker.Subscribe(orderID)
	defer stopFirst()
	second, stopSecond := broker.Subscribe(orderID)
	defer stopSecond()

	broker.Publish(Event{OrderID: orderID})

	assert.Equal(t, orderID, (<-first).OrderID)
	assert.Equal(t, orderID, (<-second).OrderID)
}
