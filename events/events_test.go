package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"pointsbot/models"

	"github.com/stretchr/testify/assert"
)

func TestEventDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan BalanceChangeEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		if balanceEvent, ok := event.(BalanceChangeEvent); ok {
			select {
			case eventReceived <- balanceEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected BalanceChangeEvent, got %T", event)
		}
	})

	testEvent := BalanceChangeEvent{
		UserID:          123456,
		OldBalance:      10,
		NewBalance:      17,
		ChangeAmount:    7,
		TransactionType: models.TransactionTypeCheckin,
	}

	// Publish then flush, simulating a successful commit
	transactionalBus.Publish(testEvent)
	transactionalBus.Flush(context.Background())

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent, receivedEvent)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventsReceived := make(chan CheckinEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	mainBus.Subscribe(EventTypeCheckin, func(ctx context.Context, event Event) {
		defer wg.Done()
		if checkinEvent, ok := event.(CheckinEvent); ok {
			eventsReceived <- checkinEvent
		}
	})

	published := []CheckinEvent{
		{UserID: 1, PointsEarned: 5},
		{UserID: 2, PointsEarned: 7},
		{UserID: 3, PointsEarned: 10},
	}

	for _, event := range published {
		transactionalBus.Publish(event)
	}
	transactionalBus.Flush(context.Background())

	wg.Wait()

	// Handlers run concurrently, so collect without assuming order
	userIDs := make(map[int64]bool)
	for i := 0; i < 3; i++ {
		select {
		case event := <-eventsReceived:
			userIDs[event.UserID] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("Only received %d out of 3 events", len(userIDs))
		}
	}

	assert.True(t, userIDs[1])
	assert.True(t, userIDs[2])
	assert.True(t, userIDs[3])
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan bool, 1)

	mainBus.Subscribe(EventTypePointsExpired, func(ctx context.Context, event Event) {
		eventReceived <- true
	})

	transactionalBus.Publish(PointsExpiredEvent{UserID: 123456, PointsExpired: 10})

	// Discard instead of flush, simulating a rollback
	transactionalBus.Discard()

	select {
	case <-eventReceived:
		t.Fatal("Event was received despite being discarded")
	case <-time.After(100 * time.Millisecond):
	}
}
