package events

import (
	"context"
	"sync"

	"pointsbot/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeUserCreated   EventType = "user_created"
	EventTypeCheckin       EventType = "checkin_completed"
	EventTypePointsExpired EventType = "points_expired"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	ChangeAmount    int64
	TransactionType models.TransactionType
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a user seen for the first time
type UserCreatedEvent struct {
	UserID   int64
	Username string
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// CheckinEvent represents a completed daily check-in
type CheckinEvent struct {
	UserID       int64
	PointsEarned int64
}

func (e CheckinEvent) Type() EventType {
	return EventTypeCheckin
}

// PointsExpiredEvent represents stale credit swept from a user
type PointsExpiredEvent struct {
	UserID        int64
	PointsExpired int64
}

func (e PointsExpiredEvent) Type() EventType {
	return EventTypePointsExpired
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking the publisher
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and
// forwards them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits the pending events; called after a successful commit.
// Events outlive the transaction, so emission does not reuse the
// (possibly expired) transaction context.
func (b *TransactionalBus) Flush(ctx context.Context) {
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
