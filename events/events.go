package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeDrawCompleted       EventType = "draw_completed"
	EventTypeDrawReset           EventType = "draw_reset"
	EventTypeAuthorizationFailed EventType = "authorization_failed"
	EventTypeRosterImported      EventType = "roster_imported"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DrawCompletedEvent is emitted once a draw result has been committed
type DrawCompletedEvent struct {
	ResultID       string    `json:"result_id"`
	WinnerIDs      []string  `json:"winner_ids"`
	RequestedCount int       `json:"requested_count"`
	RosterSize     int       `json:"roster_size"`
	CreatedAt      time.Time `json:"created_at"`
}

func (e DrawCompletedEvent) Type() EventType {
	return EventTypeDrawCompleted
}

// DrawResetEvent is emitted after the lock has been cleared for a new round
type DrawResetEvent struct {
	ResultID string    `json:"result_id,omitempty"`
	ResetAt  time.Time `json:"reset_at"`
}

func (e DrawResetEvent) Type() EventType {
	return EventTypeDrawReset
}

// AuthorizationFailedEvent records a rejected passcode. The attempted value is
// never carried.
type AuthorizationFailedEvent struct {
	Role string `json:"role"` // "operator" or "reset"
}

func (e AuthorizationFailedEvent) Type() EventType {
	return EventTypeAuthorizationFailed
}

// RosterImportedEvent is emitted after the stored roster has been replaced
type RosterImportedEvent struct {
	ParticipantCount int       `json:"participant_count"`
	Source           string    `json:"source"`
	ImportedAt       time.Time `json:"imported_at"`
}

func (e RosterImportedEvent) Type() EventType {
	return EventTypeRosterImported
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
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

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range []EventType{
		EventTypeDrawCompleted,
		EventTypeDrawReset,
		EventTypeAuthorizationFailed,
		EventTypeRosterImported,
	} {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to all registered handlers asynchronously
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
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

// Publish implements interfaces.EventPublisher
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events raised inside a unit of work and forwards
// them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus in front of real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of stashed events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits stashed events; called after a successful commit
func (b *TransactionalBus) Flush() {
	// Handlers outlive the transaction, so they get a fresh context
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops stashed events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
