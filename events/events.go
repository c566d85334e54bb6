package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeLayoutSaved     EventType = "layout_saved"
	EventTypeLayoutApplied   EventType = "layout_applied"
	EventTypeSettingsUpdated EventType = "settings_updated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// LayoutSavedEvent is emitted after a new layout version is committed
type LayoutSavedEvent struct {
	GuildID string
	Version int
}

func (e LayoutSavedEvent) Type() EventType {
	return EventTypeLayoutSaved
}

// LayoutAppliedEvent is emitted after an apply pass finishes
type LayoutAppliedEvent struct {
	GuildID  string
	Version  int
	Created  int
	Existing int
	Failed   int
}

func (e LayoutAppliedEvent) Type() EventType {
	return EventTypeLayoutApplied
}

// SettingsUpdatedEvent is emitted after a guild settings upsert commits
type SettingsUpdatedEvent struct {
	GuildID string
}

func (e SettingsUpdatedEvent) Type() EventType {
	return EventTypeSettingsUpdated
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

	// Call handlers asynchronously to avoid blocking
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

// A transactional event bus for holding pending events coupled to the Unit
// of Work. Flushes to the underlying event bus after commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// called after successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Use a background context so event handlers outlive the request that
	// opened the transaction
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// called after db rollback or to clear state
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
