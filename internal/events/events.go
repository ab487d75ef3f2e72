package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetUserID() *int64
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    *int64    `json:"user_id,omitempty"`
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// GetUserID returns the user ID associated with the event
func (e *BaseEvent) GetUserID() *int64 { return e.UserID }

// GenerateEventID returns a unique event identifier
func GenerateEventID() string {
	if id, err := uuid.NewV4(); err == nil {
		return id.String()
	}
	return fmt.Sprintf("evt-%d", time.Now().UnixNano())
}

// ===============================
// EVENT BUS
// ===============================

// EventHandler represents an event handler
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// EventHandlerFunc adapts a function to the EventHandler interface
type EventHandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

// Handle implements EventHandler
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error {
	return f.Func(ctx, event)
}

// GetHandlerID implements EventHandler
func (f EventHandlerFunc) GetHandlerID() string { return f.ID }

// EventBus defines event publishing and subscription
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	PublishAsync(ctx context.Context, event Event) error
	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handlerID string) error
	Stats() *EventBusStats
	Stop(ctx context.Context) error
}

// EventBusStats tracks bus activity
type EventBusStats struct {
	Published     int64     `json:"published"`
	Delivered     int64     `json:"delivered"`
	HandlerErrors int64     `json:"handler_errors"`
	Subscriptions int       `json:"subscriptions"`
	LastEventAt   time.Time `json:"last_event_at"`
}

// inMemoryEventBus is a process-local event bus. Handlers for the same
// event type run sequentially; async publishing runs the whole dispatch
// on a separate goroutine.
type inMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger

	statsMu sync.Mutex
	stats   EventBusStats

	wg      sync.WaitGroup
	stopped bool
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) EventBus {
	return &inMemoryEventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Publish delivers an event to all subscribed handlers synchronously
func (b *inMemoryEventBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is stopped")
	}
	handlers := append([]EventHandler(nil), b.handlers[event.GetEventType()]...)
	b.mu.RUnlock()

	b.recordPublish()

	var firstErr error
	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.recordError()
			b.logger.Error("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("event_id", event.GetEventID()),
				zap.String("handler_id", handler.GetHandlerID()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		b.recordDelivery()
	}

	return firstErr
}

// PublishAsync delivers an event on a background goroutine
func (b *inMemoryEventBus) PublishAsync(ctx context.Context, event Event) error {
	b.mu.RLock()
	if b.stopped {
		b.mu.RUnlock()
		return fmt.Errorf("event bus is stopped")
	}
	// The Add must land while the lock still excludes Stop; an Add after
	// Wait has begun is waitgroup misuse.
	b.wg.Add(1)
	b.mu.RUnlock()

	go func() {
		defer b.wg.Done()
		// Detach from the request context; the event outlives the request
		if err := b.Publish(context.Background(), event); err != nil {
			b.logger.Debug("Async event dispatch finished with handler errors",
				zap.String("event_type", event.GetEventType()),
			)
		}
	}()

	return nil
}

// Subscribe registers a handler for an event type
func (b *inMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type is required")
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	b.logger.Debug("Event handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler_id", handler.GetHandlerID()),
	)

	return nil
}

// Unsubscribe removes a handler by ID
func (b *inMemoryEventBus) Unsubscribe(eventType string, handlerID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.GetHandlerID() == handlerID {
			b.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("handler %s not subscribed to %s", handlerID, eventType)
}

// Stats returns a snapshot of bus statistics
func (b *inMemoryEventBus) Stats() *EventBusStats {
	b.statsMu.Lock()
	defer b.statsMu.Unlock()

	b.mu.RLock()
	subs := 0
	for _, hs := range b.handlers {
		subs += len(hs)
	}
	b.mu.RUnlock()

	snapshot := b.stats
	snapshot.Subscriptions = subs
	return &snapshot
}

// Stop waits for in-flight async dispatches and rejects new publishes
func (b *inMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *inMemoryEventBus) recordPublish() {
	b.statsMu.Lock()
	b.stats.Published++
	b.stats.LastEventAt = time.Now()
	b.statsMu.Unlock()
}

func (b *inMemoryEventBus) recordDelivery() {
	b.statsMu.Lock()
	b.stats.Delivered++
	b.statsMu.Unlock()
}

func (b *inMemoryEventBus) recordError() {
	b.statsMu.Lock()
	b.stats.HandlerErrors++
	b.statsMu.Unlock()
}
