package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func countingHandler(id string, count *int, mu *sync.Mutex) EventHandler {
	return EventHandlerFunc{
		ID: id,
		Func: func(_ context.Context, _ Event) error {
			mu.Lock()
			*count++
			mu.Unlock()
			return nil
		},
	}
}

func TestPublishDeliversToSubscribedHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("h1", &delivered, &mu)))
	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("h2", &delivered, &mu)))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, 2, delivered)

	stats := bus.Stats()
	assert.Equal(t, int64(1), stats.Published)
	assert.Equal(t, int64(2), stats.Delivered)
	assert.Equal(t, 2, stats.Subscriptions)
}

func TestPublishIgnoresUnrelatedEventTypes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	require.NoError(t, bus.Subscribe(EventTypeAllTasksCompleted, countingHandler("h1", &delivered, &mu)))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, 0, delivered)
}

func TestPublishReportsHandlerErrorButKeepsDispatching(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	failing := EventHandlerFunc{
		ID: "failing",
		Func: func(_ context.Context, _ Event) error {
			return errors.New("handler broke")
		},
	}
	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, failing))
	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("healthy", &delivered, &mu)))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	err := bus.Publish(context.Background(), event)

	require.Error(t, err)
	assert.Equal(t, 1, delivered, "the failing handler must not block its siblings")
	assert.Equal(t, int64(1), bus.Stats().HandlerErrors)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("h1", &delivered, &mu)))
	require.NoError(t, bus.Unsubscribe(EventTypeBadgeEarned, "h1"))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	require.NoError(t, bus.Publish(context.Background(), event))

	assert.Equal(t, 0, delivered)
	assert.Error(t, bus.Unsubscribe(EventTypeBadgeEarned, "h1"), "removing an unknown handler is an error")
}

func TestPublishAsyncCompletesBeforeStopReturns(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("h1", &delivered, &mu)))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	require.NoError(t, bus.PublishAsync(context.Background(), event))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, delivered)
}

func TestStopToleratesConcurrentAsyncPublishes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	var mu sync.Mutex
	var delivered int

	require.NoError(t, bus.Subscribe(EventTypeBadgeEarned, countingHandler("h1", &delivered, &mu)))

	// Hammer PublishAsync from several goroutines while Stop runs. Every
	// accepted publish must be waited for; a publish losing the race gets
	// an error, never a waitgroup panic.
	var publishers sync.WaitGroup
	accepted := make([]int, 8)
	for i := 0; i < 8; i++ {
		publishers.Add(1)
		go func(slot int) {
			defer publishers.Done()
			for j := 0; j < 50; j++ {
				event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
				if err := bus.PublishAsync(context.Background(), event); err != nil {
					return
				}
				accepted[slot]++
			}
		}(i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	publishers.Wait()

	total := 0
	for _, n := range accepted {
		total += n
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, total, delivered, "every accepted publish was dispatched before Stop returned")
}

func TestStoppedBusRejectsPublishes(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Stop(context.Background()))

	event := NewBadgeEarnedEvent(7, 1, "First Chore", "broom", "tasks", 1)
	assert.Error(t, bus.Publish(context.Background(), event))
	assert.Error(t, bus.PublishAsync(context.Background(), event))
}
