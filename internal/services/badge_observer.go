// file: internal/services/badge_observer.go
package services

import (
	"allowancehub/internal/events"
	"allowancehub/internal/models"
	"context"
	"sync"

	"go.uber.org/zap"
)

// CompletionObserver detects badges that transition from incomplete to
// complete between two successive snapshots of a user's badge view.
//
// The first snapshot only seeds the baseline and never emits events, so
// a page load showing badges earned in an earlier session does not
// re-celebrate them. A badge that appears in the current snapshot with
// no counterpart in the previous one is not a transition either; only an
// observed false-to-true flip counts, exactly once per observer.
type CompletionObserver struct {
	mu          sync.Mutex
	previous    map[int64]*models.BadgeWithProgress
	initialized bool

	userID int64
	bus    events.EventBus
	logger *zap.Logger
}

// NewCompletionObserver creates an observer for one user's badge stream
func NewCompletionObserver(userID int64, bus events.EventBus, logger *zap.Logger) *CompletionObserver {
	return &CompletionObserver{
		userID: userID,
		bus:    bus,
		logger: logger,
	}
}

// Observe diffs the snapshot against the previous one, publishes a
// badge.earned event per new completion, and returns the newly completed
// badges. Feeding the same snapshot twice emits nothing the second time.
func (o *CompletionObserver) Observe(ctx context.Context, snapshot []*models.BadgeWithProgress) []*models.BadgeWithProgress {
	o.mu.Lock()
	defer o.mu.Unlock()

	current := make(map[int64]*models.BadgeWithProgress, len(snapshot))
	for _, badge := range snapshot {
		current[badge.ID] = badge
	}

	if !o.initialized {
		o.previous = current
		o.initialized = true
		return nil
	}

	var newlyCompleted []*models.BadgeWithProgress
	for _, badge := range snapshot {
		prev, seen := o.previous[badge.ID]
		if !seen {
			continue
		}
		if !prev.Completed && badge.Completed {
			newlyCompleted = append(newlyCompleted, badge)
		}
	}

	o.previous = current

	for _, badge := range newlyCompleted {
		o.logger.Info("Newly completed badge observed",
			zap.Int64("user_id", o.userID),
			zap.Int64("badge_id", badge.ID),
			zap.String("badge_name", badge.Name),
		)

		event := events.NewBadgeEarnedEvent(
			o.userID, badge.ID, badge.Name, badge.Icon, badge.Category, badge.RequiredCount,
		)
		if err := o.bus.PublishAsync(ctx, event); err != nil {
			o.logger.Warn("Failed to publish badge earned event",
				zap.Int64("badge_id", badge.ID),
				zap.Error(err),
			)
		}
	}

	return newlyCompleted
}

// Reset clears the baseline; the next snapshot seeds again
func (o *CompletionObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.previous = nil
	o.initialized = false
}
