package events

import "time"

// Event types emitted by the badge engine
const (
	EventTypeBadgeEarned       = "badge.earned"
	EventTypeAllTasksCompleted = "tasks.all_completed"
)

// BadgeEarnedEvent is emitted when a badge's completed flag transitions
// from false to true for a user. Emitted once per transition by the
// completion observer, never by the reconciler itself.
type BadgeEarnedEvent struct {
	BaseEvent
	BadgeID       int64  `json:"badge_id"`
	BadgeName     string `json:"badge_name"`
	BadgeIcon     string `json:"badge_icon"`
	Category      string `json:"category"`
	RequiredCount int    `json:"required_count"`
}

// NewBadgeEarnedEvent creates a new badge earned event
func NewBadgeEarnedEvent(userID, badgeID int64, name, icon, category string, requiredCount int) *BadgeEarnedEvent {
	uid := userID
	return &BadgeEarnedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeBadgeEarned,
			Timestamp: time.Now(),
			UserID:    &uid,
		},
		BadgeID:       badgeID,
		BadgeName:     name,
		BadgeIcon:     icon,
		Category:      category,
		RequiredCount: requiredCount,
	}
}

// AllTasksCompletedEvent is emitted when a user's full task collection
// reaches 100% completion and the bonus is granted.
type AllTasksCompletedEvent struct {
	BaseEvent
	Category       string `json:"category"`
	CollectionSize int    `json:"collection_size"`
	BonusAwarded   int    `json:"bonus_awarded"`
}

// NewAllTasksCompletedEvent creates a new all-tasks-completed event
func NewAllTasksCompletedEvent(userID int64, category string, collectionSize, bonusAwarded int) *AllTasksCompletedEvent {
	uid := userID
	return &AllTasksCompletedEvent{
		BaseEvent: BaseEvent{
			EventID:   GenerateEventID(),
			EventType: EventTypeAllTasksCompleted,
			Timestamp: time.Now(),
			UserID:    &uid,
		},
		Category:       category,
		CollectionSize: collectionSize,
		BonusAwarded:   bonusAwarded,
	}
}
