// file: internal/models/badge.go
package models

import "time"

// Badge categories. Badges are grouped with the raw activity type that
// feeds their progress; new badges within a category are added as rows,
// not code.
const (
	BadgeCategorySavings  = "savings"
	BadgeCategoryExpenses = "expenses"
	BadgeCategoryTasks    = "tasks"
	BadgeCategoryGoals    = "goals"
	BadgeCategoryActivity = "activity"
)

// BadgeCategories lists every known category, for validation and display.
var BadgeCategories = []string{
	BadgeCategorySavings,
	BadgeCategoryExpenses,
	BadgeCategoryTasks,
	BadgeCategoryGoals,
	BadgeCategoryActivity,
}

// Badge represents an achievement badge definition. Rows are seeded by
// migrations/administration and are read-only from the engine's side.
type Badge struct {
	ID            int64     `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   string    `json:"description" db:"description"`
	Icon          string    `json:"icon" db:"icon"` // symbolic key resolved by the UI
	Category      string    `json:"category" db:"category"`
	RequiredCount int       `json:"required_count" db:"required_count"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// UserBadge represents one user's progress toward one badge. At most one
// row exists per (user_id, badge_id). Progress only ever grows, and
// Completed is a one-way latch: once true it never flips back, and
// EarnedAt is set exactly once at the transition.
type UserBadge struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	BadgeID   int64      `json:"badge_id" db:"badge_id"`
	Progress  int        `json:"progress" db:"progress"`
	Completed bool       `json:"completed" db:"completed"`
	EarnedAt  *time.Time `json:"earned_at,omitempty" db:"earned_at"`
}

// BadgeWithProgress is the display-ready join of a badge definition with
// a user's progress row. Missing progress defaults to zero, never an error.
type BadgeWithProgress struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Icon            string `json:"icon"`
	Category        string `json:"category"`
	RequiredCount   int    `json:"required_count"`
	Progress        int    `json:"progress"`
	Completed       bool   `json:"completed"`
	ProgressPercent int    `json:"progress_percent"`
}

// BadgeBonusAward records that the all-complete bonus was granted for a
// collection snapshot, so re-running a resync over the same completed
// collection cannot double-grant it.
type BadgeBonusAward struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	Category       string    `json:"category" db:"category"`
	CollectionSize int       `json:"collection_size" db:"collection_size"`
	GrantedAt      time.Time `json:"granted_at" db:"granted_at"`
}

// ValidBadgeCategory reports whether category is one of the known groups.
func ValidBadgeCategory(category string) bool {
	for _, c := range BadgeCategories {
		if c == category {
			return true
		}
	}
	return false
}
