// file: internal/services/types.go
package services

import (
	"allowancehub/internal/models"
)

// ===============================
// BADGE ENGINE TYPES
// ===============================

// Reconciliation outcomes for a single badge
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeError   = "error"
)

// BadgeReconciliation describes what happened to one badge during an
// ApplyProgress call.
type BadgeReconciliation struct {
	BadgeID          int64  `json:"badge_id"`
	BadgeName        string `json:"badge_name"`
	Outcome          string `json:"outcome"`
	PreviousProgress int    `json:"previous_progress,omitempty"`
	Progress         int    `json:"progress"`
	Completed        bool   `json:"completed"`
	NewlyCompleted   bool   `json:"newly_completed"`
	Error            string `json:"error,omitempty"`
}

// ReconciliationResult is the overall outcome of one ApplyProgress call.
// The call as a whole succeeds even when individual badges fail; broken
// badge rows must not block progress on their siblings.
type ReconciliationResult struct {
	UserID    int64                 `json:"user_id"`
	Category  string                `json:"category"`
	Increment int                   `json:"increment"`
	Message   string                `json:"message,omitempty"`
	Badges    []BadgeReconciliation `json:"badges"`
}

// NewlyCompleted returns the reconciliations that crossed the completion
// threshold during this call.
func (r *ReconciliationResult) NewlyCompleted() []BadgeReconciliation {
	var out []BadgeReconciliation
	for _, b := range r.Badges {
		if b.NewlyCompleted {
			out = append(out, b)
		}
	}
	return out
}

// ErrorCount returns how many badges failed to reconcile
func (r *ReconciliationResult) ErrorCount() int {
	n := 0
	for _, b := range r.Badges {
		if b.Outcome == OutcomeError {
			n++
		}
	}
	return n
}

// ===============================
// REQUEST TYPES
// ===============================

// ApplyProgressRequest is the API-facing form of an increment
type ApplyProgressRequest struct {
	Category  string `json:"category" validate:"required"`
	Increment int    `json:"increment" validate:"omitempty,gt=0"`
}

// CreateTaskRequest holds data for creating a task
type CreateTaskRequest struct {
	UserID     int64  `json:"user_id" validate:"required"`
	Title      string `json:"title" validate:"required,min=1,max=255"`
	Recurrence string `json:"recurrence" validate:"omitempty,oneof=one-time daily weekly"`
}

// ToggleTaskRequest flips a task's completion state
type ToggleTaskRequest struct {
	UserID    int64 `json:"user_id" validate:"required"`
	TaskID    int64 `json:"task_id" validate:"required"`
	Completed bool  `json:"completed"`
}

// CreateGoalRequest holds data for creating a savings goal
type CreateGoalRequest struct {
	UserID       int64  `json:"user_id" validate:"required"`
	Name         string `json:"name" validate:"required,min=1,max=255"`
	TargetAmount int64  `json:"target_amount" validate:"required,gt=0"`
}

// AddFundsRequest deposits into a savings goal
type AddFundsRequest struct {
	UserID int64 `json:"user_id" validate:"required"`
	GoalID int64 `json:"goal_id" validate:"required"`
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// CreateTransactionRequest holds data for recording income or expense
type CreateTransactionRequest struct {
	UserID      int64  `json:"user_id" validate:"required"`
	Description string `json:"description" validate:"required,min=1,max=255"`
	Amount      int64  `json:"amount" validate:"required,gt=0"`
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Category    string `json:"category" validate:"omitempty,max=100"`
}

// CreateUserRequest holds data for creating a user profile
type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=2,max=50"`
	DisplayName string  `json:"display_name" validate:"omitempty,max=100"`
	AvatarColor *string `json:"avatar_color,omitempty"`
}

// ===============================
// RESPONSE TYPES
// ===============================

// TaskListResponse bundles a task list with its completion stats
type TaskListResponse struct {
	Tasks          []*models.Task `json:"tasks"`
	CompletedCount int            `json:"completed_count"`
	TotalCount     int            `json:"total_count"`
	AllCompleted   bool           `json:"all_completed"`
}

// BadgeSummary aggregates a user's badge state for the badges page header
type BadgeSummary struct {
	Badges            []*models.BadgeWithProgress `json:"badges"`
	CompletedCount    int                         `json:"completed_count"`
	TotalCount        int                         `json:"total_count"`
	CompletionPercent int                         `json:"completion_percent"`
}
