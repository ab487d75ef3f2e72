// file: internal/models/models.go
package models

import (
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// User represents an allowance account holder. Authentication and
// authorization are enforced upstream; this service only needs identity.
type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username" validate:"required,min=2,max=50"`
	DisplayName string    `json:"display_name" db:"display_name" validate:"omitempty,max=100"`
	AvatarColor *string   `json:"avatar_color,omitempty" db:"avatar_color"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// Computed fields (not in DB)
	BadgeCount     int `json:"badge_count,omitempty" db:"-"`
	CompletedTasks int `json:"completed_tasks,omitempty" db:"-"`
}

// Task represents a one-off or recurring chore
type Task struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id" validate:"required"`
	Title      string    `json:"title" db:"title" validate:"required,min=1,max=255"`
	Status     string    `json:"status" db:"status" validate:"oneof=todo completed"`
	Recurrence string    `json:"recurrence" db:"recurrence" validate:"oneof=one-time daily weekly"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Completed reports whether the task has been marked done.
func (t *Task) Completed() bool {
	return t.Status == TaskStatusCompleted
}

// Task status values
const (
	TaskStatusTodo      = "todo"
	TaskStatusCompleted = "completed"
)

// Goal represents a savings goal with a target amount
type Goal struct {
	ID            int64      `json:"id" db:"id"`
	UserID        int64      `json:"user_id" db:"user_id" validate:"required"`
	Name          string     `json:"name" db:"name" validate:"required,min=1,max=255"`
	TargetAmount  int64      `json:"target_amount" db:"target_amount" validate:"required,gt=0"`
	CurrentAmount int64      `json:"current_amount" db:"current_amount" validate:"min=0"`
	Completed     bool       `json:"completed" db:"completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// Transaction represents a single income or expense record
type Transaction struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id" validate:"required"`
	Description string    `json:"description" db:"description" validate:"required,min=1,max=255"`
	Amount      int64     `json:"amount" db:"amount" validate:"required,gt=0"`
	Type        string    `json:"type" db:"type" validate:"required,oneof=income expense"`
	Category    string    `json:"category" db:"category" validate:"omitempty,max=100"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Transaction types
const (
	TransactionTypeIncome  = "income"
	TransactionTypeExpense = "expense"
)

// ===============================
// PAGINATION
// ===============================

// PaginationParams holds pagination parameters for list queries
type PaginationParams struct {
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
	Sort   string `json:"sort"`
	Order  string `json:"order"`
}

// PaginatedResponse wraps a page of results with metadata
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	HasMore    bool  `json:"has_more"`
	TotalPages int   `json:"total_pages"`
}
