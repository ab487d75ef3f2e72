// file: internal/services/interface.go
package services

import (
	"allowancehub/internal/models"
	"context"
)

// BadgeService is the badge-progress reconciliation engine. It owns all
// writes to user badge progress; everything else reads through it.
type BadgeService interface {
	// ApplyProgress applies increment to every badge in category for the
	// user, creating progress rows on first contact. Individual badge
	// failures are reported inside the result, not as a returned error.
	ApplyProgress(ctx context.Context, userID int64, category string, increment int) (*ReconciliationResult, error)

	// ResyncFromActivity feeds an authoritative completed-action count
	// back through ApplyProgress to correct drift, and grants the
	// all-complete bonus at most once per collection snapshot.
	ResyncFromActivity(ctx context.Context, userID int64, category string, completedCount, totalCount int) error

	// GrantCompletionBonus awards the all-complete bonus for a fully
	// completed collection, at most once per (user, category, size)
	// snapshot. Returns whether the bonus was granted by this call.
	GrantCompletionBonus(ctx context.Context, userID int64, category string, collectionSize int) (bool, error)

	// GetUserBadges joins the catalog with the user's progress rows into
	// display-ready view models.
	GetUserBadges(ctx context.Context, userID int64) (*BadgeSummary, error)

	// GetCatalog returns all badge definitions (cached)
	GetCatalog(ctx context.Context) ([]*models.Badge, error)

	// ResetProgress wipes a user's badge progress. Debug utility.
	ResetProgress(ctx context.Context, userID int64) error
}

// TaskService manages tasks and drives badge reconciliation on completion
type TaskService interface {
	ListTasks(ctx context.Context, userID int64) (*TaskListResponse, error)
	CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error)
	ToggleTask(ctx context.Context, req *ToggleTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, userID, taskID int64) error
}

// GoalService manages savings goals and drives badge reconciliation on
// deposits and goal completion
type GoalService interface {
	ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error)
	CreateGoal(ctx context.Context, req *CreateGoalRequest) (*models.Goal, error)
	AddFunds(ctx context.Context, req *AddFundsRequest) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID int64) error
}

// TransactionService manages income/expense records
type TransactionService interface {
	ListTransactions(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[*models.Transaction], error)
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID int64) error
}

// UserService manages user profiles
type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error)
}
