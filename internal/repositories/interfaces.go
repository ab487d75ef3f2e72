package repositories

import (
	"allowancehub/internal/models"
	"context"
)

// ===============================
// REPOSITORY INTERFACES
// ===============================

// BadgeRepository handles badge definitions and per-user progress rows
type BadgeRepository interface {
	// Catalog (read-only)
	GetAllBadges(ctx context.Context) ([]*models.Badge, error)
	GetBadgesByCategory(ctx context.Context, category string) ([]*models.Badge, error)

	// User progress
	GetUserBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error)
	GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error)
	CreateUserBadge(ctx context.Context, userBadge *models.UserBadge) error
	UpdateUserBadge(ctx context.Context, userBadge *models.UserBadge) error

	// TryRecordBonusAward inserts the bonus marker for (user, category,
	// collection size). It returns false without error when the marker
	// already exists, meaning the bonus was granted earlier.
	TryRecordBonusAward(ctx context.Context, userID int64, category string, collectionSize int) (bool, error)

	// ResetUserBadges removes all progress rows for a user. Debug/reset
	// utility only; never called by the reconciliation path.
	ResetUserBadges(ctx context.Context, userID int64) error
}

// TaskRepository handles task persistence
type TaskRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Task, error)
	Delete(ctx context.Context, id, userID int64) error
	CountCompleted(ctx context.Context, userID int64) (int, error)
}

// GoalRepository handles savings goal persistence
type GoalRepository interface {
	GetByUserID(ctx context.Context, userID int64) ([]*models.Goal, error)
	GetByID(ctx context.Context, id int64) (*models.Goal, error)
	Create(ctx context.Context, goal *models.Goal) error
	Update(ctx context.Context, goal *models.Goal) error
	Delete(ctx context.Context, id, userID int64) error
	CountCompleted(ctx context.Context, userID int64) (int, error)
}

// TransactionRepository handles income/expense records
type TransactionRepository interface {
	GetByUserID(ctx context.Context, userID int64, params models.PaginationParams) ([]*models.Transaction, error)
	GetByID(ctx context.Context, id int64) (*models.Transaction, error)
	Create(ctx context.Context, transaction *models.Transaction) error
	Delete(ctx context.Context, id, userID int64) error
	Count(ctx context.Context, userID int64) (int, error)
}

// UserRepository handles user accounts
type UserRepository interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}
