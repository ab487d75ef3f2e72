package repositories

import (
	"allowancehub/internal/database"
	"fmt"

	"go.uber.org/zap"
)

// Collection holds all repository instances for dependency injection
type Collection struct {
	User        UserRepository
	Task        TaskRepository
	Goal        GoalRepository
	Transaction TransactionRepository
	Badge       BadgeRepository

	// Database and logger for custom operations
	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates a new repository collection with all dependencies
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	collection := &Collection{
		db:     db,
		logger: logger,
	}

	collection.User = NewUserRepository(db, logger)
	collection.Task = NewTaskRepository(db, logger)
	collection.Goal = NewGoalRepository(db, logger)
	collection.Transaction = NewTransactionRepository(db, logger)
	collection.Badge = NewBadgeRepository(db, logger)

	logger.Info("Repository collection initialized")

	return collection, nil
}

// DB returns the underlying database manager
func (c *Collection) DB() *database.Manager {
	return c.db
}
