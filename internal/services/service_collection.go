// file: internal/services/service_collection.go
package services

import (
	"allowancehub/internal/cache"
	"allowancehub/internal/config"
	"allowancehub/internal/database"
	"allowancehub/internal/events"
	"allowancehub/internal/repositories"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ServiceCollection holds all services with their shared infrastructure,
// injected explicitly instead of living on ambient globals.
type ServiceCollection struct {
	// Core services
	UserService        UserService
	TaskService        TaskService
	GoalService        GoalService
	TransactionService TransactionService
	BadgeService       BadgeService

	// Infrastructure
	Repositories *repositories.Collection
	Cache        cache.Cache
	EventBus     events.EventBus
	Logger       *zap.Logger
	Config       *config.Config
	DBManager    *database.Manager
}

// NewServiceCollection wires repositories, infrastructure and services
func NewServiceCollection(dbManager *database.Manager, cfg *config.Config, logger *zap.Logger) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	repos, err := repositories.NewCollection(dbManager, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create repositories: %w", err)
	}

	appCache, err := cache.New(&cache.Config{
		Provider: cfg.Cache.Provider,
		TTL:      cfg.Cache.TTL,
		RedisURL: cfg.Cache.RedisURL,
		RedisDB:  cfg.Cache.RedisDB,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	eventBus := events.NewInMemoryEventBus(logger)

	badgeService := NewBadgeService(
		repos.Badge,
		appCache,
		eventBus,
		logger,
		cfg.Badges.CatalogCacheTTL,
		cfg.Badges.BonusCategory,
	)

	sc := &ServiceCollection{
		UserService:        NewUserService(repos.User, logger),
		TaskService:        NewTaskService(repos.Task, badgeService, logger),
		GoalService:        NewGoalService(repos.Goal, badgeService, logger),
		TransactionService: NewTransactionService(repos.Transaction, badgeService, logger),
		BadgeService:       badgeService,

		Repositories: repos,
		Cache:        appCache,
		EventBus:     eventBus,
		Logger:       logger,
		Config:       cfg,
		DBManager:    dbManager,
	}

	logger.Info("Service collection initialized")

	return sc, nil
}

// Shutdown releases infrastructure resources in dependency order
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := sc.EventBus.Stop(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to stop event bus: %w", err)
	}

	if err := sc.Cache.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close cache: %w", err)
	}

	if err := sc.DBManager.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close database: %w", err)
	}

	sc.Logger.Info("Service collection shut down")

	return firstErr
}

// Health verifies the collection's critical dependencies
func (sc *ServiceCollection) Health(ctx context.Context) error {
	if status := sc.DBManager.Health(ctx); !status.Healthy {
		return fmt.Errorf("database unhealthy: %s", status.ErrorMessage)
	}
	if err := sc.Cache.Health(ctx); err != nil {
		return fmt.Errorf("cache unhealthy: %w", err)
	}
	return nil
}
