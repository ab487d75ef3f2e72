package database

import (
	"allowancehub/internal/config"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// initMutex prevents concurrent initialization
var initMutex sync.Mutex

// InitDB creates the database manager, waits for the database to become
// healthy, and runs migrations. It returns the ready-to-use manager.
func InitDB(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	initMutex.Lock()
	defer initMutex.Unlock()

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	logger.Info("Starting database initialization",
		zap.String("environment", cfg.Server.Environment))

	manager, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := waitForHealth(manager, cfg.Server.Environment, logger); err != nil {
		manager.Close()
		return nil, fmt.Errorf("database did not become healthy: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	logger.Info("Using migrations path", zap.String("path", migrationsPath))

	if err := manager.Migrate(migrationsPath); err != nil {
		manager.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	logger.Info("Database initialization completed")

	return manager, nil
}

// waitForHealth pings the database with exponential backoff until it
// responds or the environment-specific deadline passes.
func waitForHealth(manager *Manager, environment string, logger *zap.Logger) error {
	timeout := 30 * time.Second
	if environment == "production" {
		timeout = 2 * time.Minute
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		status := manager.Health(ctx)
		if !status.Healthy {
			logger.Warn("Database not healthy yet",
				zap.Int("attempt", attempt),
				zap.String("error", status.ErrorMessage),
			)
			return fmt.Errorf("database unhealthy: %s", status.ErrorMessage)
		}
		return nil
	}

	return backoff.Retry(operation, policy)
}

// determineMigrationsPath resolves the migrations directory, falling back
// to common locations when the configured one does not exist.
func determineMigrationsPath(configured string) string {
	candidates := []string{configured, "migrations", "./migrations"}

	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "migrations"))
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}

	return "migrations"
}
