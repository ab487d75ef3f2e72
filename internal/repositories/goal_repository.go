package repositories

import (
	"allowancehub/internal/database"
	"allowancehub/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// goalRepository implements GoalRepository
type goalRepository struct {
	*BaseRepository
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *database.Manager, logger *zap.Logger) GoalRepository {
	return &goalRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetByUserID retrieves all savings goals for a user
func (r *goalRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Goal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, completed, completed_at, created_at
		FROM goals
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Completed, &g.CompletedAt, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, &g)
	}

	return goals, rows.Err()
}

// GetByID retrieves a single goal; nil without error when absent
func (r *goalRepository) GetByID(ctx context.Context, id int64) (*models.Goal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, completed, completed_at, created_at
		FROM goals
		WHERE id = $1`

	var g models.Goal
	err := r.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.Completed, &g.CompletedAt, &g.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	return &g, nil
}

// Create inserts a new goal
func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	query := `
		INSERT INTO goals (user_id, name, target_amount, current_amount, completed)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		goal.UserID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Completed,
	).Scan(&goal.ID, &goal.CreatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create goal",
			zap.Error(err),
			zap.Int64("user_id", goal.UserID),
		)
		return fmt.Errorf("failed to create goal: %w", err)
	}

	return nil
}

// Update persists goal changes (deposits and completion state)
func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	query := `
		UPDATE goals
		SET name = $2, target_amount = $3, current_amount = $4, completed = $5, completed_at = $6
		WHERE id = $1`

	result, err := r.ExecContext(
		ctx, query,
		goal.ID, goal.Name, goal.TargetAmount, goal.CurrentAmount, goal.Completed, goal.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("goal %d not found", goal.ID)
	}

	return nil
}

// Delete removes a goal owned by the user
func (r *goalRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("goal %d not found", id)
	}

	return nil
}

// CountCompleted counts completed goals for badge resync
func (r *goalRepository) CountCompleted(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM goals WHERE user_id = $1 AND completed = true`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed goals: %w", err)
	}

	return count, nil
}
