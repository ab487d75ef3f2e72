package repositories

import (
	"allowancehub/internal/database"
	"allowancehub/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// taskRepository implements TaskRepository
type taskRepository struct {
	*BaseRepository
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.Manager, logger *zap.Logger) TaskRepository {
	return &taskRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetByUserID retrieves all tasks for a user, newest first
func (r *taskRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Task, error) {
	query := `
		SELECT id, user_id, title, status, recurrence, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Status, &t.Recurrence, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}

	return tasks, rows.Err()
}

// GetByID retrieves a single task; nil without error when absent
func (r *taskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `
		SELECT id, user_id, title, status, recurrence, created_at, updated_at
		FROM tasks
		WHERE id = $1`

	var t models.Task
	err := r.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Status, &t.Recurrence, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// Create inserts a new task
func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, status, recurrence)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(
		ctx, query,
		task.UserID, task.Title, task.Status, task.Recurrence,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create task",
			zap.Error(err),
			zap.Int64("user_id", task.UserID),
		)
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// UpdateStatus flips a task between todo and completed
func (r *taskRepository) UpdateStatus(ctx context.Context, id int64, status string) (*models.Task, error) {
	query := `
		UPDATE tasks
		SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING id, user_id, title, status, recurrence, created_at, updated_at`

	var t models.Task
	err := r.QueryRowContext(ctx, query, id, status).Scan(
		&t.ID, &t.UserID, &t.Title, &t.Status, &t.Recurrence, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return &t, nil
}

// Delete removes a task owned by the user
func (r *taskRepository) Delete(ctx context.Context, id, userID int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("task %d not found", id)
	}

	return nil
}

// CountCompleted counts completed tasks; the authoritative figure the
// badge resync derives progress from.
func (r *taskRepository) CountCompleted(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND status = $2`,
		userID, models.TaskStatusCompleted,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	return count, nil
}
