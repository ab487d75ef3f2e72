// file: internal/services/task_service.go
package services

import (
	"allowancehub/internal/models"
	"allowancehub/internal/repositories"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// taskService implements TaskService. Badge bookkeeping runs after the
// primary write and is never allowed to fail the user's action: a missed
// increment is corrected later by resync, a failed task write is not.
type taskService struct {
	repo   repositories.TaskRepository
	badges BadgeService
	logger *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(repo repositories.TaskRepository, badges BadgeService, logger *zap.Logger) TaskService {
	return &taskService{
		repo:   repo,
		badges: badges,
		logger: logger,
	}
}

// ListTasks returns the user's tasks and resyncs badge progress from the
// freshly loaded collection, correcting drift from lost increments.
func (s *taskService) ListTasks(ctx context.Context, userID int64) (*TaskListResponse, error) {
	if userID <= 0 {
		return nil, NewValidationError("user is required", nil)
	}

	tasks, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	completed := 0
	for _, t := range tasks {
		if t.Completed() {
			completed++
		}
	}

	resp := &TaskListResponse{
		Tasks:          tasks,
		CompletedCount: completed,
		TotalCount:     len(tasks),
		AllCompleted:   len(tasks) > 0 && completed == len(tasks),
	}

	// The count query is the authoritative figure for resync; the loaded
	// rows can be stale against concurrent toggles.
	authoritative, err := s.repo.CountCompleted(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to count completed tasks, using loaded rows",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		authoritative = completed
	}
	if authoritative > len(tasks) {
		authoritative = len(tasks)
	}

	// Resync is best-effort; listing tasks must not fail on badge errors
	if err := s.badges.ResyncFromActivity(ctx, userID, models.BadgeCategoryTasks, authoritative, len(tasks)); err != nil {
		s.logger.Warn("Badge resync failed on task list",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return resp, nil
}

// CreateTask creates a new task in the todo state
func (s *taskService) CreateTask(ctx context.Context, req *CreateTaskRequest) (*models.Task, error) {
	if req.Title == "" {
		return nil, NewValidationError("title is required", nil)
	}

	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = "one-time"
	}

	task := &models.Task{
		UserID:     req.UserID,
		Title:      req.Title,
		Status:     models.TaskStatusTodo,
		Recurrence: recurrence,
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// ToggleTask flips a task's completion state. Completing a task counts
// toward the tasks and activity badge categories; un-completing never
// decrements anything.
func (s *taskService) ToggleTask(ctx context.Context, req *ToggleTaskRequest) (*models.Task, error) {
	existing, err := s.repo.GetByID(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if existing == nil {
		return nil, NewNotFoundError("task not found")
	}
	if existing.UserID != req.UserID {
		return nil, NewNotFoundError("task not found")
	}

	status := models.TaskStatusTodo
	if req.Completed {
		status = models.TaskStatusCompleted
	}

	task, err := s.repo.UpdateStatus(ctx, req.TaskID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if task == nil {
		return nil, NewNotFoundError("task not found")
	}

	if req.Completed {
		s.recordCompletion(ctx, req.UserID)
	}

	return task, nil
}

// recordCompletion runs badge bookkeeping for one task completion,
// including the all-complete bonus check. Errors are logged only.
func (s *taskService) recordCompletion(ctx context.Context, userID int64) {
	if _, err := s.badges.ApplyProgress(ctx, userID, models.BadgeCategoryTasks, 1); err != nil {
		s.logger.Warn("Badge update failed for task completion",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	if _, err := s.badges.ApplyProgress(ctx, userID, models.BadgeCategoryActivity, 1); err != nil {
		s.logger.Warn("Badge update failed for activity",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	// Check whether this completion finished the whole collection; the
	// resync path owns the once-per-snapshot bonus guard.
	tasks, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to reload tasks for bonus check",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return
	}

	completed := 0
	for _, t := range tasks {
		if t.Completed() {
			completed++
		}
	}

	if len(tasks) > 0 && completed == len(tasks) {
		if _, err := s.badges.GrantCompletionBonus(ctx, userID, models.BadgeCategoryTasks, len(tasks)); err != nil {
			s.logger.Warn("Badge bonus check failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}
}

// DeleteTask removes a task. Badge progress already earned from it is
// kept; progress never decreases.
func (s *taskService) DeleteTask(ctx context.Context, userID, taskID int64) error {
	if err := s.repo.Delete(ctx, taskID, userID); err != nil {
		return NewNotFoundError("task not found")
	}
	return nil
}
