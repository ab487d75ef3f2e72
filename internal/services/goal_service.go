// file: internal/services/goal_service.go
package services

import (
	"allowancehub/internal/models"
	"allowancehub/internal/repositories"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// goalService implements GoalService
type goalService struct {
	repo   repositories.GoalRepository
	badges BadgeService
	logger *zap.Logger
}

// NewGoalService creates a new goal service
func NewGoalService(repo repositories.GoalRepository, badges BadgeService, logger *zap.Logger) GoalService {
	return &goalService{
		repo:   repo,
		badges: badges,
		logger: logger,
	}
}

// ListGoals returns the user's savings goals and resyncs the goals badge
// category from the loaded collection
func (s *goalService) ListGoals(ctx context.Context, userID int64) ([]*models.Goal, error) {
	if userID <= 0 {
		return nil, NewValidationError("user is required", nil)
	}

	goals, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	// The count query is the authoritative figure for resync; the loaded
	// rows can be stale against concurrent deposits.
	completed, err := s.repo.CountCompleted(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to count completed goals, using loaded rows",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		completed = 0
		for _, g := range goals {
			if g.Completed {
				completed++
			}
		}
	}
	if completed > len(goals) {
		completed = len(goals)
	}

	if err := s.badges.ResyncFromActivity(ctx, userID, models.BadgeCategoryGoals, completed, len(goals)); err != nil {
		s.logger.Warn("Badge resync failed on goal list",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	return goals, nil
}

// CreateGoal creates a new savings goal
func (s *goalService) CreateGoal(ctx context.Context, req *CreateGoalRequest) (*models.Goal, error) {
	if req.Name == "" {
		return nil, NewValidationError("name is required", nil)
	}
	if req.TargetAmount <= 0 {
		return nil, NewValidationError("target amount must be positive", nil)
	}

	goal := &models.Goal{
		UserID:       req.UserID,
		Name:         req.Name,
		TargetAmount: req.TargetAmount,
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

// AddFunds deposits into a goal. Every deposit counts toward the savings
// badge category; a deposit that completes the goal additionally counts
// toward goals and activity.
func (s *goalService) AddFunds(ctx context.Context, req *AddFundsRequest) (*models.Goal, error) {
	if req.Amount <= 0 {
		return nil, NewValidationError("amount must be positive", nil)
	}

	goal, err := s.repo.GetByID(ctx, req.GoalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	if goal == nil || goal.UserID != req.UserID {
		return nil, NewNotFoundError("goal not found")
	}
	if goal.Completed {
		return nil, NewBusinessError("goal is already completed", "GOAL_COMPLETED")
	}

	goal.CurrentAmount += req.Amount
	justCompleted := goal.CurrentAmount >= goal.TargetAmount
	if justCompleted {
		goal.Completed = true
		now := time.Now()
		goal.CompletedAt = &now
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	// Badge bookkeeping is non-blocking; the deposit already succeeded
	if _, err := s.badges.ApplyProgress(ctx, req.UserID, models.BadgeCategorySavings, 1); err != nil {
		s.logger.Warn("Badge update failed for savings deposit",
			zap.Int64("user_id", req.UserID),
			zap.Error(err),
		)
	}

	if justCompleted {
		if _, err := s.badges.ApplyProgress(ctx, req.UserID, models.BadgeCategoryGoals, 1); err != nil {
			s.logger.Warn("Badge update failed for goal completion",
				zap.Int64("user_id", req.UserID),
				zap.Error(err),
			)
		}
		if _, err := s.badges.ApplyProgress(ctx, req.UserID, models.BadgeCategoryActivity, 1); err != nil {
			s.logger.Warn("Badge update failed for activity",
				zap.Int64("user_id", req.UserID),
				zap.Error(err),
			)
		}
	}

	return goal, nil
}

// DeleteGoal removes a goal owned by the user
func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID int64) error {
	if err := s.repo.Delete(ctx, goalID, userID); err != nil {
		return NewNotFoundError("goal not found")
	}
	return nil
}
