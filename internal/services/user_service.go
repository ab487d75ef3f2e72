// file: internal/services/user_service.go
package services

import (
	"allowancehub/internal/models"
	"allowancehub/internal/repositories"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// userService implements UserService
type userService struct {
	repo   repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(repo repositories.UserRepository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ListUsers returns all user profiles for the selector screen
func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser returns one user profile
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	if userID <= 0 {
		return nil, NewValidationError("invalid user ID", nil)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, NewNotFoundError("user not found")
	}

	return user, nil
}

// CreateUser creates a new user profile
func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	if req.Username == "" {
		return nil, NewValidationError("username is required", nil)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &models.User{
		Username:    req.Username,
		DisplayName: displayName,
		AvatarColor: req.AvatarColor,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)

	return user, nil
}
