package repositories

import (
	"allowancehub/internal/database"
	"allowancehub/internal/models"
	"context"
	"fmt"

	"go.uber.org/zap"
)

// userRepository implements UserRepository
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// GetAll retrieves every user, for the profile selector
func (r *userRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, username, display_name, avatar_color, created_at
		FROM users
		ORDER BY username`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarColor, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

// GetByID retrieves a single user; nil without error when absent
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, display_name, avatar_color, created_at
		FROM users
		WHERE id = $1`

	var u models.User
	err := r.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.AvatarColor, &u.CreatedAt,
	)
	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &u, nil
}

// Create inserts a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, display_name, avatar_color)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.QueryRowContext(
		ctx, query,
		user.Username, user.DisplayName, user.AvatarColor,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		r.GetLogger().Error("Failed to create user",
			zap.Error(err),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}
