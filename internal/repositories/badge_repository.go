package repositories

import (
	"allowancehub/internal/database"
	"allowancehub/internal/models"
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// badgeRepository implements BadgeRepository over the badges,
// user_badges and badge_bonus_awards tables.
type badgeRepository struct {
	*BaseRepository
}

// NewBadgeRepository creates a new badge repository
func NewBadgeRepository(db *database.Manager, logger *zap.Logger) BadgeRepository {
	return &badgeRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// ===============================
// CATALOG (READ-ONLY)
// ===============================

// GetAllBadges retrieves every badge definition
func (r *badgeRepository) GetAllBadges(ctx context.Context) ([]*models.Badge, error) {
	query := `
		SELECT id, name, description, icon, category, required_count, created_at
		FROM badges
		ORDER BY category, required_count`

	rows, err := r.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

// GetBadgesByCategory retrieves badge definitions for one category
func (r *badgeRepository) GetBadgesByCategory(ctx context.Context, category string) ([]*models.Badge, error) {
	query := `
		SELECT id, name, description, icon, category, required_count, created_at
		FROM badges
		WHERE category = $1
		ORDER BY required_count`

	rows, err := r.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to get badges by category: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

// ===============================
// USER PROGRESS
// ===============================

// GetUserBadge retrieves the single progress row for (user, badge).
// Returns nil without error when no row exists yet.
func (r *badgeRepository) GetUserBadge(ctx context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	query := `
		SELECT id, user_id, badge_id, progress, completed, earned_at
		FROM user_badges
		WHERE user_id = $1 AND badge_id = $2`

	var ub models.UserBadge
	err := r.QueryRowContext(ctx, query, userID, badgeID).Scan(
		&ub.ID, &ub.UserID, &ub.BadgeID, &ub.Progress, &ub.Completed, &ub.EarnedAt,
	)

	if err != nil {
		if r.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user badge: %w", err)
	}

	return &ub, nil
}

// GetUserBadges retrieves all progress rows for a user
func (r *badgeRepository) GetUserBadges(ctx context.Context, userID int64) ([]*models.UserBadge, error) {
	query := `
		SELECT id, user_id, badge_id, progress, completed, earned_at
		FROM user_badges
		WHERE user_id = $1`

	rows, err := r.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user badges: %w", err)
	}
	defer rows.Close()

	var userBadges []*models.UserBadge
	for rows.Next() {
		var ub models.UserBadge
		if err := rows.Scan(&ub.ID, &ub.UserID, &ub.BadgeID, &ub.Progress, &ub.Completed, &ub.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user badge: %w", err)
		}
		userBadges = append(userBadges, &ub)
	}

	return userBadges, rows.Err()
}

// CreateUserBadge inserts the first progress row for a (user, badge)
// pair. The unique constraint on (user_id, badge_id) enforces at most
// one row per pair.
func (r *badgeRepository) CreateUserBadge(ctx context.Context, userBadge *models.UserBadge) error {
	query := `
		INSERT INTO user_badges (user_id, badge_id, progress, completed, earned_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.QueryRowContext(
		ctx, query,
		userBadge.UserID, userBadge.BadgeID, userBadge.Progress,
		userBadge.Completed, userBadge.EarnedAt,
	).Scan(&userBadge.ID)

	if err != nil {
		r.GetLogger().Error("Failed to create user badge",
			zap.Error(err),
			zap.Int64("user_id", userBadge.UserID),
			zap.Int64("badge_id", userBadge.BadgeID),
		)
		return fmt.Errorf("failed to create user badge: %w", err)
	}

	return nil
}

// UpdateUserBadge persists a modified progress row
func (r *badgeRepository) UpdateUserBadge(ctx context.Context, userBadge *models.UserBadge) error {
	query := `
		UPDATE user_badges
		SET progress = $2, completed = $3, earned_at = $4
		WHERE id = $1`

	result, err := r.ExecContext(
		ctx, query,
		userBadge.ID, userBadge.Progress, userBadge.Completed, userBadge.EarnedAt,
	)
	if err != nil {
		r.GetLogger().Error("Failed to update user badge",
			zap.Error(err),
			zap.Int64("user_badge_id", userBadge.ID),
		)
		return fmt.Errorf("failed to update user badge: %w", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("user badge %d not found", userBadge.ID)
	}

	return nil
}

// TryRecordBonusAward inserts the all-complete bonus marker. A unique
// violation means the bonus for this collection snapshot was granted
// before, which is reported as (false, nil).
func (r *badgeRepository) TryRecordBonusAward(ctx context.Context, userID int64, category string, collectionSize int) (bool, error) {
	query := `
		INSERT INTO badge_bonus_awards (user_id, category, collection_size)
		VALUES ($1, $2, $3)`

	_, err := r.ExecContext(ctx, query, userID, category, collectionSize)
	if err != nil {
		if r.IsUniqueViolation(err) {
			r.GetLogger().Debug("Bonus already awarded for this collection snapshot",
				zap.Int64("user_id", userID),
				zap.String("category", category),
				zap.Int("collection_size", collectionSize),
			)
			return false, nil
		}
		return false, fmt.Errorf("failed to record bonus award: %w", err)
	}

	return true, nil
}

// ResetUserBadges removes all badge progress for a user (debug utility)
func (r *badgeRepository) ResetUserBadges(ctx context.Context, userID int64) error {
	if _, err := r.ExecContext(ctx, `DELETE FROM badge_bonus_awards WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to reset bonus awards: %w", err)
	}

	result, err := r.ExecContext(ctx, `DELETE FROM user_badges WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset user badges: %w", err)
	}

	affected, _ := result.RowsAffected()
	r.GetLogger().Info("User badge progress reset",
		zap.Int64("user_id", userID),
		zap.Int64("rows_deleted", affected),
	)

	return nil
}

// scanBadges reads badge definition rows
func scanBadges(rows *sql.Rows) ([]*models.Badge, error) {
	var badges []*models.Badge
	for rows.Next() {
		var b models.Badge
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.Icon, &b.Category, &b.RequiredCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, &b)
	}
	return badges, rows.Err()
}
