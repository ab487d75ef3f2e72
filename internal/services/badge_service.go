// file: internal/services/badge_service.go
package services

import (
	"allowancehub/internal/cache"
	"allowancehub/internal/events"
	"allowancehub/internal/models"
	"allowancehub/internal/repositories"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const badgeCatalogCacheKey = "badges:catalog"

// badgeService implements BadgeService. It is the only writer of
// user_badges rows.
//
// Concurrency: two in-flight calls for the same (user, badge) pair race
// on read-modify-write and can lose one increment. The store offers no
// atomic counter, so the race is accepted; resync from authoritative
// activity counts bounds the drift.
type badgeService struct {
	repo            repositories.BadgeRepository
	cache           cache.Cache
	bus             events.EventBus
	logger          *zap.Logger
	catalogCacheTTL time.Duration
	bonusCategory   string
	now             func() time.Time
}

// NewBadgeService creates the badge reconciliation engine
func NewBadgeService(repo repositories.BadgeRepository, c cache.Cache, bus events.EventBus, logger *zap.Logger, catalogCacheTTL time.Duration, bonusCategory string) BadgeService {
	if catalogCacheTTL <= 0 {
		catalogCacheTTL = time.Minute
	}
	if bonusCategory == "" {
		bonusCategory = models.BadgeCategoryActivity
	}
	return &badgeService{
		repo:            repo,
		cache:           c,
		bus:             bus,
		logger:          logger,
		catalogCacheTTL: catalogCacheTTL,
		bonusCategory:   bonusCategory,
		now:             time.Now,
	}
}

// ===============================
// PROGRESS RECONCILER
// ===============================

// ApplyProgress applies increment to every badge definition in category
// for the user. Each badge is handled independently: a failure on one is
// recorded in its result entry and processing continues with the rest.
func (s *badgeService) ApplyProgress(ctx context.Context, userID int64, category string, increment int) (*ReconciliationResult, error) {
	if userID <= 0 {
		return nil, NewValidationError("user is required", nil)
	}
	if increment == 0 {
		increment = 1
	}
	if increment < 0 {
		return nil, NewValidationError("increment must be positive", nil)
	}

	badges, err := s.repo.GetBadgesByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	result := &ReconciliationResult{
		UserID:    userID,
		Category:  category,
		Increment: increment,
	}

	// No badges for the category is a normal no-op, e.g. before seeding
	if len(badges) == 0 {
		result.Message = fmt.Sprintf("no badges defined for category %q", category)
		s.logger.Debug("Badge progress skipped: empty catalog",
			zap.Int64("user_id", userID),
			zap.String("category", category),
		)
		return result, nil
	}

	for _, badge := range badges {
		result.Badges = append(result.Badges, s.reconcileBadge(ctx, userID, badge, increment))
	}

	if n := result.ErrorCount(); n > 0 {
		s.logger.Warn("Badge reconciliation finished with partial failures",
			zap.Int64("user_id", userID),
			zap.String("category", category),
			zap.Int("failed", n),
			zap.Int("total", len(result.Badges)),
		)
	}

	return result, nil
}

// reconcileBadge applies the increment to one badge. Progress only ever
// grows; completed is a one-way latch and earned_at is written exactly
// once, at the false-to-true transition.
func (s *badgeService) reconcileBadge(ctx context.Context, userID int64, badge *models.Badge, increment int) BadgeReconciliation {
	entry := BadgeReconciliation{
		BadgeID:   badge.ID,
		BadgeName: badge.Name,
	}

	userBadge, err := s.repo.GetUserBadge(ctx, userID, badge.ID)
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Error = err.Error()
		return entry
	}

	if userBadge == nil {
		// First contact with this badge: create the progress row
		progress := increment
		completed := progress >= badge.RequiredCount

		userBadge = &models.UserBadge{
			UserID:    userID,
			BadgeID:   badge.ID,
			Progress:  progress,
			Completed: completed,
		}
		if completed {
			now := s.now()
			userBadge.EarnedAt = &now
		}

		if err := s.repo.CreateUserBadge(ctx, userBadge); err != nil {
			entry.Outcome = OutcomeError
			entry.Error = err.Error()
			return entry
		}

		entry.Outcome = OutcomeCreated
		entry.Progress = progress
		entry.Completed = completed
		entry.NewlyCompleted = completed

		s.logger.Info("Badge progress created",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badge.ID),
			zap.Int("progress", progress),
			zap.Int("required", badge.RequiredCount),
			zap.Bool("completed", completed),
		)
		return entry
	}

	// Existing row: accumulate unconditionally, even past the threshold.
	// The raw counter keeps growing for stats; display caps the percent.
	previous := userBadge.Progress
	wasCompleted := userBadge.Completed
	userBadge.Progress = previous + increment

	nowCompleted := userBadge.Progress >= badge.RequiredCount
	// One-way latch: a lower recomputed threshold result never revokes
	userBadge.Completed = wasCompleted || nowCompleted

	newlyCompleted := !wasCompleted && nowCompleted
	if newlyCompleted && userBadge.EarnedAt == nil {
		now := s.now()
		userBadge.EarnedAt = &now
	}

	if err := s.repo.UpdateUserBadge(ctx, userBadge); err != nil {
		entry.Outcome = OutcomeError
		entry.Error = err.Error()
		return entry
	}

	entry.Outcome = OutcomeUpdated
	entry.PreviousProgress = previous
	entry.Progress = userBadge.Progress
	entry.Completed = userBadge.Completed
	entry.NewlyCompleted = newlyCompleted

	if newlyCompleted {
		s.logger.Info("Badge earned",
			zap.Int64("user_id", userID),
			zap.Int64("badge_id", badge.ID),
			zap.String("badge_name", badge.Name),
			zap.Int("progress", userBadge.Progress),
		)
	}

	return entry
}

// ===============================
// BULK RESYNC SCANNER
// ===============================

// ResyncFromActivity corrects badge drift from an authoritative scan of
// raw activity rows. The completed count is applied additively on top of
// stored progress, consistent with monotonic progress and the completion
// latch; it is never a hard reset.
//
// When the whole collection is complete, a one-time bonus equal to the
// collection size goes to the bonus category. The persisted award marker
// keyed by (user, category, collection size) keeps a re-render of the
// same completed snapshot from granting the bonus twice.
func (s *badgeService) ResyncFromActivity(ctx context.Context, userID int64, category string, completedCount, totalCount int) error {
	if userID <= 0 {
		return NewValidationError("user is required", nil)
	}
	if totalCount == 0 {
		// Nothing loaded, nothing to reconcile
		return nil
	}
	if completedCount < 0 || completedCount > totalCount {
		return NewValidationError("completed count out of range", nil)
	}
	if completedCount == 0 {
		return nil
	}

	if _, err := s.ApplyProgress(ctx, userID, category, completedCount); err != nil {
		return fmt.Errorf("resync failed for category %s: %w", category, err)
	}
	if category != s.bonusCategory {
		if _, err := s.ApplyProgress(ctx, userID, s.bonusCategory, completedCount); err != nil {
			return fmt.Errorf("resync failed for category %s: %w", s.bonusCategory, err)
		}
	}

	if completedCount == totalCount {
		if _, err := s.GrantCompletionBonus(ctx, userID, category, totalCount); err != nil {
			return err
		}
	}

	return nil
}

// GrantCompletionBonus awards the one-time bonus for a 100% complete
// collection. The persisted marker makes the grant idempotent: repeated
// calls for the same (user, category, size) snapshot are no-ops.
func (s *badgeService) GrantCompletionBonus(ctx context.Context, userID int64, category string, collectionSize int) (bool, error) {
	if userID <= 0 {
		return false, NewValidationError("user is required", nil)
	}
	if collectionSize <= 0 {
		return false, nil
	}

	granted, err := s.repo.TryRecordBonusAward(ctx, userID, category, collectionSize)
	if err != nil {
		return false, fmt.Errorf("failed to check bonus award: %w", err)
	}
	if !granted {
		return false, nil
	}

	s.logger.Info("All-complete bonus granted",
		zap.Int64("user_id", userID),
		zap.String("category", category),
		zap.Int("collection_size", collectionSize),
	)

	if _, err := s.ApplyProgress(ctx, userID, s.bonusCategory, collectionSize); err != nil {
		return true, fmt.Errorf("failed to apply completion bonus: %w", err)
	}

	// Notify listeners (websocket celebration push) about the milestone
	if s.bus != nil {
		event := events.NewAllTasksCompletedEvent(userID, category, collectionSize, collectionSize)
		if err := s.bus.PublishAsync(ctx, event); err != nil {
			s.logger.Warn("Failed to publish all-complete event",
				zap.Int64("user_id", userID),
				zap.String("category", category),
				zap.Error(err),
			)
		}
	}

	return true, nil
}

// ===============================
// CATALOG AND VIEW MODELS
// ===============================

// GetCatalog returns all badge definitions, cached briefly since the
// catalog only changes on seeding
func (s *badgeService) GetCatalog(ctx context.Context) ([]*models.Badge, error) {
	var cached []*models.Badge
	if cache.GetJSON(ctx, s.cache, badgeCatalogCacheKey, &cached) {
		return cached, nil
	}

	badges, err := s.repo.GetAllBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	if err := cache.SetJSON(ctx, s.cache, badgeCatalogCacheKey, badges, s.catalogCacheTTL); err != nil {
		s.logger.Warn("Failed to cache badge catalog", zap.Error(err))
	}

	return badges, nil
}

// GetUserBadges joins the catalog with the user's progress rows
func (s *badgeService) GetUserBadges(ctx context.Context, userID int64) (*BadgeSummary, error) {
	if userID <= 0 {
		return nil, NewValidationError("user is required", nil)
	}

	catalog, err := s.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := s.repo.GetUserBadges(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user badges: %w", err)
	}

	badges := ProjectBadges(catalog, progress)

	completed := 0
	for _, b := range badges {
		if b.Completed {
			completed++
		}
	}

	percent := 0
	if len(badges) > 0 {
		percent = completed * 100 / len(badges)
	}

	return &BadgeSummary{
		Badges:            badges,
		CompletedCount:    completed,
		TotalCount:        len(badges),
		CompletionPercent: percent,
	}, nil
}

// ResetProgress wipes all badge progress for a user. Exposed for the
// debug endpoint only; normal operation never deletes progress rows.
func (s *badgeService) ResetProgress(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return NewValidationError("user is required", nil)
	}
	return s.repo.ResetUserBadges(ctx, userID)
}

// ProjectBadges joins badge definitions with progress rows into display
// view models. Pure function: a missing progress row projects as zero
// progress, never an error. The percent is capped at 100 even though the
// raw counter may have grown past the threshold.
func ProjectBadges(catalog []*models.Badge, progress []*models.UserBadge) []*models.BadgeWithProgress {
	byBadgeID := make(map[int64]*models.UserBadge, len(progress))
	for _, ub := range progress {
		byBadgeID[ub.BadgeID] = ub
	}

	out := make([]*models.BadgeWithProgress, 0, len(catalog))
	for _, badge := range catalog {
		vm := &models.BadgeWithProgress{
			ID:            badge.ID,
			Name:          badge.Name,
			Description:   badge.Description,
			Icon:          badge.Icon,
			Category:      badge.Category,
			RequiredCount: badge.RequiredCount,
		}

		if ub, ok := byBadgeID[badge.ID]; ok {
			vm.Progress = ub.Progress
			vm.Completed = ub.Completed
		}

		if badge.RequiredCount > 0 {
			percent := vm.Progress * 100 / badge.RequiredCount
			if percent > 100 {
				percent = 100
			}
			vm.ProgressPercent = percent
		}

		out = append(out, vm)
	}

	return out
}
