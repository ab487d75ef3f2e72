// file: internal/services/badge_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"allowancehub/internal/events"
	"allowancehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===============================
// FAKES
// ===============================

// fakeBadgeRepo is an in-memory BadgeRepository with per-badge error
// injection for failure isolation tests.
type fakeBadgeRepo struct {
	badges      []*models.Badge
	userBadges  map[string]*models.UserBadge
	bonusAwards map[string]bool
	nextID      int64

	failBadgeID int64
}

func newFakeBadgeRepo(badges ...*models.Badge) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		badges:      badges,
		userBadges:  make(map[string]*models.UserBadge),
		bonusAwards: make(map[string]bool),
	}
}

func key(userID, badgeID int64) string {
	return fmt.Sprintf("%d:%d", userID, badgeID)
}

func (r *fakeBadgeRepo) GetAllBadges(_ context.Context) ([]*models.Badge, error) {
	return r.badges, nil
}

func (r *fakeBadgeRepo) GetBadgesByCategory(_ context.Context, category string) ([]*models.Badge, error) {
	var out []*models.Badge
	for _, b := range r.badges {
		if b.Category == category {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) GetUserBadge(_ context.Context, userID, badgeID int64) (*models.UserBadge, error) {
	ub, ok := r.userBadges[key(userID, badgeID)]
	if !ok {
		return nil, nil
	}
	copied := *ub
	return &copied, nil
}

func (r *fakeBadgeRepo) GetUserBadges(_ context.Context, userID int64) ([]*models.UserBadge, error) {
	var out []*models.UserBadge
	for _, ub := range r.userBadges {
		if ub.UserID == userID {
			copied := *ub
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeBadgeRepo) CreateUserBadge(_ context.Context, ub *models.UserBadge) error {
	if ub.BadgeID == r.failBadgeID {
		return errors.New("store unavailable")
	}
	r.nextID++
	ub.ID = r.nextID
	copied := *ub
	r.userBadges[key(ub.UserID, ub.BadgeID)] = &copied
	return nil
}

func (r *fakeBadgeRepo) UpdateUserBadge(_ context.Context, ub *models.UserBadge) error {
	if ub.BadgeID == r.failBadgeID {
		return errors.New("store unavailable")
	}
	copied := *ub
	r.userBadges[key(ub.UserID, ub.BadgeID)] = &copied
	return nil
}

func (r *fakeBadgeRepo) TryRecordBonusAward(_ context.Context, userID int64, category string, collectionSize int) (bool, error) {
	k := fmt.Sprintf("%d:%s:%d", userID, category, collectionSize)
	if r.bonusAwards[k] {
		return false, nil
	}
	r.bonusAwards[k] = true
	return true, nil
}

func (r *fakeBadgeRepo) ResetUserBadges(_ context.Context, userID int64) error {
	for k, ub := range r.userBadges {
		if ub.UserID == userID {
			delete(r.userBadges, k)
		}
	}
	return nil
}

// fakeCache is a trivial in-memory cache for tests
type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, k string) ([]byte, bool) {
	v, ok := c.entries[k]
	return v, ok
}

func (c *fakeCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	c.entries[k] = v
	return nil
}

func (c *fakeCache) Delete(_ context.Context, k string) error {
	delete(c.entries, k)
	return nil
}

func (c *fakeCache) Health(_ context.Context) error { return nil }
func (c *fakeCache) Close() error                   { return nil }

// ===============================
// HELPERS
// ===============================

func badge(id int64, category string, required int) *models.Badge {
	return &models.Badge{
		ID:            id,
		Name:          fmt.Sprintf("badge-%d", id),
		Category:      category,
		RequiredCount: required,
	}
}

func newTestService(repo *fakeBadgeRepo) *badgeService {
	return newTestServiceWithBus(repo, events.NewInMemoryEventBus(zap.NewNop()))
}

func newTestServiceWithBus(repo *fakeBadgeRepo, bus events.EventBus) *badgeService {
	svc := NewBadgeService(repo, newFakeCache(), bus, zap.NewNop(), time.Minute, models.BadgeCategoryActivity)
	return svc.(*badgeService)
}

// ===============================
// APPLY PROGRESS
// ===============================

func TestApplyProgressCreatesRowOnFirstContact(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 3))
	svc := newTestService(repo)

	result, err := svc.ApplyProgress(context.Background(), 7, models.BadgeCategoryTasks, 1)
	require.NoError(t, err)
	require.Len(t, result.Badges, 1)

	entry := result.Badges[0]
	assert.Equal(t, OutcomeCreated, entry.Outcome)
	assert.Equal(t, 1, entry.Progress)
	assert.False(t, entry.Completed)

	stored := repo.userBadges[key(7, 1)]
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.Progress)
	assert.Nil(t, stored.EarnedAt)
}

func TestApplyProgressCompletesOnCreationWhenThresholdMet(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 1))
	svc := newTestService(repo)

	result, err := svc.ApplyProgress(context.Background(), 7, models.BadgeCategoryTasks, 1)
	require.NoError(t, err)

	entry := result.Badges[0]
	assert.True(t, entry.Completed)
	assert.True(t, entry.NewlyCompleted)

	stored := repo.userBadges[key(7, 1)]
	require.NotNil(t, stored.EarnedAt)
}

func TestApplyProgressAccumulatesMonotonically(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 5))
	svc := newTestService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 1)
		require.NoError(t, err)
	}

	stored := repo.userBadges[key(7, 1)]
	assert.Equal(t, 3, stored.Progress)
	assert.False(t, stored.Completed)
}

func TestApplyProgressCompletionIsOneWayLatch(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 2))
	svc := newTestService(repo)
	ctx := context.Background()

	earned := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return earned }

	_, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 2)
	require.NoError(t, err)

	stored := repo.userBadges[key(7, 1)]
	require.True(t, stored.Completed)
	require.NotNil(t, stored.EarnedAt)
	assert.Equal(t, earned, *stored.EarnedAt)

	// Later increments keep the latch and never touch earned_at
	svc.now = func() time.Time { return earned.Add(48 * time.Hour) }
	result, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 3)
	require.NoError(t, err)

	entry := result.Badges[0]
	assert.True(t, entry.Completed)
	assert.False(t, entry.NewlyCompleted, "completion must be reported only at the transition")

	stored = repo.userBadges[key(7, 1)]
	assert.Equal(t, 5, stored.Progress, "raw counter keeps growing past the threshold")
	assert.True(t, stored.Completed)
	assert.Equal(t, earned, *stored.EarnedAt)
}

func TestApplyProgressEmptyCatalogIsNoOp(t *testing.T) {
	repo := newFakeBadgeRepo()
	svc := newTestService(repo)

	result, err := svc.ApplyProgress(context.Background(), 7, models.BadgeCategorySavings, 1)
	require.NoError(t, err)
	assert.Empty(t, result.Badges)
	assert.Contains(t, result.Message, "no badges defined")
}

func TestApplyProgressDefaultsZeroIncrementToOne(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 5))
	svc := newTestService(repo)

	result, err := svc.ApplyProgress(context.Background(), 7, models.BadgeCategoryTasks, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Increment)
	assert.Equal(t, 1, result.Badges[0].Progress)
}

func TestApplyProgressRejectsInvalidInput(t *testing.T) {
	svc := newTestService(newFakeBadgeRepo())

	_, err := svc.ApplyProgress(context.Background(), 0, models.BadgeCategoryTasks, 1)
	assert.True(t, IsValidationError(err))

	_, err = svc.ApplyProgress(context.Background(), 7, models.BadgeCategoryTasks, -2)
	assert.True(t, IsValidationError(err))
}

func TestApplyProgressIsolatesPerBadgeFailures(t *testing.T) {
	repo := newFakeBadgeRepo(
		badge(1, models.BadgeCategoryTasks, 3),
		badge(2, models.BadgeCategoryTasks, 3),
	)
	repo.failBadgeID = 1
	svc := newTestService(repo)

	result, err := svc.ApplyProgress(context.Background(), 7, models.BadgeCategoryTasks, 1)
	require.NoError(t, err, "per-badge failures must not fail the call")
	require.Len(t, result.Badges, 2)

	assert.Equal(t, 1, result.ErrorCount())
	assert.Equal(t, OutcomeError, result.Badges[0].Outcome)
	assert.Equal(t, OutcomeCreated, result.Badges[1].Outcome)

	// The healthy badge made progress despite its broken sibling
	assert.NotNil(t, repo.userBadges[key(7, 2)])
	assert.Nil(t, repo.userBadges[key(7, 1)])
}

// ===============================
// RESYNC
// ===============================

func TestResyncAppliesCompletedCountAdditively(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 7))
	svc := newTestService(repo)
	ctx := context.Background()

	// Two increments recorded live, then an authoritative scan sees 5 done
	_, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 2)
	require.NoError(t, err)

	require.NoError(t, svc.ResyncFromActivity(ctx, 7, models.BadgeCategoryTasks, 5, 10))

	stored := repo.userBadges[key(7, 1)]
	assert.Equal(t, 7, stored.Progress, "resync adds on top, it does not reset")
	assert.True(t, stored.Completed)
}

func TestResyncSkipsEmptyAndUntouchedCollections(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 1))
	svc := newTestService(repo)
	ctx := context.Background()

	require.NoError(t, svc.ResyncFromActivity(ctx, 7, models.BadgeCategoryTasks, 0, 0))
	require.NoError(t, svc.ResyncFromActivity(ctx, 7, models.BadgeCategoryTasks, 0, 4))
	assert.Empty(t, repo.userBadges)
}

func TestResyncRejectsOutOfRangeCompletedCount(t *testing.T) {
	svc := newTestService(newFakeBadgeRepo())

	err := svc.ResyncFromActivity(context.Background(), 7, models.BadgeCategoryTasks, 5, 3)
	assert.True(t, IsValidationError(err))
}

func TestResyncFeedsBonusCategoryToo(t *testing.T) {
	repo := newFakeBadgeRepo(
		badge(1, models.BadgeCategoryTasks, 10),
		badge(2, models.BadgeCategoryActivity, 100),
	)
	svc := newTestService(repo)

	require.NoError(t, svc.ResyncFromActivity(context.Background(), 7, models.BadgeCategoryTasks, 3, 8))

	assert.Equal(t, 3, repo.userBadges[key(7, 1)].Progress)
	assert.Equal(t, 3, repo.userBadges[key(7, 2)].Progress)
}

func TestResyncGrantsAllCompleteBonusOnce(t *testing.T) {
	repo := newFakeBadgeRepo(
		badge(1, models.BadgeCategoryTasks, 100),
		badge(2, models.BadgeCategoryActivity, 100),
	)
	svc := newTestService(repo)
	ctx := context.Background()

	// Whole collection of 4 tasks complete: 4 to tasks, 4 to activity,
	// plus the one-time bonus of 4 to activity
	require.NoError(t, svc.ResyncFromActivity(ctx, 7, models.BadgeCategoryTasks, 4, 4))
	assert.Equal(t, 4, repo.userBadges[key(7, 1)].Progress)
	assert.Equal(t, 8, repo.userBadges[key(7, 2)].Progress)

	// The same completed snapshot resyncs again, e.g. on a page re-render.
	// Counts re-apply but the bonus marker blocks a second grant.
	require.NoError(t, svc.ResyncFromActivity(ctx, 7, models.BadgeCategoryTasks, 4, 4))
	assert.Equal(t, 8, repo.userBadges[key(7, 1)].Progress)
	assert.Equal(t, 12, repo.userBadges[key(7, 2)].Progress)
}

func TestGrantCompletionBonusIsIdempotent(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryActivity, 100))
	svc := newTestService(repo)
	ctx := context.Background()

	granted, err := svc.GrantCompletionBonus(ctx, 7, models.BadgeCategoryTasks, 5)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 5, repo.userBadges[key(7, 1)].Progress)

	granted, err = svc.GrantCompletionBonus(ctx, 7, models.BadgeCategoryTasks, 5)
	require.NoError(t, err)
	assert.False(t, granted)
	assert.Equal(t, 5, repo.userBadges[key(7, 1)].Progress)

	// A different collection size is a new snapshot
	granted, err = svc.GrantCompletionBonus(ctx, 7, models.BadgeCategoryTasks, 6)
	require.NoError(t, err)
	assert.True(t, granted)
	assert.Equal(t, 11, repo.userBadges[key(7, 1)].Progress)
}

func TestGrantCompletionBonusAnnouncesMilestone(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryActivity, 100))
	bus := events.NewInMemoryEventBus(zap.NewNop())

	var mu sync.Mutex
	var received []*events.AllTasksCompletedEvent
	require.NoError(t, bus.Subscribe(events.EventTypeAllTasksCompleted, events.EventHandlerFunc{
		ID: "milestone-recorder",
		Func: func(_ context.Context, e events.Event) error {
			if ev, ok := e.(*events.AllTasksCompletedEvent); ok {
				mu.Lock()
				received = append(received, ev)
				mu.Unlock()
			}
			return nil
		},
	}))

	svc := newTestServiceWithBus(repo, bus)
	ctx := context.Background()

	granted, err := svc.GrantCompletionBonus(ctx, 7, models.BadgeCategoryTasks, 3)
	require.NoError(t, err)
	require.True(t, granted)

	// A repeat of the same snapshot grants nothing and must stay silent
	granted, err = svc.GrantCompletionBonus(ctx, 7, models.BadgeCategoryTasks, 3)
	require.NoError(t, err)
	require.False(t, granted)

	require.NoError(t, bus.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	event := received[0]
	require.NotNil(t, event.GetUserID())
	assert.Equal(t, int64(7), *event.GetUserID())
	assert.Equal(t, models.BadgeCategoryTasks, event.Category)
	assert.Equal(t, 3, event.CollectionSize)
	assert.Equal(t, 3, event.BonusAwarded)
}

// ===============================
// VIEW MODELS
// ===============================

func TestGetUserBadgesSummarizesCompletion(t *testing.T) {
	repo := newFakeBadgeRepo(
		badge(1, models.BadgeCategoryTasks, 1),
		badge(2, models.BadgeCategoryTasks, 10),
		badge(3, models.BadgeCategorySavings, 2),
		badge(4, models.BadgeCategoryGoals, 3),
	)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 1)
	require.NoError(t, err)

	summary, err := svc.GetUserBadges(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalCount)
	assert.Equal(t, 1, summary.CompletedCount)
	assert.Equal(t, 25, summary.CompletionPercent)
}

func TestProjectBadgesDefaultsMissingProgressToZero(t *testing.T) {
	catalog := []*models.Badge{
		badge(1, models.BadgeCategoryTasks, 4),
		badge(2, models.BadgeCategoryTasks, 2),
	}
	progress := []*models.UserBadge{
		{UserID: 7, BadgeID: 2, Progress: 9, Completed: true},
	}

	out := ProjectBadges(catalog, progress)
	require.Len(t, out, 2)

	assert.Equal(t, 0, out[0].Progress)
	assert.False(t, out[0].Completed)
	assert.Equal(t, 0, out[0].ProgressPercent)

	assert.Equal(t, 9, out[1].Progress)
	assert.True(t, out[1].Completed)
	assert.Equal(t, 100, out[1].ProgressPercent, "display percent is capped")
}

func TestResetProgressWipesUserRows(t *testing.T) {
	repo := newFakeBadgeRepo(badge(1, models.BadgeCategoryTasks, 3))
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.ApplyProgress(ctx, 7, models.BadgeCategoryTasks, 2)
	require.NoError(t, err)
	require.NotEmpty(t, repo.userBadges)

	require.NoError(t, svc.ResetProgress(ctx, 7))
	assert.Empty(t, repo.userBadges)
}
