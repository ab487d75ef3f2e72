// file: internal/services/goal_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"allowancehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeGoalRepo is an in-memory GoalRepository
type fakeGoalRepo struct {
	goals  map[int64]*models.Goal
	nextID int64

	countOverride *int
	countErr      error
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: make(map[int64]*models.Goal)}
}

func (r *fakeGoalRepo) GetByUserID(_ context.Context, userID int64) ([]*models.Goal, error) {
	var out []*models.Goal
	for _, g := range r.goals {
		if g.UserID == userID {
			copied := *g
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id int64) (*models.Goal, error) {
	g, ok := r.goals[id]
	if !ok {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGoalRepo) Create(_ context.Context, goal *models.Goal) error {
	r.nextID++
	goal.ID = r.nextID
	copied := *goal
	r.goals[goal.ID] = &copied
	return nil
}

func (r *fakeGoalRepo) Update(_ context.Context, goal *models.Goal) error {
	copied := *goal
	r.goals[goal.ID] = &copied
	return nil
}

func (r *fakeGoalRepo) Delete(_ context.Context, id, userID int64) error {
	g, ok := r.goals[id]
	if !ok || g.UserID != userID {
		return errors.New("goal not found")
	}
	delete(r.goals, id)
	return nil
}

func (r *fakeGoalRepo) CountCompleted(_ context.Context, userID int64) (int, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	if r.countOverride != nil {
		return *r.countOverride, nil
	}
	n := 0
	for _, g := range r.goals {
		if g.UserID == userID && g.Completed {
			n++
		}
	}
	return n, nil
}

func newGoalFixture(t *testing.T, badges ...*models.Badge) (GoalService, *fakeGoalRepo, *fakeBadgeRepo) {
	t.Helper()
	goalRepo := newFakeGoalRepo()
	badgeRepo := newFakeBadgeRepo(badges...)
	badgeSvc := newTestService(badgeRepo)
	return NewGoalService(goalRepo, badgeSvc, zap.NewNop()), goalRepo, badgeRepo
}

func TestAddFundsCountsEveryDepositTowardSavings(t *testing.T) {
	svc, _, badgeRepo := newGoalFixture(t,
		badge(1, models.BadgeCategorySavings, 10),
		badge(2, models.BadgeCategoryGoals, 5),
	)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "New bike", TargetAmount: 5000})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 100})
		require.NoError(t, err)
	}

	assert.Equal(t, 3, badgeRepo.userBadges[key(7, 1)].Progress)
	assert.Nil(t, badgeRepo.userBadges[key(7, 2)], "goal not yet complete")
}

func TestAddFundsCompletingDepositFeedsGoalsAndActivity(t *testing.T) {
	svc, _, badgeRepo := newGoalFixture(t,
		badge(1, models.BadgeCategorySavings, 10),
		badge(2, models.BadgeCategoryGoals, 5),
		badge(3, models.BadgeCategoryActivity, 50),
	)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "New bike", TargetAmount: 200})
	require.NoError(t, err)

	updated, err := svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 250})
	require.NoError(t, err)

	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)
	assert.Equal(t, int64(250), updated.CurrentAmount, "overshoot is kept, not clamped")

	assert.Equal(t, 1, badgeRepo.userBadges[key(7, 1)].Progress)
	assert.Equal(t, 1, badgeRepo.userBadges[key(7, 2)].Progress)
	assert.Equal(t, 1, badgeRepo.userBadges[key(7, 3)].Progress)
}

func TestAddFundsToCompletedGoalIsRejected(t *testing.T) {
	svc, _, _ := newGoalFixture(t)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "New bike", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 100})
	require.NoError(t, err)

	_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 50})
	require.Error(t, err)

	svcErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, "GOAL_COMPLETED", svcErr.Code)
}

func TestAddFundsEnforcesOwnership(t *testing.T) {
	svc, _, _ := newGoalFixture(t)
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "Mine", TargetAmount: 100})
	require.NoError(t, err)

	_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 8, GoalID: goal.ID, Amount: 10})
	assert.True(t, IsNotFoundError(err))
}

func TestListGoalsResyncsGoalsCategory(t *testing.T) {
	svc, _, badgeRepo := newGoalFixture(t, badge(1, models.BadgeCategoryGoals, 5))
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "a", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "b", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 100})
	require.NoError(t, err)

	goals, err := svc.ListGoals(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, goals, 2)

	// 1 from the completing deposit plus 1 from the list resync
	assert.Equal(t, 2, badgeRepo.userBadges[key(7, 1)].Progress)
}

func TestListGoalsResyncsFromRepositoryCount(t *testing.T) {
	svc, goalRepo, badgeRepo := newGoalFixture(t, badge(1, models.BadgeCategoryGoals, 5))
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "a", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "b", TargetAmount: 100})
	require.NoError(t, err)

	// A deposit completes a goal between the list query and the count
	// query; the count is the authoritative figure for resync
	one := 1
	goalRepo.countOverride = &one

	goals, err := svc.ListGoals(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, goals, 2)

	assert.Equal(t, 1, badgeRepo.userBadges[key(7, 1)].Progress)
}

func TestListGoalsFallsBackToLoadedRowsWhenCountFails(t *testing.T) {
	svc, goalRepo, badgeRepo := newGoalFixture(t, badge(1, models.BadgeCategoryGoals, 5))
	ctx := context.Background()

	goal, err := svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "a", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.CreateGoal(ctx, &CreateGoalRequest{UserID: 7, Name: "b", TargetAmount: 100})
	require.NoError(t, err)
	_, err = svc.AddFunds(ctx, &AddFundsRequest{UserID: 7, GoalID: goal.ID, Amount: 100})
	require.NoError(t, err)

	goalRepo.countErr = errors.New("store unavailable")

	goals, err := svc.ListGoals(ctx, 7)
	require.NoError(t, err, "a failed count must not fail the listing")
	assert.Len(t, goals, 2)

	// 1 from the completing deposit plus 1 from the fallback resync
	assert.Equal(t, 2, badgeRepo.userBadges[key(7, 1)].Progress)
}
