package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemark/internal/domain/plan"
	"pagemark/internal/infrastructure/persistence/models"
	"pagemark/internal/shared/logger"
)

func TestPlanStateRepository_GetUserPlanState(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPlanStateRepository(db, logger.NewLogger())
	ctx := context.Background()

	t.Run("missing user maps to ErrStateNotFound", func(t *testing.T) {
		state, err := repo.GetUserPlanState(ctx, "never-purchased")
		assert.ErrorIs(t, err, plan.ErrStateNotFound)
		assert.Nil(t, state)
	})

	t.Run("loads plain subscription", func(t *testing.T) {
		startDate := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&models.UserPlanStateModel{
			UserID:    "uid-plus",
			Tier:      "plus",
			Status:    "active",
			StartDate: startDate,
		}).Error)

		state, err := repo.GetUserPlanState(ctx, "uid-plus")
		require.NoError(t, err)
		assert.Equal(t, plan.TierPlus, state.Tier)
		assert.Equal(t, plan.StatusActive, state.Status)
		assert.True(t, state.StartDate.Equal(startDate))
		assert.Nil(t, state.PendingDowngrade)
		assert.False(t, state.IsTestAccount)
	})

	t.Run("loads pending downgrade", func(t *testing.T) {
		toTier := "free"
		effective := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.Create(&models.UserPlanStateModel{
			UserID:                 "uid-downgrading",
			Tier:                   "pro",
			Status:                 "canceled",
			StartDate:              time.Date(2023, 5, 11, 0, 0, 0, 0, time.UTC),
			DowngradeToTier:        &toTier,
			DowngradeEffectiveDate: &effective,
		}).Error)

		state, err := repo.GetUserPlanState(ctx, "uid-downgrading")
		require.NoError(t, err)
		require.NotNil(t, state.PendingDowngrade)
		assert.Equal(t, plan.TierFree, state.PendingDowngrade.ToTier)
		assert.True(t, state.PendingDowngrade.EffectiveDate.Equal(effective))
	})

	t.Run("unknown tier degrades to free", func(t *testing.T) {
		require.NoError(t, db.Create(&models.UserPlanStateModel{
			UserID:    "uid-legacy",
			Tier:      "platinum",
			Status:    "active",
			StartDate: time.Now().UTC(),
		}).Error)

		state, err := repo.GetUserPlanState(ctx, "uid-legacy")
		require.NoError(t, err)
		assert.Equal(t, plan.TierFree, state.Tier)
	})

	t.Run("loads test account override", func(t *testing.T) {
		override := "pro"
		require.NoError(t, db.Create(&models.UserPlanStateModel{
			UserID:           "uid-test",
			Tier:             "free",
			Status:           "active",
			StartDate:        time.Now().UTC(),
			IsTestAccount:    true,
			TestOverrideTier: &override,
		}).Error)

		state, err := repo.GetUserPlanState(ctx, "uid-test")
		require.NoError(t, err)
		assert.True(t, state.IsTestAccount)
		require.NotNil(t, state.TestOverrideTier)
		assert.Equal(t, plan.TierPro, *state.TestOverrideTier)
	})
}
