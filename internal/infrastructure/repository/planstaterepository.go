package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pagemark/internal/domain/plan"
	"pagemark/internal/infrastructure/persistence/models"
	"pagemark/internal/shared/logger"
)

type PlanStateRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPlanStateRepository(db *gorm.DB, logger logger.Interface) plan.StateSource {
	return &PlanStateRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *PlanStateRepositoryImpl) GetUserPlanState(ctx context.Context, userID string) (*plan.UserPlanState, error) {
	var model models.UserPlanStateModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Users who never purchased have no row; the resolver maps
			// a nil state to the free tier.
			return nil, plan.ErrStateNotFound
		}
		r.logger.Errorw("failed to get user plan state", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get user plan state: %w", err)
	}

	return r.toEntity(&model), nil
}

func (r *PlanStateRepositoryImpl) toEntity(model *models.UserPlanStateModel) *plan.UserPlanState {
	state := &plan.UserPlanState{
		UserID:        model.UserID,
		Tier:          plan.ParseTier(model.Tier),
		Status:        plan.Status(model.Status),
		StartDate:     model.StartDate,
		IsTestAccount: model.IsTestAccount,
	}

	if model.DowngradeToTier != nil && model.DowngradeEffectiveDate != nil {
		state.PendingDowngrade = &plan.PendingDowngrade{
			ToTier:        plan.ParseTier(*model.DowngradeToTier),
			EffectiveDate: *model.DowngradeEffectiveDate,
		}
	}

	if model.TestOverrideTier != nil {
		tier := plan.ParseTier(*model.TestOverrideTier)
		state.TestOverrideTier = &tier
	}

	return state
}
