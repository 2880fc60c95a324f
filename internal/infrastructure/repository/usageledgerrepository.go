package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/persistence/models"
	apperrors "pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
)

type UsageLedgerRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageLedgerRepository(db *gorm.DB, logger logger.Interface) usage.LedgerRepository {
	return &UsageLedgerRepositoryImpl{
		db:     db,
		logger: logger,
	}
}

// AppendEvent inserts the event and bumps the monthly rollup in one
// transaction. The aggregate update is an atomic upsert (INSERT .. ON
// DUPLICATE KEY UPDATE counter = counter + delta) so concurrent writers
// for the same user never lose increments.
func (r *UsageLedgerRepositoryImpl) AppendEvent(ctx context.Context, event *usage.Event) error {
	model := r.toModel(event)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}

		aggregate := &models.MonthlyUsageModel{
			UserID:        event.UserID(),
			PeriodMonth:   event.PeriodMonth(),
			TotalRequests: 1,
			TotalTokens:   event.TokensUsed(),
			TotalCostUSD:  event.CostUSD(),
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "period_month"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total_requests": gorm.Expr("total_requests + ?", 1),
				"total_tokens":   gorm.Expr("total_tokens + ?", event.TokensUsed()),
				"total_cost_usd": gorm.Expr("total_cost_usd + ?", event.CostUSD()),
			}),
		}).Create(aggregate).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateError(err) {
			r.logger.Debugw("usage event replay ignored",
				"user_id", event.UserID(), "idempotency_key", event.IdempotencyKey())
			return usage.ErrDuplicateEvent
		}
		r.logger.Errorw("failed to append usage event", "error", err, "user_id", event.UserID())
		return fmt.Errorf("failed to append usage event: %w", err)
	}

	if event.ID() == 0 && model.ID > 0 {
		if err := event.SetID(model.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *UsageLedgerRepositoryImpl) MonthlyAggregate(ctx context.Context, userID, periodMonth string) (*usage.MonthlyAggregate, error) {
	var model models.MonthlyUsageModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_month = ?", userID, periodMonth).
		First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No row yet means no usage this month, not an error.
			return usage.ZeroAggregate(userID, periodMonth), nil
		}
		r.logger.Errorw("failed to get monthly aggregate", "error", err, "user_id", userID, "period_month", periodMonth)
		return nil, fmt.Errorf("failed to get monthly aggregate: %w", err)
	}

	return usage.ReconstructMonthlyAggregate(
		model.UserID,
		model.PeriodMonth,
		model.TotalRequests,
		model.TotalTokens,
		model.TotalCostUSD,
		model.UpdatedAt,
	)
}

func (r *UsageLedgerRepositoryImpl) DailyCount(ctx context.Context, userID, periodDay string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UsageEventModel{}).
		Where("user_id = ? AND period_day = ?", userID, periodDay).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("failed to count daily usage", "error", err, "user_id", userID, "period_day", periodDay)
		return 0, fmt.Errorf("failed to count daily usage: %w", err)
	}

	return count, nil
}

func (r *UsageLedgerRepositoryImpl) FeatureCountForDay(ctx context.Context, userID, periodDay string, featureType usage.FeatureType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UsageEventModel{}).
		Where("user_id = ? AND period_day = ? AND feature_type = ?", userID, periodDay, featureType.String()).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("failed to count feature usage", "error", err, "user_id", userID, "feature_type", featureType)
		return 0, fmt.Errorf("failed to count feature usage: %w", err)
	}

	return count, nil
}

func (r *UsageLedgerRepositoryImpl) AnalysisCountForMonth(ctx context.Context, userID, periodMonth string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UsageEventModel{}).
		Where("user_id = ? AND period_month = ? AND feature_type = ?", userID, periodMonth, usage.FeatureAnalysis.String()).
		Count(&count).Error

	if err != nil {
		r.logger.Errorw("failed to count analysis usage", "error", err, "user_id", userID, "period_month", periodMonth)
		return 0, fmt.Errorf("failed to count analysis usage: %w", err)
	}

	return count, nil
}

func (r *UsageLedgerRepositoryImpl) EventsForMonth(ctx context.Context, userID, periodMonth string, filter usage.PageFilter) ([]*usage.Event, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.UsageEventModel{}).
		Where("user_id = ? AND period_month = ?", userID, periodMonth)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		r.logger.Errorw("failed to count usage events", "error", err, "user_id", userID)
		return nil, 0, fmt.Errorf("failed to count usage events: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	var eventModels []*models.UsageEventModel
	err := query.
		Order("occurred_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&eventModels).Error

	if err != nil {
		r.logger.Errorw("failed to list usage events", "error", err, "user_id", userID)
		return nil, 0, fmt.Errorf("failed to list usage events: %w", err)
	}

	events, err := r.toEntities(eventModels)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *UsageLedgerRepositoryImpl) toModel(event *usage.Event) *models.UsageEventModel {
	model := &models.UsageEventModel{
		ID:             event.ID(),
		SID:            event.SID(),
		UserID:         event.UserID(),
		IdempotencyKey: event.IdempotencyKey(),
		FeatureType:    event.FeatureType().String(),
		TokensUsed:     event.TokensUsed(),
		CostUSD:        event.CostUSD(),
		ModelID:        event.ModelID(),
		OccurredAt:     event.OccurredAt(),
		PeriodMonth:    event.PeriodMonth(),
		PeriodDay:      event.PeriodDay(),
	}

	if metadata := event.Metadata(); len(metadata) > 0 {
		// Marshal of map[string]string cannot fail.
		raw, _ := json.Marshal(metadata)
		model.Metadata = datatypes.JSON(raw)
	}

	return model
}

func (r *UsageLedgerRepositoryImpl) toEntity(model *models.UsageEventModel) (*usage.Event, error) {
	event, err := usage.ReconstructEvent(
		model.ID,
		model.SID,
		model.UserID,
		model.IdempotencyKey,
		usage.FeatureType(model.FeatureType),
		model.TokensUsed,
		model.CostUSD,
		model.ModelID,
		model.OccurredAt,
		model.PeriodMonth,
		model.PeriodDay,
	)
	if err != nil {
		return nil, err
	}

	if len(model.Metadata) > 0 {
		var metadata map[string]string
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			r.logger.Warnw("failed to decode event metadata", "error", err, "sid", model.SID)
		} else {
			event.AttachMetadata(metadata)
		}
	}

	return event, nil
}

func (r *UsageLedgerRepositoryImpl) toEntities(eventModels []*models.UsageEventModel) ([]*usage.Event, error) {
	events := make([]*usage.Event, 0, len(eventModels))

	for _, model := range eventModels {
		event, err := r.toEntity(model)
		if err != nil {
			return nil, fmt.Errorf("failed to convert event ID %d: %w", model.ID, err)
		}
		events = append(events, event)
	}

	return events, nil
}
