package usecases

import (
	"context"
	"time"

	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
)

// CheckUsageLimitQuery represents the parameters for a quota pre-check
type CheckUsageLimitQuery struct {
	UserID      string
	FeatureType usage.FeatureType
}

// CheckUsageLimitResult is the gating decision plus the numbers the client
// needs to render a paywall or a remaining-quota badge.
type CheckUsageLimitResult struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	Tier         string `json:"tier"`
	MonthlyUsed  int64  `json:"monthly_used"`
	MonthlyQuota int64  `json:"monthly_quota"`
	DailyUsed    int64  `json:"daily_used"`
	DailyQuota   int64  `json:"daily_quota"`

	// FeatureDailyUsed counts today's events of the requested feature only,
	// so the client can render a per-feature breakdown next to the combined
	// daily number.
	FeatureDailyUsed int64 `json:"feature_daily_used"`

	ResetDate time.Time `json:"reset_date"`
}

// CheckUsageLimitUseCase decides whether a requested AI operation is allowed
// under the resolved plan's monthly and daily quotas. This is the optimistic
// pre-check; the authoritative re-check runs again inside the record path.
type CheckUsageLimitUseCase struct {
	stateSource plan.StateSource
	resolver    *plan.Resolver
	ledger      usage.LedgerRepository
	logger      logger.Interface
}

func NewCheckUsageLimitUseCase(
	stateSource plan.StateSource,
	resolver *plan.Resolver,
	ledger usage.LedgerRepository,
	logger logger.Interface,
) *CheckUsageLimitUseCase {
	return &CheckUsageLimitUseCase{
		stateSource: stateSource,
		resolver:    resolver,
		ledger:      ledger,
		logger:      logger,
	}
}

// Execute runs the quota pre-check.
func (uc *CheckUsageLimitUseCase) Execute(ctx context.Context, query CheckUsageLimitQuery) (*CheckUsageLimitResult, error) {
	if query.UserID == "" {
		return nil, errors.NewValidationError("user ID is required")
	}
	if !query.FeatureType.IsValid() {
		return nil, errors.NewValidationError("invalid feature type", string(query.FeatureType))
	}

	eval, err := evaluateQuota(ctx, uc.stateSource, uc.resolver, uc.ledger, uc.logger, query.UserID)
	if err != nil {
		uc.logger.Errorw("quota evaluation failed", "error", err, "user_id", query.UserID)
		return nil, errors.NewInternalError("failed to check usage limit")
	}

	var startDate time.Time
	if eval.state != nil {
		startDate = eval.state.StartDate
	}

	// Per-feature daily count is informational only, so a failed read
	// degrades to zero instead of failing the check.
	featureDailyUsed, err := uc.ledger.FeatureCountForDay(ctx, query.UserID, biztime.CurrentDayKey(), query.FeatureType)
	if err != nil {
		uc.logger.Warnw("failed to count feature usage for day",
			"error", err, "user_id", query.UserID, "feature_type", query.FeatureType)
		featureDailyUsed = 0
	}

	result := &CheckUsageLimitResult{
		Allowed:          eval.allowed,
		Reason:           eval.reason,
		Tier:             eval.tier.String(),
		MonthlyUsed:      eval.monthlyUsed,
		MonthlyQuota:     eval.limits.AIMonthlyQuota,
		DailyUsed:        eval.dailyUsed,
		DailyQuota:       eval.limits.AIDailyQuota,
		FeatureDailyUsed: featureDailyUsed,
		ResetDate:        plan.ResetDate(startDate, biztime.NowUTC()),
	}

	if !result.Allowed {
		uc.logger.Infow("AI usage denied by quota",
			"user_id", query.UserID,
			"feature_type", query.FeatureType,
			"tier", result.Tier,
			"reason", result.Reason,
		)
	}

	return result, nil
}
