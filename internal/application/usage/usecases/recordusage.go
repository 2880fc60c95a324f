package usecases

import (
	"context"
	stderrors "errors"

	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/cache"
	"pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
)

// RecordUsageCommand represents a verified-successful AI call to be counted.
type RecordUsageCommand struct {
	UserID         string
	IdempotencyKey string
	FeatureType    usage.FeatureType
	TokensUsed     uint64
	CostUSD        float64
	ModelID        string
	Metadata       map[string]string
}

// RecordUsageResult reports the ledger write outcome.
type RecordUsageResult struct {
	SID         string `json:"sid"`
	Duplicate   bool   `json:"duplicate"`
	MonthlyUsed int64  `json:"monthly_used"`
}

// RecordUsageUseCase appends a usage event after the caller has verified the
// AI operation produced a genuine result. It re-checks the quota against
// live state before writing: the client-side pre-check runs in an untrusted
// domain and is never taken at its word.
type RecordUsageUseCase struct {
	stateSource plan.StateSource
	resolver    *plan.Resolver
	ledger      usage.LedgerRepository
	statsCache  cache.UsageStatsCache
	logger      logger.Interface
}

func NewRecordUsageUseCase(
	stateSource plan.StateSource,
	resolver *plan.Resolver,
	ledger usage.LedgerRepository,
	statsCache cache.UsageStatsCache,
	logger logger.Interface,
) *RecordUsageUseCase {
	return &RecordUsageUseCase{
		stateSource: stateSource,
		resolver:    resolver,
		ledger:      ledger,
		statsCache:  statsCache,
		logger:      logger,
	}
}

// Execute validates, re-checks the quota, and appends the event. A replayed
// idempotency key is reported as success with Duplicate set: the original
// write already counted and retries must not double-bill.
func (uc *RecordUsageUseCase) Execute(ctx context.Context, cmd RecordUsageCommand) (*RecordUsageResult, error) {
	event, err := usage.NewEvent(cmd.UserID, cmd.IdempotencyKey, cmd.FeatureType, cmd.TokensUsed, cmd.CostUSD, cmd.ModelID)
	if err != nil {
		return nil, errors.NewValidationError("invalid usage event", err.Error())
	}
	event.AttachMetadata(cmd.Metadata)

	eval, err := evaluateQuota(ctx, uc.stateSource, uc.resolver, uc.ledger, uc.logger, cmd.UserID)
	if err != nil {
		uc.logger.Errorw("authoritative quota re-check failed", "error", err, "user_id", cmd.UserID)
		return nil, errors.NewInternalError("failed to record usage")
	}
	if !eval.allowed {
		uc.logger.Warnw("usage recording denied by authoritative re-check",
			"user_id", cmd.UserID,
			"feature_type", cmd.FeatureType,
			"reason", eval.reason,
		)
		return nil, errors.NewQuotaExceededError(eval.reason)
	}

	if err := uc.ledger.AppendEvent(ctx, event); err != nil {
		if stderrors.Is(err, usage.ErrDuplicateEvent) {
			return &RecordUsageResult{
				SID:         event.SID(),
				Duplicate:   true,
				MonthlyUsed: eval.monthlyUsed,
			}, nil
		}
		uc.logger.Errorw("failed to append usage event", "error", err, "user_id", cmd.UserID)
		return nil, errors.NewInternalError("failed to record usage")
	}

	// Stats cache invalidation is best-effort: the ledger already holds
	// the truth and the cache TTL bounds staleness.
	if err := uc.statsCache.InvalidateStats(ctx, cmd.UserID); err != nil {
		uc.logger.Warnw("failed to invalidate stats cache", "error", err, "user_id", cmd.UserID)
	}

	uc.logger.Infow("usage recorded",
		"user_id", cmd.UserID,
		"feature_type", cmd.FeatureType,
		"sid", event.SID(),
		"tokens_used", cmd.TokensUsed,
	)

	return &RecordUsageResult{
		SID:         event.SID(),
		MonthlyUsed: eval.monthlyUsed + 1,
	}, nil
}
