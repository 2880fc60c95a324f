package usecases

import (
	"context"
	"time"

	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/cache"
	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
)

// GetUsageStatsQuery represents the parameters for a usage stats read
type GetUsageStatsQuery struct {
	UserID       string
	ForceRefresh bool
}

// GetUsageStatsResult is the current-month usage view for the settings and
// paywall screens.
type GetUsageStatsResult struct {
	Tier          string    `json:"tier"`
	PeriodMonth   string    `json:"period_month"`
	MonthlyUsed   int64     `json:"monthly_used"`
	MonthlyQuota  int64     `json:"monthly_quota"`
	Remaining     int64     `json:"remaining"`
	UsagePercent  int       `json:"usage_percent"`
	DailyUsed     int64     `json:"daily_used"`
	DailyQuota    int64     `json:"daily_quota"`
	AnalysisCount int64     `json:"analysis_count"`
	TotalTokens   uint64    `json:"total_tokens"`
	TotalCostUSD  float64   `json:"total_cost_usd"`
	ResetDate     time.Time `json:"reset_date"`
}

// GetUsageStatsUseCase serves usage stats through a short-TTL cache. Stats
// reads are hot (every settings-screen open) and tolerate a couple of
// minutes of staleness; gating decisions never read from here.
type GetUsageStatsUseCase struct {
	stateSource plan.StateSource
	resolver    *plan.Resolver
	ledger      usage.LedgerRepository
	statsCache  cache.UsageStatsCache
	logger      logger.Interface
}

func NewGetUsageStatsUseCase(
	stateSource plan.StateSource,
	resolver *plan.Resolver,
	ledger usage.LedgerRepository,
	statsCache cache.UsageStatsCache,
	logger logger.Interface,
) *GetUsageStatsUseCase {
	return &GetUsageStatsUseCase{
		stateSource: stateSource,
		resolver:    resolver,
		ledger:      ledger,
		statsCache:  statsCache,
		logger:      logger,
	}
}

// Execute returns the user's current-month usage stats.
func (uc *GetUsageStatsUseCase) Execute(ctx context.Context, query GetUsageStatsQuery) (*GetUsageStatsResult, error) {
	if query.UserID == "" {
		return nil, errors.NewValidationError("user ID is required")
	}

	now := biztime.NowUTC()
	periodMonth := biztime.MonthKey(now)

	if !query.ForceRefresh {
		cached, err := uc.statsCache.GetStats(ctx, query.UserID)
		if err != nil {
			uc.logger.Warnw("stats cache read failed", "error", err, "user_id", query.UserID)
		} else if cached != nil && cached.PeriodMonth == periodMonth {
			return uc.fromCached(cached), nil
		}
	}

	result, err := uc.loadLive(ctx, query.UserID, now, periodMonth)
	if err != nil {
		return nil, err
	}

	uc.cacheResult(ctx, query.UserID, result)
	return result, nil
}

func (uc *GetUsageStatsUseCase) loadLive(ctx context.Context, userID string, now time.Time, periodMonth string) (*GetUsageStatsResult, error) {
	state := resolvePlanState(ctx, uc.stateSource, uc.logger, userID)
	tier := uc.resolver.EffectiveTier(state, now)
	limits := uc.resolver.EffectiveLimits(state, now)

	aggregate, err := uc.ledger.MonthlyAggregate(ctx, userID, periodMonth)
	if err != nil {
		uc.logger.Errorw("failed to read monthly aggregate", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load usage stats")
	}

	dailyUsed, err := uc.ledger.DailyCount(ctx, userID, biztime.DayKey(now))
	if err != nil {
		uc.logger.Errorw("failed to read daily count", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load usage stats")
	}

	analysisCount, err := uc.ledger.AnalysisCountForMonth(ctx, userID, periodMonth)
	if err != nil {
		uc.logger.Errorw("failed to read analysis count", "error", err, "user_id", userID)
		return nil, errors.NewInternalError("failed to load usage stats")
	}

	var startDate time.Time
	if state != nil {
		startDate = state.StartDate
	}

	monthlyUsed := int64(aggregate.TotalRequests())
	return &GetUsageStatsResult{
		Tier:          tier.String(),
		PeriodMonth:   periodMonth,
		MonthlyUsed:   monthlyUsed,
		MonthlyQuota:  limits.AIMonthlyQuota,
		Remaining:     remainingQuota(limits.AIMonthlyQuota, monthlyUsed),
		UsagePercent:  aggregate.UsagePercent(limits.AIMonthlyQuota),
		DailyUsed:     dailyUsed,
		DailyQuota:    limits.AIDailyQuota,
		AnalysisCount: analysisCount,
		TotalTokens:   aggregate.TotalTokens(),
		TotalCostUSD:  aggregate.TotalCostUSD(),
		ResetDate:     plan.ResetDate(startDate, now),
	}, nil
}

func (uc *GetUsageStatsUseCase) fromCached(cached *cache.CachedUsageStats) *GetUsageStatsResult {
	monthlyUsed := int64(cached.TotalRequests)

	return &GetUsageStatsResult{
		Tier:          cached.Tier,
		PeriodMonth:   cached.PeriodMonth,
		MonthlyUsed:   monthlyUsed,
		MonthlyQuota:  cached.MonthlyQuota,
		Remaining:     remainingQuota(cached.MonthlyQuota, monthlyUsed),
		UsagePercent:  usagePercent(cached.MonthlyQuota, monthlyUsed),
		DailyUsed:     cached.DailyCount,
		DailyQuota:    cached.DailyQuota,
		AnalysisCount: cached.AnalysisCount,
		TotalTokens:   cached.TotalTokens,
		TotalCostUSD:  cached.TotalCostUSD,
		ResetDate:     time.Unix(cached.ResetDateUnix, 0).UTC(),
	}
}

func (uc *GetUsageStatsUseCase) cacheResult(ctx context.Context, userID string, result *GetUsageStatsResult) {
	err := uc.statsCache.SetStats(ctx, userID, &cache.CachedUsageStats{
		Tier:          result.Tier,
		MonthlyQuota:  result.MonthlyQuota,
		DailyQuota:    result.DailyQuota,
		TotalRequests: uint64(result.MonthlyUsed),
		TotalTokens:   result.TotalTokens,
		TotalCostUSD:  result.TotalCostUSD,
		AnalysisCount: result.AnalysisCount,
		DailyCount:    result.DailyUsed,
		ResetDateUnix: result.ResetDate.Unix(),
		PeriodMonth:   result.PeriodMonth,
	})
	if err != nil {
		uc.logger.Warnw("failed to cache usage stats", "error", err, "user_id", userID)
	}
}

func remainingQuota(quota, used int64) int64 {
	if quota == plan.Unlimited {
		return plan.Unlimited
	}
	remaining := quota - used
	if remaining < 0 {
		return 0
	}
	return remaining
}

func usagePercent(quota, used int64) int {
	if quota < 0 {
		return -1
	}
	if quota == 0 {
		return 100
	}
	pct := int(used * 100 / quota)
	if pct > 100 {
		pct = 100
	}
	return pct
}
