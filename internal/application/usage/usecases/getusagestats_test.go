package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/cache"
	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/logger"
)

func newStatsUseCase(states map[string]*plan.UserPlanState, ledger *fakeLedger, statsCache *fakeStatsCache) *GetUsageStatsUseCase {
	return NewGetUsageStatsUseCase(
		&fakeStateSource{states: states},
		plan.NewResolver(nil),
		ledger,
		statsCache,
		logger.NewLogger(),
	)
}

func TestGetUsageStats_MissLoadsLiveAndCaches(t *testing.T) {
	ledger := newFakeLedger()
	require.NoError(t, ledger.seed("u1", usage.FeatureSummary, 2))
	require.NoError(t, ledger.seed("u1", usage.FeatureAnalysis, 1))
	statsCache := &fakeStatsCache{}
	uc := newStatsUseCase(nil, ledger, statsCache)

	result, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "free", result.Tier)
	assert.Equal(t, int64(3), result.MonthlyUsed)
	assert.Equal(t, int64(5), result.MonthlyQuota)
	assert.Equal(t, int64(2), result.Remaining)
	assert.Equal(t, 60, result.UsagePercent)
	assert.Equal(t, int64(3), result.DailyUsed)
	assert.Equal(t, int64(1), result.AnalysisCount)
	assert.Equal(t, biztime.MonthKey(time.Now().UTC()), result.PeriodMonth)
	assert.Equal(t, 1, statsCache.setCalls)
	require.NotNil(t, statsCache.entry)
	assert.Equal(t, uint64(3), statsCache.entry.TotalRequests)
}

func TestGetUsageStats_HitSkipsLedger(t *testing.T) {
	now := time.Now().UTC()
	ledger := newFakeLedger()
	ledger.readErr = assertAnError() // a ledger read would fail the test
	statsCache := &fakeStatsCache{entry: &cache.CachedUsageStats{
		Tier:          "plus",
		MonthlyQuota:  50,
		DailyQuota:    10,
		TotalRequests: 20,
		TotalTokens:   4000,
		TotalCostUSD:  0.25,
		AnalysisCount: 6,
		DailyCount:    3,
		ResetDateUnix: now.AddDate(0, 1, 0).Unix(),
		PeriodMonth:   biztime.MonthKey(now),
	}}
	uc := newStatsUseCase(nil, ledger, statsCache)

	result, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "plus", result.Tier)
	assert.Equal(t, int64(20), result.MonthlyUsed)
	assert.Equal(t, int64(50), result.MonthlyQuota)
	assert.Equal(t, int64(30), result.Remaining)
	assert.Equal(t, 40, result.UsagePercent)
	assert.Equal(t, int64(3), result.DailyUsed)
	assert.Equal(t, uint64(4000), result.TotalTokens)
	assert.Zero(t, statsCache.setCalls, "a cache hit must not rewrite the entry")
}

func TestGetUsageStats_StaleMonthEntryIgnored(t *testing.T) {
	ledger := newFakeLedger()
	statsCache := &fakeStatsCache{entry: &cache.CachedUsageStats{
		Tier:          "plus",
		MonthlyQuota:  50,
		TotalRequests: 49,
		PeriodMonth:   "2020-01", // left over from a previous month
	}}
	uc := newStatsUseCase(nil, ledger, statsCache)

	result, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, "free", result.Tier)
	assert.Zero(t, result.MonthlyUsed, "stale-month entries must not leak into the new period")
	assert.Equal(t, 1, statsCache.setCalls)
}

func TestGetUsageStats_ForceRefreshBypassesCache(t *testing.T) {
	now := time.Now().UTC()
	ledger := newFakeLedger()
	require.NoError(t, ledger.seed("u1", usage.FeatureSummary, 4))
	statsCache := &fakeStatsCache{entry: &cache.CachedUsageStats{
		Tier:          "free",
		MonthlyQuota:  5,
		TotalRequests: 1,
		PeriodMonth:   biztime.MonthKey(now),
	}}
	uc := newStatsUseCase(nil, ledger, statsCache)

	result, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "u1", ForceRefresh: true})
	require.NoError(t, err)

	assert.Equal(t, int64(4), result.MonthlyUsed)
	assert.Equal(t, 1, statsCache.setCalls)
}

func TestGetUsageStats_CacheReadFailureFallsThrough(t *testing.T) {
	ledger := newFakeLedger()
	require.NoError(t, ledger.seed("u1", usage.FeatureSummary, 1))
	statsCache := &fakeStatsCache{getErr: assertAnError()}
	uc := newStatsUseCase(nil, ledger, statsCache)

	result, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.MonthlyUsed)
}

func TestGetUsageStats_TestAccountQuotaSurvivesCacheRoundTrip(t *testing.T) {
	ledger := newFakeLedger()
	statsCache := &fakeStatsCache{}
	states := map[string]*plan.UserPlanState{
		"tester": {
			UserID:        "tester",
			Tier:          plan.TierFree,
			Status:        plan.StatusActive,
			StartDate:     time.Now().UTC().AddDate(0, -1, 0),
			IsTestAccount: true,
		},
	}
	uc := newStatsUseCase(states, ledger, statsCache)

	first, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "tester"})
	require.NoError(t, err)
	assert.Equal(t, plan.TestAccountAIQuota, first.MonthlyQuota)

	// Second read is served from the cache and must keep the override.
	ledger.readErr = assertAnError()
	second, err := uc.Execute(context.Background(), GetUsageStatsQuery{UserID: "tester"})
	require.NoError(t, err)
	assert.Equal(t, plan.TestAccountAIQuota, second.MonthlyQuota)
}

func TestGetUsageStats_RequiresUserID(t *testing.T) {
	uc := newStatsUseCase(nil, newFakeLedger(), &fakeStatsCache{})
	_, err := uc.Execute(context.Background(), GetUsageStatsQuery{})
	require.Error(t, err)
}
