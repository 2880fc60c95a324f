package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagemark/internal/domain/usage"
	"pagemark/internal/shared/logger"
)

func statsSnapshot(tier string, used, quota int64, cost float64) *GetUsageStatsResult {
	return &GetUsageStatsResult{
		Tier:         tier,
		MonthlyUsed:  used,
		MonthlyQuota: quota,
		UsagePercent: usagePercent(quota, used),
		TotalCostUSD: cost,
		ResetDate:    time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC),
	}
}

func kinds(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Kind)
	}
	return out
}

func TestBuildRecommendations(t *testing.T) {
	tests := []struct {
		name  string
		stats *GetUsageStatsResult
		want  []string
	}{
		{"idle free user", statsSnapshot("free", 1, 5, 0.01), []string{}},
		{"free at exactly 80 percent", statsSnapshot("free", 4, 5, 0.02), []string{"approaching_limit"}},
		{"free between 50 and 80 percent", statsSnapshot("free", 3, 5, 0.02), []string{"upgrade"}},
		{"free at exactly 50 percent", statsSnapshot("free", 25, 50, 0.02), []string{}},
		{"plus near limit", statsSnapshot("plus", 45, 50, 1.5), []string{"approaching_limit"}},
		{"pro near limit has no next tier", statsSnapshot("pro", 190, 200, 5.0), []string{"approaching_limit"}},
		{"plus heavy spender", statsSnapshot("plus", 10, 50, 12.5), []string{"heavy_use"}},
		{"pro heavy spender not nagged", statsSnapshot("pro", 10, 200, 40.0), []string{}},
		{"cost at exactly ten dollars", statsSnapshot("plus", 10, 50, 10.0), []string{}},
		{"near limit and heavy", statsSnapshot("plus", 48, 50, 20.0), []string{"approaching_limit", "heavy_use"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(BuildRecommendations(tt.stats)))
		})
	}
}

func TestBuildRecommendations_ApproachingLimitTargets(t *testing.T) {
	recs := BuildRecommendations(statsSnapshot("free", 5, 5, 0.02))
	require.Len(t, recs, 1)
	assert.Equal(t, "plus", recs[0].ToTier)
	assert.Contains(t, recs[0].Message, "100%")

	recs = BuildRecommendations(statsSnapshot("pro", 200, 200, 5.0))
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].ToTier, "the top tier has nothing to upgrade to")
	assert.Contains(t, recs[0].Message, "Sep 11", "top-tier users are pointed at the reset date")
}

func TestBuildRecommendations_UnlimitedQuotaSkipsLimitRule(t *testing.T) {
	stats := statsSnapshot("pro", 5000, -1, 2.0)
	assert.Empty(t, BuildRecommendations(stats))
}

func TestGetRecommendations_ReadsStats(t *testing.T) {
	ledger := newFakeLedger()
	require.NoError(t, ledger.seed("u1", usage.FeatureSummary, 4)) // 80% of free quota
	statsUC := newStatsUseCase(nil, ledger, &fakeStatsCache{})
	uc := NewGetRecommendationsUseCase(statsUC, logger.NewLogger())

	recs, err := uc.Execute(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "approaching_limit", recs[0].Kind)
	assert.Equal(t, "plus", recs[0].ToTier)
}

func TestGetRecommendations_PropagatesStatsError(t *testing.T) {
	statsUC := newStatsUseCase(nil, newFakeLedger(), &fakeStatsCache{})
	uc := NewGetRecommendationsUseCase(statsUC, logger.NewLogger())

	_, err := uc.Execute(context.Background(), "")
	require.Error(t, err)
}
