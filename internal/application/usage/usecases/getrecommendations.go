package usecases

import (
	"context"
	"fmt"

	"pagemark/internal/domain/plan"
	"pagemark/internal/shared/logger"
)

// heavyUseCostUSD is the monthly provider cost above which a user is
// considered heavy enough to suggest the top tier.
const heavyUseCostUSD = 10.0

// Recommendation is one actionable suggestion derived from usage patterns.
type Recommendation struct {
	Kind    string `json:"kind"` // upgrade, approaching_limit, heavy_use
	Message string `json:"message"`
	ToTier  string `json:"to_tier,omitempty"`
}

// GetRecommendationsUseCase derives plan suggestions from the current-month
// stats. Purely advisory: it never influences the gating decision.
type GetRecommendationsUseCase struct {
	statsUseCase *GetUsageStatsUseCase
	logger       logger.Interface
}

func NewGetRecommendationsUseCase(statsUseCase *GetUsageStatsUseCase, logger logger.Interface) *GetRecommendationsUseCase {
	return &GetRecommendationsUseCase{
		statsUseCase: statsUseCase,
		logger:       logger,
	}
}

// Execute returns recommendations for the user, possibly empty.
func (uc *GetRecommendationsUseCase) Execute(ctx context.Context, userID string) ([]Recommendation, error) {
	stats, err := uc.statsUseCase.Execute(ctx, GetUsageStatsQuery{UserID: userID})
	if err != nil {
		return nil, err
	}

	return BuildRecommendations(stats), nil
}

// BuildRecommendations applies the recommendation rules to a stats snapshot.
func BuildRecommendations(stats *GetUsageStatsResult) []Recommendation {
	recs := make([]Recommendation, 0, 2)
	tier := plan.ParseTier(stats.Tier)

	if stats.UsagePercent >= 80 && stats.MonthlyQuota != plan.Unlimited {
		if next, ok := nextTier(tier); ok {
			recs = append(recs, Recommendation{
				Kind: "approaching_limit",
				Message: fmt.Sprintf("You've used %d%% of your monthly AI quota (%d/%d). Upgrading to %s raises your limit.",
					stats.UsagePercent, stats.MonthlyUsed, stats.MonthlyQuota, next),
				ToTier: next.String(),
			})
		} else {
			recs = append(recs, Recommendation{
				Kind: "approaching_limit",
				Message: fmt.Sprintf("You've used %d%% of your monthly AI quota (%d/%d). Your quota resets on %s.",
					stats.UsagePercent, stats.MonthlyUsed, stats.MonthlyQuota, stats.ResetDate.Format("Jan 2")),
			})
		}
	}

	if stats.TotalCostUSD > heavyUseCostUSD && tier != plan.TierPro {
		recs = append(recs, Recommendation{
			Kind:    "heavy_use",
			Message: "Your usage pattern suggests you'd get more out of the Pro plan.",
			ToTier:  plan.TierPro.String(),
		})
	}

	if tier == plan.TierFree && stats.UsagePercent > 50 && stats.UsagePercent < 80 {
		recs = append(recs, Recommendation{
			Kind:    "upgrade",
			Message: "You're making good use of AI features. Plus gives you ten times the monthly quota.",
			ToTier:  plan.TierPlus.String(),
		})
	}

	return recs
}

func nextTier(tier plan.Tier) (plan.Tier, bool) {
	switch tier {
	case plan.TierFree:
		return plan.TierPlus, true
	case plan.TierPlus:
		return plan.TierPro, true
	default:
		return "", false
	}
}
