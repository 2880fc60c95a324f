// Package usecases provides application-level use cases for AI usage
// metering: quota checks, usage recording, stats and the analysis flow.
package usecases

import (
	"context"
	"errors"
	"fmt"

	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/logger"
)

// quotaEvaluation is one point-in-time quota decision against live ledger
// state. Both the optimistic pre-check and the authoritative re-check before
// a billable write go through here, so the two can never disagree on rules.
type quotaEvaluation struct {
	tier        plan.Tier
	limits      plan.Limits
	state       *plan.UserPlanState
	monthlyUsed int64
	dailyUsed   int64
	allowed     bool
	reason      string
}

// resolvePlanState loads the user's subscription snapshot, degrading to nil
// (free tier) on any failure. Plan resolution must always be computable:
// broken subscription metadata never blocks the gating decision.
func resolvePlanState(ctx context.Context, stateSource plan.StateSource, log logger.Interface, userID string) *plan.UserPlanState {
	state, err := stateSource.GetUserPlanState(ctx, userID)
	if err != nil {
		if !errors.Is(err, plan.ErrStateNotFound) {
			log.Warnw("plan state lookup failed, defaulting to free tier",
				"error", err, "user_id", userID)
		}
		return nil
	}
	return state
}

// evaluateQuota re-reads live aggregate state and applies the plan's
// monthly then daily quota rules.
func evaluateQuota(
	ctx context.Context,
	stateSource plan.StateSource,
	resolver *plan.Resolver,
	ledger usage.LedgerRepository,
	log logger.Interface,
	userID string,
) (*quotaEvaluation, error) {
	now := biztime.NowUTC()
	state := resolvePlanState(ctx, stateSource, log, userID)

	eval := &quotaEvaluation{
		tier:   resolver.EffectiveTier(state, now),
		limits: resolver.EffectiveLimits(state, now),
		state:  state,
	}

	aggregate, err := ledger.MonthlyAggregate(ctx, userID, biztime.MonthKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to read monthly aggregate: %w", err)
	}
	eval.monthlyUsed = int64(aggregate.TotalRequests())

	dailyCount, err := ledger.DailyCount(ctx, userID, biztime.DayKey(now))
	if err != nil {
		return nil, fmt.Errorf("failed to read daily count: %w", err)
	}
	eval.dailyUsed = dailyCount

	// Monthly quota is checked before daily so the user-facing reason
	// names the binding constraint.
	if !eval.limits.AllowsAIRequests(eval.monthlyUsed) {
		eval.reason = usage.ErrMonthlyLimitReached(eval.limits.AIMonthlyQuota).Error()
		return eval, nil
	}
	if !eval.limits.AllowsAIRequestsToday(eval.dailyUsed) {
		eval.reason = usage.ErrDailyLimitReached(eval.limits.AIDailyQuota).Error()
		return eval, nil
	}

	eval.allowed = true
	return eval, nil
}
