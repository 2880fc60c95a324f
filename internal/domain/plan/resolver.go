package plan

import "time"

// Resolver computes the effective plan tier and limits for a user at a given
// instant. It never returns an error: the AI-gating decision must always be
// computable, so malformed input degrades to documented defaults instead of
// blocking the user on broken metadata.
type Resolver struct {
	// testAccounts maps user UIDs to tier overrides. UID is the canonical
	// key for test-account identification; email matching is not supported
	// because addresses are user-editable.
	testAccounts map[string]Tier
}

// NewResolver creates a Resolver with the given test-account allowlist.
// A nil allowlist is valid.
func NewResolver(testAccounts map[string]Tier) *Resolver {
	return &Resolver{testAccounts: testAccounts}
}

// EffectiveTier returns the tier in force for the user at now.
//
// Precedence: test-account override, then a pending downgrade whose
// effective date has passed, then the stored tier. A nil state resolves
// to free.
func (r *Resolver) EffectiveTier(state *UserPlanState, now time.Time) Tier {
	if state == nil {
		return TierFree
	}

	if state.IsTestAccount {
		if state.TestOverrideTier != nil && state.TestOverrideTier.IsValid() {
			return *state.TestOverrideTier
		}
		if tier, ok := r.testAccounts[state.UserID]; ok && tier.IsValid() {
			return tier
		}
		// Flagged test without an explicit override: highest tier.
		return TierPro
	}

	if state.PendingDowngrade != nil && !now.Before(state.PendingDowngrade.EffectiveDate) {
		return ParseTier(string(state.PendingDowngrade.ToTier))
	}

	if !state.Tier.IsValid() {
		return TierFree
	}
	return state.Tier
}

// EffectiveLimits returns the limits in force for the user at now. Test
// accounts get unbounded link/tag limits and a very large AI quota.
func (r *Resolver) EffectiveLimits(state *UserPlanState, now time.Time) Limits {
	limits := LimitsFor(r.EffectiveTier(state, now))

	if state != nil && state.IsTestAccount {
		limits.MaxLinks = Unlimited
		limits.MaxTags = Unlimited
		limits.AIMonthlyQuota = TestAccountAIQuota
	}

	return limits
}
