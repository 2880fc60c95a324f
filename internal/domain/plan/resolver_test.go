package plan

import (
	"testing"
	"time"
)

func TestResolverEffectiveTier(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)
	proTier := TierPro
	plusTier := TierPlus

	tests := []struct {
		name  string
		state *UserPlanState
		want  Tier
	}{
		{
			name:  "nil state resolves to free",
			state: nil,
			want:  TierFree,
		},
		{
			name:  "empty tier resolves to free",
			state: &UserPlanState{UserID: "u1"},
			want:  TierFree,
		},
		{
			name:  "stored tier returned as-is",
			state: &UserPlanState{UserID: "u1", Tier: TierPlus},
			want:  TierPlus,
		},
		{
			name:  "unknown tier degrades to free",
			state: &UserPlanState{UserID: "u1", Tier: Tier("enterprise")},
			want:  TierFree,
		},
		{
			name:  "test account without override defaults to pro",
			state: &UserPlanState{UserID: "u1", Tier: TierFree, IsTestAccount: true},
			want:  TierPro,
		},
		{
			name:  "test account explicit override wins",
			state: &UserPlanState{UserID: "u1", Tier: TierPro, IsTestAccount: true, TestOverrideTier: &plusTier},
			want:  TierPlus,
		},
		{
			name:  "test account allowlist entry used when no explicit override",
			state: &UserPlanState{UserID: "allowlisted", Tier: TierFree, IsTestAccount: true},
			want:  TierPlus,
		},
		{
			name: "pending downgrade in the past applies",
			state: &UserPlanState{
				UserID: "u1", Tier: TierPlus,
				PendingDowngrade: &PendingDowngrade{ToTier: TierFree, EffectiveDate: yesterday},
			},
			want: TierFree,
		},
		{
			name: "pending downgrade in the future does not apply",
			state: &UserPlanState{
				UserID: "u1", Tier: TierPlus,
				PendingDowngrade: &PendingDowngrade{ToTier: TierFree, EffectiveDate: tomorrow},
			},
			want: TierPlus,
		},
		{
			name: "pending downgrade exactly at now applies",
			state: &UserPlanState{
				UserID: "u1", Tier: TierPlus,
				PendingDowngrade: &PendingDowngrade{ToTier: TierFree, EffectiveDate: now},
			},
			want: TierFree,
		},
		{
			name: "test account override beats pending downgrade",
			state: &UserPlanState{
				UserID: "u1", Tier: TierPlus, IsTestAccount: true, TestOverrideTier: &proTier,
				PendingDowngrade: &PendingDowngrade{ToTier: TierFree, EffectiveDate: yesterday},
			},
			want: TierPro,
		},
	}

	resolver := NewResolver(map[string]Tier{"allowlisted": TierPlus})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.EffectiveTier(tt.state, now)
			if got != tt.want {
				t.Errorf("EffectiveTier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolverDowngradeLazyTransition(t *testing.T) {
	effective := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	state := &UserPlanState{
		UserID: "u1",
		Tier:   TierPlus,
		PendingDowngrade: &PendingDowngrade{
			ToTier:        TierFree,
			EffectiveDate: effective,
		},
	}

	resolver := NewResolver(nil)

	// The same snapshot resolves differently on either side of the
	// effective date; nothing mutates the stored tier.
	if got := resolver.EffectiveTier(state, effective.AddDate(0, 0, -1)); got != TierPlus {
		t.Errorf("before effective date: got %v, want %v", got, TierPlus)
	}
	if got := resolver.EffectiveTier(state, effective.AddDate(0, 0, 1)); got != TierFree {
		t.Errorf("after effective date: got %v, want %v", got, TierFree)
	}
	if state.Tier != TierPlus {
		t.Errorf("stored tier mutated to %v", state.Tier)
	}
}

func TestResolverEffectiveLimits(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	resolver := NewResolver(nil)

	t.Run("regular user gets catalog limits", func(t *testing.T) {
		state := &UserPlanState{UserID: "u1", Tier: TierFree}
		limits := resolver.EffectiveLimits(state, now)
		if limits.AIMonthlyQuota != 5 {
			t.Errorf("AIMonthlyQuota = %d, want 5", limits.AIMonthlyQuota)
		}
		if limits.MaxLinks != 100 {
			t.Errorf("MaxLinks = %d, want 100", limits.MaxLinks)
		}
	})

	t.Run("test account gets unbounded limits", func(t *testing.T) {
		state := &UserPlanState{UserID: "u1", Tier: TierFree, IsTestAccount: true}
		limits := resolver.EffectiveLimits(state, now)
		if limits.MaxLinks != Unlimited {
			t.Errorf("MaxLinks = %d, want Unlimited", limits.MaxLinks)
		}
		if limits.MaxTags != Unlimited {
			t.Errorf("MaxTags = %d, want Unlimited", limits.MaxTags)
		}
		if limits.AIMonthlyQuota != TestAccountAIQuota {
			t.Errorf("AIMonthlyQuota = %d, want %d", limits.AIMonthlyQuota, TestAccountAIQuota)
		}
	})
}
