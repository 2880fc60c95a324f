package plan

// The catalog is compile-time constant data: tiers and their limits are
// defined at build time and never mutated at runtime.

var catalog = map[Tier]Limits{
	TierFree: {
		MaxLinks:       100,
		MaxLinksPerDay: 10,
		MaxTags:        10,
		AIMonthlyQuota: 5,
		AIDailyQuota:   3,
		Features:       Features{},
	},
	TierPlus: {
		MaxLinks:       1000,
		MaxLinksPerDay: 50,
		MaxTags:        50,
		AIMonthlyQuota: 50,
		AIDailyQuota:   10,
		Features: Features{
			CustomReminders: true,
			AdvancedSearch:  true,
		},
	},
	TierPro: {
		MaxLinks:       Unlimited,
		MaxLinksPerDay: 200,
		MaxTags:        Unlimited,
		AIMonthlyQuota: 200,
		AIDailyQuota:   30,
		Features: Features{
			CustomReminders: true,
			AdvancedSearch:  true,
			DataExport:      true,
		},
	},
}

var pricing = map[Tier]Pricing{
	TierFree: {AmountCents: 0, Currency: "USD", Period: "month"},
	TierPlus: {AmountCents: 299, Currency: "USD", Period: "month"},
	TierPro:  {AmountCents: 799, Currency: "USD", Period: "month"},
}

// LimitsFor returns the limits for a tier. Unknown tiers resolve to the
// free tier's limits so the lookup is total.
func LimitsFor(tier Tier) Limits {
	if limits, ok := catalog[tier]; ok {
		return limits
	}
	return catalog[TierFree]
}

// PricingFor returns the pricing for a tier. Unknown tiers resolve to the
// free tier's pricing.
func PricingFor(tier Tier) Pricing {
	if p, ok := pricing[tier]; ok {
		return p
	}
	return pricing[TierFree]
}

// Tiers returns all known tiers in ascending order of capability.
func Tiers() []Tier {
	return []Tier{TierFree, TierPlus, TierPro}
}
