package plan

// Unlimited represents a resource with no limit (-1).
const Unlimited int64 = -1

// TestAccountAIQuota is the effective AI monthly quota granted to unlimited
// test accounts. A very large integer rather than true infinity keeps all
// quota arithmetic total.
const TestAccountAIQuota int64 = 1 << 31

// Features describes the feature flags enabled for a plan tier.
type Features struct {
	CustomReminders bool `json:"custom_reminders"`
	AdvancedSearch  bool `json:"advanced_search"`
	DataExport      bool `json:"data_export"`
}

// Limits describes the resource and AI-quota constraints of a plan tier.
type Limits struct {
	MaxLinks       int64    `json:"max_links"`
	MaxLinksPerDay int64    `json:"max_links_per_day"`
	MaxTags        int64    `json:"max_tags"`
	AIMonthlyQuota int64    `json:"ai_monthly_quota"`
	AIDailyQuota   int64    `json:"ai_daily_quota"`
	Features       Features `json:"features"`
}

// AllowsAIRequests reports whether count more AI requests this month stay
// within the monthly quota.
func (l Limits) AllowsAIRequests(usedThisMonth int64) bool {
	if l.AIMonthlyQuota == Unlimited {
		return true
	}
	return usedThisMonth < l.AIMonthlyQuota
}

// AllowsAIRequestsToday reports whether one more AI request today stays
// within the daily quota.
func (l Limits) AllowsAIRequestsToday(usedToday int64) bool {
	if l.AIDailyQuota == Unlimited {
		return true
	}
	return usedToday < l.AIDailyQuota
}

// Pricing describes the price of a plan tier.
type Pricing struct {
	AmountCents uint64 `json:"amount_cents"`
	Currency    string `json:"currency"`
	Period      string `json:"period"`
}
