// Package usage provides a Go SDK for the Pagemark usage metering API.
package usage

import "time"

// CheckResult is the outcome of a quota pre-check.
type CheckResult struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	Tier         string `json:"tier"`
	MonthlyUsed  int64  `json:"monthly_used"`
	MonthlyQuota int64  `json:"monthly_quota"`
	DailyUsed    int64  `json:"daily_used"`
	DailyQuota   int64  `json:"daily_quota"`

	// FeatureDailyUsed counts today's events of the checked feature only.
	FeatureDailyUsed int64 `json:"feature_daily_used"`

	ResetDate time.Time `json:"reset_date"`
}

// RecordRequest describes one consumed AI call.
type RecordRequest struct {
	IdempotencyKey string  `json:"idempotency_key"`
	FeatureType    string  `json:"feature_type"`
	TokensUsed     uint64  `json:"tokens_used"`
	CostUSD        float64 `json:"cost_usd"`
	ModelID        string  `json:"model_id,omitempty"`

	// Metadata is free-form audit data stored with the event.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// RecordResult is the outcome of recording a usage event.
type RecordResult struct {
	SID         string `json:"sid"`
	Duplicate   bool   `json:"duplicate"`
	MonthlyUsed int64  `json:"monthly_used"`
}

// Stats is the current-month usage view.
type Stats struct {
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

// Recommendation is one plan suggestion derived from usage patterns.
type Recommendation struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	ToTier  string `json:"to_tier,omitempty"`
}

// PlanLimits mirrors the per-tier resource and AI-quota constraints.
type PlanLimits struct {
	MaxLinks       int64 `json:"max_links"`
	MaxLinksPerDay int64 `json:"max_links_per_day"`
	MaxTags        int64 `json:"max_tags"`
	AIMonthlyQuota int64 `json:"ai_monthly_quota"`
	AIDailyQuota   int64 `json:"ai_daily_quota"`
	Features       struct {
		CustomReminders bool `json:"custom_reminders"`
		AdvancedSearch  bool `json:"advanced_search"`
		DataExport      bool `json:"data_export"`
	} `json:"features"`
}

// PlanPricing mirrors the per-tier price.
type PlanPricing struct {
	AmountCents uint64 `json:"amount_cents"`
	Currency    string `json:"currency"`
	Period      string `json:"period"`
}

// Plan describes one tier of the public catalog.
type Plan struct {
	Tier    string      `json:"tier"`
	Limits  PlanLimits  `json:"limits"`
	Pricing PlanPricing `json:"pricing"`
}

// AnalysisRequest describes one server-mediated deep-dive analysis.
type AnalysisRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
	Prompt         string `json:"prompt"`
	ContextURL     string `json:"context_url,omitempty"`
}

// AnalysisResult is an accepted analysis.
type AnalysisResult struct {
	Text         string `json:"text"`
	HTML         string `json:"html"`
	TokensUsed   uint64 `json:"tokens_used"`
	ModelID      string `json:"model_id"`
	UsageCounted bool   `json:"usage_counted"`
}
