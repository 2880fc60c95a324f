package usage

import (
	"fmt"
	"time"
)

// MonthlyAggregate is the denormalized per-user-per-month usage rollup that
// makes quota checks O(1). It is maintained by atomic increments alongside
// every event write, never recomputed by scanning events.
type MonthlyAggregate struct {
	userID        string
	periodMonth   string // "YYYY-MM"
	totalRequests uint64
	totalTokens   uint64
	totalCostUSD  float64
	lastUpdated   time.Time
}

// ZeroAggregate returns an empty aggregate for the given user and month.
// "No usage this month" is a valid, common state, not an exceptional one.
func ZeroAggregate(userID, periodMonth string) *MonthlyAggregate {
	return &MonthlyAggregate{
		userID:      userID,
		periodMonth: periodMonth,
	}
}

// ReconstructMonthlyAggregate reconstructs an aggregate from persistence.
func ReconstructMonthlyAggregate(
	userID string,
	periodMonth string,
	totalRequests uint64,
	totalTokens uint64,
	totalCostUSD float64,
	lastUpdated time.Time,
) (*MonthlyAggregate, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if periodMonth == "" {
		return nil, fmt.Errorf("period month is required")
	}

	return &MonthlyAggregate{
		userID:        userID,
		periodMonth:   periodMonth,
		totalRequests: totalRequests,
		totalTokens:   totalTokens,
		totalCostUSD:  totalCostUSD,
		lastUpdated:   lastUpdated,
	}, nil
}

func (a *MonthlyAggregate) UserID() string {
	return a.userID
}

func (a *MonthlyAggregate) PeriodMonth() string {
	return a.periodMonth
}

func (a *MonthlyAggregate) TotalRequests() uint64 {
	return a.totalRequests
}

func (a *MonthlyAggregate) TotalTokens() uint64 {
	return a.totalTokens
}

func (a *MonthlyAggregate) TotalCostUSD() float64 {
	return a.totalCostUSD
}

func (a *MonthlyAggregate) LastUpdated() time.Time {
	return a.lastUpdated
}

// HasUsage checks if any usage was recorded this month.
func (a *MonthlyAggregate) HasUsage() bool {
	return a.totalRequests > 0
}

// UsagePercent returns the share of the monthly quota consumed, as an
// integer 0-100 (capped), or -1 for an unlimited quota.
func (a *MonthlyAggregate) UsagePercent(monthlyQuota int64) int {
	if monthlyQuota < 0 {
		return -1
	}
	if monthlyQuota == 0 {
		return 100
	}
	pct := int(a.totalRequests * 100 / uint64(monthlyQuota))
	if pct > 100 {
		pct = 100
	}
	return pct
}
