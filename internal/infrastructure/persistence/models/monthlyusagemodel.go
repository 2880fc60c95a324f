package models

import (
	"time"

	"pagemark/internal/shared/constants"
)

// MonthlyUsageModel represents the database persistence model for per-user
// monthly usage rollups. One row per user per calendar month; counters are
// maintained by atomic upserts in the same transaction as the event insert.
type MonthlyUsageModel struct {
	ID            uint    `gorm:"primarykey"`
	UserID        string  `gorm:"not null;size:128;uniqueIndex:idx_user_period,priority:1"`
	PeriodMonth   string  `gorm:"not null;size:7;uniqueIndex:idx_user_period,priority:2"` // "YYYY-MM"
	TotalRequests uint64  `gorm:"not null;default:0"`
	TotalTokens   uint64  `gorm:"not null;default:0"`
	TotalCostUSD  float64 `gorm:"not null;default:0"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (MonthlyUsageModel) TableName() string {
	return constants.TableMonthlyUsage
}
