package models

import (
	"time"

	"gorm.io/datatypes"

	"pagemark/internal/shared/constants"
)

// UsageEventModel represents the database persistence model for AI usage events
// This is the anti-corruption layer between domain and database
type UsageEventModel struct {
	ID             uint      `gorm:"primarykey"`
	SID            string    `gorm:"uniqueIndex;not null;size:50;comment:Stripe-style ID: uevt_xxx"`
	UserID         string    `gorm:"not null;size:128;index:idx_user_month,priority:1;index:idx_user_day,priority:1"`
	IdempotencyKey string    `gorm:"uniqueIndex;not null;size:64;comment:client-generated UUID, one per AI invocation"`
	FeatureType    string    `gorm:"not null;size:20;index:idx_feature"`
	TokensUsed     uint64    `gorm:"not null;default:0"`
	CostUSD        float64   `gorm:"not null;default:0;comment:estimated provider cost in USD"`
	ModelID        string    `gorm:"size:100"`
	OccurredAt     time.Time `gorm:"not null"`
	PeriodMonth    string    `gorm:"not null;size:7;index:idx_user_month,priority:2"` // "YYYY-MM"
	PeriodDay      string    `gorm:"not null;size:10;index:idx_user_day,priority:2"`  // "YYYY-MM-DD"
	Metadata       datatypes.JSON
	CreatedAt      time.Time

	// Note: No foreign key constraints or associations.
	// All relationships are managed by application business logic.
}

// TableName specifies the table name for GORM
func (UsageEventModel) TableName() string {
	return constants.TableUsageEvents
}
