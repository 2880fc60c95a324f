package models

import (
	"time"

	"pagemark/internal/shared/constants"
)

// UserPlanStateModel represents the database persistence model for a user's
// subscription snapshot. Written by the purchase/receipt-validation flow;
// the metering side only ever reads it.
type UserPlanStateModel struct {
	ID                     uint      `gorm:"primarykey"`
	UserID                 string    `gorm:"uniqueIndex;not null;size:128"`
	Tier                   string    `gorm:"not null;size:20;default:free"`
	Status                 string    `gorm:"not null;size:20;index:idx_plan_status"`
	StartDate              time.Time `gorm:"not null"`
	DowngradeToTier        *string   `gorm:"size:20"`
	DowngradeEffectiveDate *time.Time
	IsTestAccount          bool   `gorm:"not null;default:false"`
	TestOverrideTier       *string `gorm:"size:20"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// TableName specifies the table name for GORM
func (UserPlanStateModel) TableName() string {
	return constants.TableUserPlanStates
}
