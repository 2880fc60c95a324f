package plan

import (
	"context"
	"time"
)

// Status is the lifecycle state of a user's subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusCanceled || s == StatusExpired
}

// PendingDowngrade records a scheduled move to a lower tier. The transition
// is lazy: no background job flips the plan field, the resolver applies the
// downgrade once EffectiveDate has passed.
type PendingDowngrade struct {
	ToTier        Tier
	EffectiveDate time.Time
}

// UserPlanState is a per-user subscription snapshot. It is owned by the
// entitlement source (purchase validation and admin tooling); this package
// treats it as read-only input.
type UserPlanState struct {
	UserID           string
	Tier             Tier
	Status           Status
	StartDate        time.Time
	PendingDowngrade *PendingDowngrade
	IsTestAccount    bool
	TestOverrideTier *Tier
}

// StateSource looks up the subscription snapshot for a user. Purchase and
// receipt-validation flows write this state out-of-band.
type StateSource interface {
	GetUserPlanState(ctx context.Context, userID string) (*UserPlanState, error)
}
