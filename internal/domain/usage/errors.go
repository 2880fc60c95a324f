package usage

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateEvent signals an idempotency-key replay. The original
	// write already counted; callers treat this as success.
	ErrDuplicateEvent = errors.New("usage event already recorded")

	ErrQuotaExceeded = errors.New("usage quota exceeded")
)

// ErrMonthlyLimitReached builds the user-facing monthly refusal reason.
func ErrMonthlyLimitReached(quota int64) error {
	return fmt.Errorf("%w: monthly limit reached (%d/month)", ErrQuotaExceeded, quota)
}

// ErrDailyLimitReached builds the user-facing daily refusal reason.
func ErrDailyLimitReached(quota int64) error {
	return fmt.Errorf("%w: daily limit reached (%d/day)", ErrQuotaExceeded, quota)
}
