package plan

import (
	"time"

	"pagemark/internal/shared/biztime"
)

// fallbackAnchorDay is used when a plan start date is missing or malformed.
// The entitlement source validates start dates at write time, so this is a
// terminal safety net rather than an expected path.
const fallbackAnchorDay = 11

// ResetDate computes the next AI-quota reset date, anchored to the
// day-of-month the user's plan period started. Purchases happen on any day,
// so renewal follows the subscription anniversary rather than a calendar
// month boundary.
//
// The candidate reset is (current year, current month, anchor day); if that
// is not after now, it advances one month. When the target month is shorter
// than the anchor day (day 31 in February), the date clamps to the last day
// of that month instead of rolling over.
func ResetDate(startDate, now time.Time) time.Time {
	anchorDay := fallbackAnchorDay
	if !startDate.IsZero() {
		anchorDay = startDate.In(biztime.Location()).Day()
	}

	bizNow := now.In(biztime.Location())

	candidate := biztime.DateClamped(bizNow.Year(), bizNow.Month(), anchorDay)
	if !candidate.After(bizNow) {
		year, month := bizNow.Year(), bizNow.Month()+1
		if month > time.December {
			year++
			month = time.January
		}
		candidate = biztime.DateClamped(year, month, anchorDay)
	}

	return candidate.UTC()
}
