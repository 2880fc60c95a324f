// Package biztime provides utilities for business timezone calculations.
// All storage and transport use UTC. The business timezone is only used to
// derive billing-period keys (month and day boundaries) so that a user's
// usage day rolls over at their local midnight, not at UTC midnight.
//
// Design principles:
// - All time storage is in UTC
// - Period keys must be derived through the business timezone
// - Implicit Local timezone is prohibited
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "UTC"

	// MonthKeyLayout is the period key layout for monthly aggregates.
	MonthKeyLayout = "2006-01"
	// DayKeyLayout is the period key layout for daily counts.
	DayKeyLayout = "2006-01-02"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to UTC.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, auto-initializing with
// the default timezone if Init was never called.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// MonthKey returns the "YYYY-MM" period key for t in the business timezone.
func MonthKey(t time.Time) string {
	return t.In(Location()).Format(MonthKeyLayout)
}

// DayKey returns the "YYYY-MM-DD" period key for t in the business timezone.
func DayKey(t time.Time) string {
	return t.In(Location()).Format(DayKeyLayout)
}

// CurrentMonthKey returns the period key for the current month.
func CurrentMonthKey() string {
	return MonthKey(NowUTC())
}

// CurrentDayKey returns the period key for the current day.
func CurrentDayKey() string {
	return DayKey(NowUTC())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateClamped builds a date in the business timezone, clamping day to the
// last day of the month when the month is shorter (e.g. day 31 in February).
func DateClamped(year int, month time.Month, day int) time.Time {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, Location())
}

// StartOfDayUTC returns the start of day (00:00:00) in the business timezone,
// converted to UTC for storage and queries.
func StartOfDayUTC(t time.Time) time.Time {
	bizTime := t.In(Location())
	startOfDay := time.Date(bizTime.Year(), bizTime.Month(), bizTime.Day(), 0, 0, 0, 0, Location())
	return startOfDay.UTC()
}

// StartOfMonthUTC returns the start of month in the business timezone,
// converted to UTC.
func StartOfMonthUTC(year int, month time.Month) time.Time {
	startOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, Location())
	return startOfMonth.UTC()
}

// ToBizTimezone converts a UTC time to the business timezone for display.
func ToBizTimezone(t time.Time) time.Time {
	return t.In(Location())
}
