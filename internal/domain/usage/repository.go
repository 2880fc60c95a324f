package usage

import "context"

// PageFilter bounds listing queries.
type PageFilter struct {
	Page     int
	PageSize int
}

// LedgerRepository is the persistence port for the usage ledger: the
// append-only event log plus the per-month aggregates.
type LedgerRepository interface {
	// AppendEvent writes the immutable event and atomically increments the
	// matching monthly aggregate in the same transaction, creating the
	// aggregate row when absent. A replayed idempotency key returns
	// ErrDuplicateEvent and leaves the aggregate untouched.
	AppendEvent(ctx context.Context, event *Event) error

	// MonthlyAggregate point-reads the aggregate for (userID, periodMonth).
	// Returns a zero-valued aggregate when none exists yet.
	MonthlyAggregate(ctx context.Context, userID, periodMonth string) (*MonthlyAggregate, error)

	// DailyCount counts events for (userID, periodDay). A scan is fine
	// here: daily volumes stay in the tens under any plan's daily quota.
	DailyCount(ctx context.Context, userID, periodDay string) (int64, error)

	// FeatureCountForDay counts events of one feature type for a day.
	FeatureCountForDay(ctx context.Context, userID, periodDay string, featureType FeatureType) (int64, error)

	// AnalysisCountForMonth counts deep-dive analysis events for a month,
	// tracked apart from the generic aggregate.
	AnalysisCountForMonth(ctx context.Context, userID, periodMonth string) (int64, error)

	// EventsForMonth lists a user's events for a month, newest first.
	EventsForMonth(ctx context.Context, userID, periodMonth string, filter PageFilter) ([]*Event, int64, error)
}
