package usecases

import (
	"context"
	"fmt"
	"time"

	"pagemark/internal/domain/analysis"
	"pagemark/internal/domain/plan"
	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/cache"
)

// fakeStateSource serves a fixed plan state per user.
type fakeStateSource struct {
	states map[string]*plan.UserPlanState
	err    error
}

func (f *fakeStateSource) GetUserPlanState(_ context.Context, userID string) (*plan.UserPlanState, error) {
	if f.err != nil {
		return nil, f.err
	}
	state, ok := f.states[userID]
	if !ok {
		return nil, plan.ErrStateNotFound
	}
	return state, nil
}

// fakeLedger is an in-memory ledger with the same idempotency semantics as
// the real repository.
type fakeLedger struct {
	events    []*usage.Event
	seenKeys  map[string]bool
	appendErr error
	readErr   error
	appendCnt int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seenKeys: map[string]bool{}}
}

func (f *fakeLedger) AppendEvent(_ context.Context, event *usage.Event) error {
	f.appendCnt++
	if f.appendErr != nil {
		return f.appendErr
	}
	if f.seenKeys[event.IdempotencyKey()] {
		return usage.ErrDuplicateEvent
	}
	f.seenKeys[event.IdempotencyKey()] = true
	if err := event.SetID(uint(len(f.events) + 1)); err != nil {
		return err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeLedger) MonthlyAggregate(_ context.Context, userID, periodMonth string) (*usage.MonthlyAggregate, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	var requests, tokens uint64
	var cost float64
	for _, e := range f.events {
		if e.UserID() == userID && e.PeriodMonth() == periodMonth {
			requests++
			tokens += e.TokensUsed()
			cost += e.CostUSD()
		}
	}
	if requests == 0 {
		return usage.ZeroAggregate(userID, periodMonth), nil
	}
	return usage.ReconstructMonthlyAggregate(userID, periodMonth, requests, tokens, cost, time.Now().UTC())
}

func (f *fakeLedger) DailyCount(_ context.Context, userID, periodDay string) (int64, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	var count int64
	for _, e := range f.events {
		if e.UserID() == userID && e.PeriodDay() == periodDay {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedger) FeatureCountForDay(_ context.Context, userID, periodDay string, featureType usage.FeatureType) (int64, error) {
	var count int64
	for _, e := range f.events {
		if e.UserID() == userID && e.PeriodDay() == periodDay && e.FeatureType() == featureType {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedger) AnalysisCountForMonth(_ context.Context, userID, periodMonth string) (int64, error) {
	var count int64
	for _, e := range f.events {
		if e.UserID() == userID && e.PeriodMonth() == periodMonth && e.FeatureType() == usage.FeatureAnalysis {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedger) EventsForMonth(_ context.Context, userID, periodMonth string, filter usage.PageFilter) ([]*usage.Event, int64, error) {
	var matched []*usage.Event
	for _, e := range f.events {
		if e.UserID() == userID && e.PeriodMonth() == periodMonth {
			matched = append(matched, e)
		}
	}
	return matched, int64(len(matched)), nil
}

// seed appends n events for userID without going through quota checks.
func (f *fakeLedger) seed(userID string, featureType usage.FeatureType, n int) error {
	for i := 0; i < n; i++ {
		event, err := usage.NewEvent(userID, fmt.Sprintf("seed-%s-%s-%d", userID, featureType, len(f.events)), featureType, 100, 0.001, "test-model")
		if err != nil {
			return err
		}
		if err := f.AppendEvent(context.Background(), event); err != nil {
			return err
		}
	}
	return nil
}

// fakeStatsCache records invalidations and serves a single cached entry.
type fakeStatsCache struct {
	entry         *cache.CachedUsageStats
	setCalls      int
	invalidations int
	getErr        error
	setErr        error
	invErr        error
}

func (f *fakeStatsCache) GetStats(_ context.Context, _ string) (*cache.CachedUsageStats, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entry, nil
}

func (f *fakeStatsCache) SetStats(_ context.Context, _ string, stats *cache.CachedUsageStats) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.setCalls++
	f.entry = stats
	return nil
}

func (f *fakeStatsCache) InvalidateStats(_ context.Context, _ string) error {
	if f.invErr != nil {
		return f.invErr
	}
	f.invalidations++
	f.entry = nil
	return nil
}

// fakeEngine returns a canned result or error and counts invocations.
type fakeEngine struct {
	result *analysis.Result
	err    error
	calls  int
}

func (f *fakeEngine) Generate(_ context.Context, _, _ string) (*analysis.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeContextProvider returns fixed supporting content.
type fakeContextProvider struct {
	content string
	calls   int
}

func (f *fakeContextProvider) Fetch(_ context.Context, _ string) string {
	f.calls++
	return f.content
}
