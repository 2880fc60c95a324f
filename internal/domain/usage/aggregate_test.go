package usage

import (
	"testing"
	"time"
)

func TestZeroAggregate(t *testing.T) {
	agg := ZeroAggregate("u1", "2024-03")

	if agg.HasUsage() {
		t.Error("zero aggregate should not report usage")
	}
	if agg.TotalRequests() != 0 || agg.TotalTokens() != 0 || agg.TotalCostUSD() != 0 {
		t.Error("zero aggregate should have all counters at zero")
	}
	if agg.UserID() != "u1" || agg.PeriodMonth() != "2024-03" {
		t.Errorf("zero aggregate keys = %q/%q, want u1/2024-03", agg.UserID(), agg.PeriodMonth())
	}
}

func TestReconstructMonthlyAggregate(t *testing.T) {
	tests := []struct {
		name        string
		userID      string
		periodMonth string
		wantErr     bool
	}{
		{name: "valid", userID: "u1", periodMonth: "2024-03", wantErr: false},
		{name: "missing user", userID: "", periodMonth: "2024-03", wantErr: true},
		{name: "missing month", userID: "u1", periodMonth: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := ReconstructMonthlyAggregate(tt.userID, tt.periodMonth, 3, 4500, 0.021, time.Now().UTC())
			if tt.wantErr {
				if err == nil {
					t.Error("ReconstructMonthlyAggregate() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ReconstructMonthlyAggregate() unexpected error = %v", err)
			}
			if !agg.HasUsage() {
				t.Error("aggregate with requests should report usage")
			}
		})
	}
}

func TestUsagePercent(t *testing.T) {
	tests := []struct {
		name     string
		requests uint64
		quota    int64
		want     int
	}{
		{name: "unlimited", requests: 9000, quota: -1, want: -1},
		{name: "zero quota is always full", requests: 0, quota: 0, want: 100},
		{name: "empty month", requests: 0, quota: 5, want: 0},
		{name: "partial", requests: 4, quota: 5, want: 80},
		{name: "at quota", requests: 5, quota: 5, want: 100},
		{name: "over quota is capped", requests: 12, quota: 5, want: 100},
		{name: "rounds down", requests: 1, quota: 3, want: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := ReconstructMonthlyAggregate("u1", "2024-03", tt.requests, 0, 0, time.Time{})
			if err != nil {
				t.Fatalf("ReconstructMonthlyAggregate() error = %v", err)
			}
			if got := agg.UsagePercent(tt.quota); got != tt.want {
				t.Errorf("UsagePercent(%d) with %d requests = %d, want %d", tt.quota, tt.requests, got, tt.want)
			}
		})
	}
}
