package usage

import (
	"strings"
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		idempotencyKey string
		featureType    FeatureType
		tokensUsed     uint64
		costUSD        float64
		wantErr        bool
		errMsg         string
	}{
		{
			name:           "valid event",
			userID:         "u1",
			idempotencyKey: "3f1c9f4e-0000-0000-0000-000000000000",
			featureType:    FeatureSummary,
			tokensUsed:     1200,
			costUSD:        0.004,
			wantErr:        false,
		},
		{
			name:           "missing user ID",
			userID:         "",
			idempotencyKey: "k1",
			featureType:    FeatureSummary,
			wantErr:        true,
			errMsg:         "user ID is required",
		},
		{
			name:        "missing idempotency key",
			userID:      "u1",
			featureType: FeatureTags,
			wantErr:     true,
			errMsg:      "idempotency key is required",
		},
		{
			name:           "invalid feature type",
			userID:         "u1",
			idempotencyKey: "k1",
			featureType:    FeatureType("translation"),
			wantErr:        true,
			errMsg:         "invalid feature type",
		},
		{
			name:           "negative cost",
			userID:         "u1",
			idempotencyKey: "k1",
			featureType:    FeatureAnalysis,
			costUSD:        -0.01,
			wantErr:        true,
			errMsg:         "cost cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewEvent(tt.userID, tt.idempotencyKey, tt.featureType, tt.tokensUsed, tt.costUSD, "gpt-4o-mini")

			if tt.wantErr {
				if err == nil {
					t.Fatalf("NewEvent() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("NewEvent() error = %v, want containing %q", err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewEvent() unexpected error = %v", err)
			}

			if !strings.HasPrefix(event.SID(), "uevt_") {
				t.Errorf("SID = %q, want uevt_ prefix", event.SID())
			}
			if event.PeriodMonth() != event.OccurredAt().Format("2006-01") {
				t.Errorf("periodMonth %q inconsistent with occurredAt %v", event.PeriodMonth(), event.OccurredAt())
			}
			if event.PeriodDay() != event.OccurredAt().Format("2006-01-02") {
				t.Errorf("periodDay %q inconsistent with occurredAt %v", event.PeriodDay(), event.OccurredAt())
			}
			if event.TokensUsed() != tt.tokensUsed {
				t.Errorf("tokensUsed = %d, want %d", event.TokensUsed(), tt.tokensUsed)
			}
		})
	}
}

func TestReconstructEvent(t *testing.T) {
	occurredAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	event, err := ReconstructEvent(42, "uevt_abc", "u1", "k1", FeatureAnalysis, 900, 0.012, "gpt-4o", occurredAt, "2024-01", "2024-01-15")
	if err != nil {
		t.Fatalf("ReconstructEvent() unexpected error = %v", err)
	}
	if event.ID() != 42 {
		t.Errorf("ID = %d, want 42", event.ID())
	}
	if event.FeatureType() != FeatureAnalysis {
		t.Errorf("featureType = %v, want analysis", event.FeatureType())
	}

	if _, err := ReconstructEvent(0, "uevt_abc", "u1", "k1", FeatureTags, 0, 0, "", occurredAt, "2024-01", "2024-01-15"); err == nil {
		t.Error("ReconstructEvent() with zero ID should fail")
	}
	if _, err := ReconstructEvent(1, "", "u1", "k1", FeatureTags, 0, 0, "", occurredAt, "2024-01", "2024-01-15"); err == nil {
		t.Error("ReconstructEvent() with empty SID should fail")
	}
}

func TestEventSetID(t *testing.T) {
	event, err := NewEvent("u1", "k1", FeatureSummary, 10, 0, "")
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}

	if err := event.SetID(0); err == nil {
		t.Error("SetID(0) should fail")
	}
	if err := event.SetID(7); err != nil {
		t.Errorf("SetID(7) unexpected error = %v", err)
	}
	if err := event.SetID(8); err == nil {
		t.Error("SetID on already-set ID should fail")
	}
}
