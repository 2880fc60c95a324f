package usage

import (
	"fmt"
	"time"

	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/id"
)

// Event is a single AI-usage record. Events are append-only and immutable
// once written: they form the audit trail behind the monthly aggregates.
// The period keys are derived redundantly at write time so quota checks
// never range-scan the primary timestamp.
type Event struct {
	id             uint
	sid            string // Stripe-style ID: uevt_xxx
	userID         string
	idempotencyKey string
	featureType    FeatureType
	tokensUsed     uint64
	costUSD        float64
	modelID        string
	occurredAt     time.Time
	periodMonth    string // "YYYY-MM"
	periodDay      string // "YYYY-MM-DD"
	metadata       map[string]string
}

// NewEvent creates a usage event for a verified-successful AI call. The
// idempotency key is a client-generated UUID per AI invocation; the ledger
// rejects replays on it so a network retry cannot double-count.
func NewEvent(userID, idempotencyKey string, featureType FeatureType, tokensUsed uint64, costUSD float64, modelID string) (*Event, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if idempotencyKey == "" {
		return nil, fmt.Errorf("idempotency key is required")
	}
	if !featureType.IsValid() {
		return nil, fmt.Errorf("invalid feature type: %s", featureType)
	}
	if costUSD < 0 {
		return nil, fmt.Errorf("cost cannot be negative")
	}

	sid, err := id.NewUsageEventID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate SID: %w", err)
	}

	now := biztime.NowUTC()
	return &Event{
		sid:            sid,
		userID:         userID,
		idempotencyKey: idempotencyKey,
		featureType:    featureType,
		tokensUsed:     tokensUsed,
		costUSD:        costUSD,
		modelID:        modelID,
		occurredAt:     now,
		periodMonth:    biztime.MonthKey(now),
		periodDay:      biztime.DayKey(now),
	}, nil
}

// ReconstructEvent reconstructs a usage event entity from persistence.
func ReconstructEvent(
	eventID uint,
	sid string,
	userID string,
	idempotencyKey string,
	featureType FeatureType,
	tokensUsed uint64,
	costUSD float64,
	modelID string,
	occurredAt time.Time,
	periodMonth string,
	periodDay string,
) (*Event, error) {
	if eventID == 0 {
		return nil, fmt.Errorf("event ID cannot be zero")
	}
	if sid == "" {
		return nil, fmt.Errorf("event SID is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if !featureType.IsValid() {
		return nil, fmt.Errorf("invalid feature type: %s", featureType)
	}

	return &Event{
		id:             eventID,
		sid:            sid,
		userID:         userID,
		idempotencyKey: idempotencyKey,
		featureType:    featureType,
		tokensUsed:     tokensUsed,
		costUSD:        costUSD,
		modelID:        modelID,
		occurredAt:     occurredAt,
		periodMonth:    periodMonth,
		periodDay:      periodDay,
	}, nil
}

func (e *Event) ID() uint {
	return e.id
}

func (e *Event) SID() string {
	return e.sid
}

func (e *Event) UserID() string {
	return e.userID
}

func (e *Event) IdempotencyKey() string {
	return e.idempotencyKey
}

func (e *Event) FeatureType() FeatureType {
	return e.featureType
}

func (e *Event) TokensUsed() uint64 {
	return e.tokensUsed
}

func (e *Event) CostUSD() float64 {
	return e.costUSD
}

func (e *Event) ModelID() string {
	return e.modelID
}

func (e *Event) OccurredAt() time.Time {
	return e.occurredAt
}

func (e *Event) PeriodMonth() string {
	return e.periodMonth
}

func (e *Event) PeriodDay() string {
	return e.periodDay
}

// Metadata returns provider-specific detail attached to the event, nil when
// none was recorded.
func (e *Event) Metadata() map[string]string {
	return e.metadata
}

// AttachMetadata attaches provider-specific detail (request IDs, finish
// reasons) to the event. Free-form audit data only, quota arithmetic never
// reads it.
func (e *Event) AttachMetadata(metadata map[string]string) {
	if len(metadata) == 0 {
		return
	}
	e.metadata = metadata
}

// SetID sets the event ID (only for persistence layer use).
func (e *Event) SetID(eventID uint) error {
	if e.id != 0 {
		return fmt.Errorf("event ID is already set")
	}
	if eventID == 0 {
		return fmt.Errorf("event ID cannot be zero")
	}
	e.id = eventID
	return nil
}
