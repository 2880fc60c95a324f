package usecases

import (
	"context"
	"time"

	"pagemark/internal/domain/usage"
	"pagemark/internal/shared/biztime"
	"pagemark/internal/shared/constants"
	"pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
)

// ListUsageEventsQuery represents the parameters for the usage audit listing
type ListUsageEventsQuery struct {
	UserID      string
	PeriodMonth string // "YYYY-MM", defaults to the current month
	Page        int
	PageSize    int
}

// UsageEventRecord is one row of the audit trail.
type UsageEventRecord struct {
	SID         string    `json:"sid"`
	FeatureType string    `json:"feature_type"`
	TokensUsed  uint64    `json:"tokens_used"`
	CostUSD     float64   `json:"cost_usd"`
	ModelID     string    `json:"model_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// ListUsageEventsResponse represents the paginated audit listing
type ListUsageEventsResponse struct {
	Records  []*UsageEventRecord `json:"records"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

// ListUsageEventsUseCase lists a user's raw usage events for one month,
// newest first. This is the audit view behind the aggregate numbers.
type ListUsageEventsUseCase struct {
	ledger usage.LedgerRepository
	logger logger.Interface
}

func NewListUsageEventsUseCase(ledger usage.LedgerRepository, logger logger.Interface) *ListUsageEventsUseCase {
	return &ListUsageEventsUseCase{
		ledger: ledger,
		logger: logger,
	}
}

// Execute returns the paginated event listing.
func (uc *ListUsageEventsUseCase) Execute(ctx context.Context, query ListUsageEventsQuery) (*ListUsageEventsResponse, error) {
	if query.UserID == "" {
		return nil, errors.NewValidationError("user ID is required")
	}

	periodMonth := query.PeriodMonth
	if periodMonth == "" {
		periodMonth = biztime.CurrentMonthKey()
	} else if _, err := time.Parse(biztime.MonthKeyLayout, periodMonth); err != nil {
		return nil, errors.NewValidationError("invalid period month", periodMonth)
	}

	if query.Page < 1 {
		query.Page = constants.DefaultPage
	}
	if query.PageSize < 1 {
		query.PageSize = constants.DefaultPageSize
	}
	if query.PageSize > constants.MaxPageSize {
		query.PageSize = constants.MaxPageSize
	}

	events, total, err := uc.ledger.EventsForMonth(ctx, query.UserID, periodMonth, usage.PageFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list usage events", "error", err, "user_id", query.UserID)
		return nil, errors.NewInternalError("failed to list usage events")
	}

	records := make([]*UsageEventRecord, 0, len(events))
	for _, event := range events {
		records = append(records, &UsageEventRecord{
			SID:         event.SID(),
			FeatureType: event.FeatureType().String(),
			TokensUsed:  event.TokensUsed(),
			CostUSD:     event.CostUSD(),
			ModelID:     event.ModelID(),
			OccurredAt:  event.OccurredAt(),
			Metadata:    event.Metadata(),
		})
	}

	return &ListUsageEventsResponse{
		Records:  records,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}
