package usecases

import (
	"context"

	"pagemark/internal/domain/plan"
)

// PlanView is the public description of one tier.
type PlanView struct {
	Tier    string       `json:"tier"`
	Limits  plan.Limits  `json:"limits"`
	Pricing plan.Pricing `json:"pricing"`
}

// GetPlansUseCase lists the plan catalog. The catalog is compiled in, so
// this never fails; it exists as a use case to keep handlers thin.
type GetPlansUseCase struct{}

func NewGetPlansUseCase() *GetPlansUseCase {
	return &GetPlansUseCase{}
}

// Execute returns all tiers in ascending order.
func (uc *GetPlansUseCase) Execute(_ context.Context) []PlanView {
	tiers := plan.Tiers()
	views := make([]PlanView, 0, len(tiers))
	for _, tier := range tiers {
		views = append(views, PlanView{
			Tier:    tier.String(),
			Limits:  plan.LimitsFor(tier),
			Pricing: plan.PricingFor(tier),
		})
	}
	return views
}
