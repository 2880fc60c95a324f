package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemark/internal/application/usage/usecases"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/utils"
)

// PlanHandler serves the public plan catalog.
type PlanHandler struct {
	getPlansUseCase *usecases.GetPlansUseCase
	logger          logger.Interface
}

func NewPlanHandler(getPlansUC *usecases.GetPlansUseCase, logger logger.Interface) *PlanHandler {
	return &PlanHandler{
		getPlansUseCase: getPlansUC,
		logger:          logger,
	}
}

// ListPlans handles GET /plans. Unauthenticated: the paywall screen shows
// the catalog before sign-in.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans := h.getPlansUseCase.Execute(c.Request.Context())
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"plans": plans})
}
