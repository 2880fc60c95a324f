package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pagemark/internal/application/usage/usecases"
	domainusage "pagemark/internal/domain/usage"
	"pagemark/internal/interfaces/http/middleware"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/utils"
)

// UsageHandler handles quota checks, usage recording, and the stats views.
type UsageHandler struct {
	checkUseCase           *usecases.CheckUsageLimitUseCase
	recordUseCase          *usecases.RecordUsageUseCase
	statsUseCase           *usecases.GetUsageStatsUseCase
	recommendationsUseCase *usecases.GetRecommendationsUseCase
	listEventsUseCase      *usecases.ListUsageEventsUseCase
	logger                 logger.Interface
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(
	checkUC *usecases.CheckUsageLimitUseCase,
	recordUC *usecases.RecordUsageUseCase,
	statsUC *usecases.GetUsageStatsUseCase,
	recommendationsUC *usecases.GetRecommendationsUseCase,
	listEventsUC *usecases.ListUsageEventsUseCase,
	logger logger.Interface,
) *UsageHandler {
	return &UsageHandler{
		checkUseCase:           checkUC,
		recordUseCase:          recordUC,
		statsUseCase:           statsUC,
		recommendationsUseCase: recommendationsUC,
		listEventsUseCase:      listEventsUC,
		logger:                 logger,
	}
}

// CheckUsageRequest represents the request for a quota pre-check
type CheckUsageRequest struct {
	FeatureType string `json:"feature_type" binding:"required,oneof=summary tags analysis"`
}

// RecordUsageRequest represents the request to record one consumed AI call
type RecordUsageRequest struct {
	IdempotencyKey string  `json:"idempotency_key" binding:"required,max=64"`
	FeatureType    string  `json:"feature_type" binding:"required,oneof=summary tags analysis"`
	TokensUsed     uint64  `json:"tokens_used"`
	CostUSD        float64 `json:"cost_usd" binding:"gte=0"`
	ModelID        string  `json:"model_id"`

	Metadata map[string]string `json:"metadata" binding:"omitempty,max=16,dive,keys,max=64,endkeys,max=256"`
}

// CheckUsage handles POST /usage/check. This is the advisory pre-check the
// client calls before starting an AI operation; the binding decision is
// re-made inside record.
func (h *UsageHandler) CheckUsage(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req CheckUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for usage check", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.checkUseCase.Execute(c.Request.Context(), usecases.CheckUsageLimitQuery{
		UserID:      userUID,
		FeatureType: domainusage.FeatureType(req.FeatureType),
	})
	if err != nil {
		h.logger.Errorw("failed to check usage limit", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// RecordUsage handles POST /usage/record. A replayed idempotency key
// returns 200 with duplicate set, never an error: clients retry on flaky
// mobile networks.
func (h *UsageHandler) RecordUsage(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for usage record", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.recordUseCase.Execute(c.Request.Context(), usecases.RecordUsageCommand{
		UserID:         userUID,
		IdempotencyKey: req.IdempotencyKey,
		FeatureType:    domainusage.FeatureType(req.FeatureType),
		TokensUsed:     req.TokensUsed,
		CostUSD:        req.CostUSD,
		ModelID:        req.ModelID,
		Metadata:       req.Metadata,
	})
	if err != nil {
		h.logger.Errorw("failed to record usage", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetStats handles GET /usage/stats
func (h *UsageHandler) GetStats(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	forceRefresh, _ := strconv.ParseBool(c.Query("force_refresh"))

	result, err := h.statsUseCase.Execute(c.Request.Context(), usecases.GetUsageStatsQuery{
		UserID:       userUID,
		ForceRefresh: forceRefresh,
	})
	if err != nil {
		h.logger.Errorw("failed to get usage stats", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetRecommendations handles GET /usage/recommendations
func (h *UsageHandler) GetRecommendations(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	recommendations, err := h.recommendationsUseCase.Execute(c.Request.Context(), userUID)
	if err != nil {
		h.logger.Errorw("failed to get recommendations", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"recommendations": recommendations})
}

// ListEvents handles GET /usage/events
func (h *UsageHandler) ListEvents(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	result, err := h.listEventsUseCase.Execute(c.Request.Context(), usecases.ListUsageEventsQuery{
		UserID:      userUID,
		PeriodMonth: c.Query("period_month"),
		Page:        page,
		PageSize:    pageSize,
	})
	if err != nil {
		h.logger.Errorw("failed to list usage events", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.ListSuccessResponse(c, result.Records, result.Total, result.Page, result.PageSize)
}
