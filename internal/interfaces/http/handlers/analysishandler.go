package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pagemark/internal/application/usage/usecases"
	"pagemark/internal/interfaces/http/middleware"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/utils"
)

// AnalysisHandler runs the server-mediated deep-dive analysis flow.
type AnalysisHandler struct {
	processUseCase *usecases.ProcessAnalysisUseCase
	logger         logger.Interface
}

func NewAnalysisHandler(processUC *usecases.ProcessAnalysisUseCase, logger logger.Interface) *AnalysisHandler {
	return &AnalysisHandler{
		processUseCase: processUC,
		logger:         logger,
	}
}

// ProcessAnalysisRequest represents the request to run one analysis
type ProcessAnalysisRequest struct {
	IdempotencyKey string `json:"idempotency_key" binding:"required,max=64"`
	Prompt         string `json:"prompt" binding:"required"`
	ContextURL     string `json:"context_url" binding:"omitempty,url"`
}

// ProcessAnalysis handles POST /analysis. Unlike the lighter features, the
// server runs the engine call itself, so check and record both happen here
// and the client only ever sees accepted results.
func (h *AnalysisHandler) ProcessAnalysis(c *gin.Context) {
	userUID := middleware.UserUID(c)
	if userUID == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req ProcessAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for analysis", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.processUseCase.Execute(c.Request.Context(), usecases.ProcessAnalysisCommand{
		UserID:         userUID,
		IdempotencyKey: req.IdempotencyKey,
		Prompt:         req.Prompt,
		ContextURL:     req.ContextURL,
	})
	if err != nil {
		h.logger.Errorw("failed to process analysis", "error", err, "user_uid", userUID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
