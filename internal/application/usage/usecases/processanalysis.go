package usecases

import (
	"context"
	stderrors "errors"

	"pagemark/internal/domain/analysis"
	"pagemark/internal/domain/usage"
	"pagemark/internal/infrastructure/ai"
	"pagemark/internal/shared/errors"
	"pagemark/internal/shared/logger"
	"pagemark/internal/shared/services/markdown"
)

// ContextProvider fetches externally hosted supporting content for the page
// under analysis. A failed fetch yields "" and the analysis proceeds.
type ContextProvider interface {
	Fetch(ctx context.Context, url string) string
}

// ProcessAnalysisCommand represents one deep-dive analysis request.
type ProcessAnalysisCommand struct {
	UserID         string
	IdempotencyKey string
	Prompt         string
	ContextURL     string
}

// ProcessAnalysisResult carries the accepted analysis back to the client.
type ProcessAnalysisResult struct {
	Text         string `json:"text"`
	HTML         string `json:"html"`
	TokensUsed   uint64 `json:"tokens_used"`
	ModelID      string `json:"model_id"`
	UsageCounted bool   `json:"usage_counted"`
}

// ProcessAnalysisUseCase runs the full metered analysis flow: quota check,
// engine call, acceptance, rendering, usage recording.
//
// The check and the recording are deliberately not wrapped in one
// transaction or lock: the engine call runs seconds to minutes and must
// never hold a lock. Two near-simultaneous requests can both pass the check
// and both record, briefly overshooting the nominal quota. That is an
// accepted trade-off in favor of availability.
type ProcessAnalysisUseCase struct {
	checkUseCase  *CheckUsageLimitUseCase
	recordUseCase *RecordUsageUseCase
	engine        analysis.Engine
	contextProv   ContextProvider
	markdownSvc   markdown.MarkdownService
	logger        logger.Interface
}

func NewProcessAnalysisUseCase(
	checkUseCase *CheckUsageLimitUseCase,
	recordUseCase *RecordUsageUseCase,
	engine analysis.Engine,
	contextProv ContextProvider,
	markdownSvc markdown.MarkdownService,
	logger logger.Interface,
) *ProcessAnalysisUseCase {
	return &ProcessAnalysisUseCase{
		checkUseCase:  checkUseCase,
		recordUseCase: recordUseCase,
		engine:        engine,
		contextProv:   contextProv,
		markdownSvc:   markdownSvc,
		logger:        logger,
	}
}

// Execute runs the analysis flow end to end.
func (uc *ProcessAnalysisUseCase) Execute(ctx context.Context, cmd ProcessAnalysisCommand) (*ProcessAnalysisResult, error) {
	if cmd.UserID == "" {
		return nil, errors.NewValidationError("user ID is required")
	}
	if cmd.IdempotencyKey == "" {
		return nil, errors.NewValidationError("idempotency key is required")
	}
	if cmd.Prompt == "" {
		return nil, errors.NewValidationError("prompt is required")
	}

	check, err := uc.checkUseCase.Execute(ctx, CheckUsageLimitQuery{
		UserID:      cmd.UserID,
		FeatureType: usage.FeatureAnalysis,
	})
	if err != nil {
		return nil, err
	}
	if !check.Allowed {
		return nil, errors.NewQuotaExceededError(check.Reason)
	}

	contextText := ""
	if cmd.ContextURL != "" {
		contextText = uc.contextProv.Fetch(ctx, cmd.ContextURL)
	}

	// The engine call survives UI teardown: navigating away must not turn
	// an in-flight generation into a billed-but-discarded result, so the
	// call keeps running and its outcome still goes through acceptance.
	engineCtx := context.WithoutCancel(ctx)
	result, err := uc.engine.Generate(engineCtx, cmd.Prompt, contextText)
	if err != nil {
		if ai.IsTransient(err) {
			// Transient infrastructure failure: non-billable, logged
			// only, never surfaced as a user-facing alert.
			uc.logger.Warnw("transient analysis failure",
				"error", err, "user_id", cmd.UserID)
			return nil, errors.NewInternalError("analysis temporarily unavailable")
		}
		uc.logger.Errorw("analysis generation failed", "error", err, "user_id", cmd.UserID)
		return nil, errors.NewInternalError("analysis failed")
	}

	// Never flagged cancelled here: UI teardown does not cancel, see above.
	if err := analysis.Accept(result, false); err != nil {
		if stderrors.Is(err, analysis.ErrTransientFailure) {
			uc.logger.Warnw("analysis result looked like transient failure text",
				"user_id", cmd.UserID)
			return nil, errors.NewInternalError("analysis temporarily unavailable")
		}
		uc.logger.Infow("analysis result rejected by validation",
			"user_id", cmd.UserID, "result_len", len(result.Text))
		return nil, errors.NewValidationError(
			"the analysis did not produce a usable result; your usage count was not consumed")
	}

	html, err := uc.markdownSvc.ToHTMLSanitized(result.Text)
	if err != nil {
		uc.logger.Warnw("failed to render analysis markdown", "error", err, "user_id", cmd.UserID)
		html = ""
	}

	response := &ProcessAnalysisResult{
		Text:       result.Text,
		HTML:       html,
		TokensUsed: result.TokensUsed,
		ModelID:    result.ModelID,
	}

	var metadata map[string]string
	if cmd.ContextURL != "" {
		metadata = map[string]string{"context_url": cmd.ContextURL}
	}

	// Recording failure fails open in the user's favor: the accepted
	// result is still returned, and we do not retry synchronously because
	// the retry itself would reuse the idempotency key anyway.
	if _, err := uc.recordUseCase.Execute(engineCtx, RecordUsageCommand{
		UserID:         cmd.UserID,
		IdempotencyKey: cmd.IdempotencyKey,
		FeatureType:    usage.FeatureAnalysis,
		TokensUsed:     result.TokensUsed,
		CostUSD:        result.CostUSD,
		ModelID:        result.ModelID,
		Metadata:       metadata,
	}); err != nil {
		uc.logger.Errorw("failed to record accepted analysis usage",
			"error", err, "user_id", cmd.UserID)
		return response, nil
	}

	response.UsageCounted = true
	return response, nil
}
