// Package ai adapts an OpenAI-compatible chat-completions API to the
// analysis.Engine port.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pagemark/internal/domain/analysis"
	"pagemark/internal/shared/config"
	"pagemark/internal/shared/logger"
)

// Pricing per million tokens, used for the cost estimate attached to each
// usage event. Estimates only; provider invoices stay authoritative.
var modelPricePerMTok = map[string]float64{
	"gpt-4o":      5.00,
	"gpt-4o-mini": 0.30,
}

const defaultPricePerMTok = 1.00

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens uint64 `json:"total_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// HTTPAnalysisEngine implements analysis.Engine against a chat-completions
// endpoint. The HTTP client carries no timeout: generation legitimately runs
// over a minute, and the caller decides how long to wait via context.
type HTTPAnalysisEngine struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  logger.Interface
}

func NewHTTPAnalysisEngine(cfg *config.AnalysisEngineConfig, log logger.Interface) *HTTPAnalysisEngine {
	return &HTTPAnalysisEngine{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		client:  &http.Client{},
		logger:  log,
	}
}

func (e *HTTPAnalysisEngine) Generate(ctx context.Context, prompt, contextText string) (*analysis.Result, error) {
	messages := []chatMessage{
		{Role: "user", Content: prompt},
	}
	if contextText != "" {
		messages = append([]chatMessage{
			{Role: "system", Content: "Supporting content for the page under analysis:\n\n" + contextText},
		}, messages...)
	}

	body, err := json.Marshal(chatRequest{Model: e.model, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	started := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("generation request failed: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("failed to read generation response: %w", err)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse generation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, parsed.Error.Message)
		if isTransientStatus(resp.StatusCode) {
			return nil, &TransientError{Err: err}
		}
		return nil, err
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("generation response contained no choices")
	}

	modelID := parsed.Model
	if modelID == "" {
		modelID = e.model
	}

	result := &analysis.Result{
		Text:       parsed.Choices[0].Message.Content,
		TokensUsed: parsed.Usage.TotalTokens,
		CostUSD:    estimateCostUSD(modelID, parsed.Usage.TotalTokens),
		ModelID:    modelID,
	}

	e.logger.Debugw("analysis generated",
		"model", modelID,
		"tokens_used", result.TokensUsed,
		"elapsed", time.Since(started),
	)

	return result, nil
}

// TransientError wraps infrastructure-level failures that are retryable and
// never billable: timeouts, connection drops, 5xx and rate-limit responses.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a retryable infrastructure failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func estimateCostUSD(modelID string, tokens uint64) float64 {
	price, ok := modelPricePerMTok[modelID]
	if !ok {
		price = defaultPricePerMTok
	}
	return float64(tokens) / 1_000_000 * price
}
