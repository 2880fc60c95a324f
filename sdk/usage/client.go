package usage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	defaultStatsTTL           = 2 * time.Minute
	defaultRecommendationsTTL = time.Minute
)

// Client is the Pagemark usage metering API client. Stats and
// recommendations are cached client-side with short TTLs; all other calls
// go straight to the server.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu          sync.Mutex
	statsTTL    time.Duration
	cachedStats *cachedValue[*Stats]
	recsTTL     time.Duration
	cachedRecs  *cachedValue[[]Recommendation]
}

type cachedValue[T any] struct {
	value     T
	fetchedAt time.Time
}

// Option is a function that configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// WithStatsTTL overrides the client-side stats cache TTL.
func WithStatsTTL(d time.Duration) Option {
	return func(client *Client) {
		client.statsTTL = d
	}
}

// NewClient creates a new usage metering API client.
//
// Parameters:
//   - baseURL: The API base URL (e.g., "https://api.example.com")
//   - token: The user's bearer token
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		statsTTL: defaultStatsTTL,
		recsTTL:  defaultRecommendationsTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckUsage asks whether one more call of the given feature is allowed.
// Never cached: the result gates an expensive operation.
func (c *Client) CheckUsage(ctx context.Context, featureType string) (*CheckResult, error) {
	body := map[string]string{"feature_type": featureType}

	var result CheckResult
	if err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/v1/usage/check", body, &result); err != nil {
		return nil, fmt.Errorf("check usage: %w", err)
	}
	return &result, nil
}

// RecordUsage records one consumed AI call. Safe to retry with the same
// idempotency key: a replay reports Duplicate instead of double-billing.
func (c *Client) RecordUsage(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	var result RecordResult
	if err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/v1/usage/record", req, &result); err != nil {
		return nil, fmt.Errorf("record usage: %w", err)
	}

	// Recorded usage invalidates whatever the UI has cached.
	c.mu.Lock()
	c.cachedStats = nil
	c.cachedRecs = nil
	c.mu.Unlock()

	return &result, nil
}

// GetStats returns the current-month usage stats. Served from the local
// cache within the TTL; on a fetch failure a stale cached value is returned
// rather than an error, so the settings screen stays populated offline.
func (c *Client) GetStats(ctx context.Context, forceRefresh bool) (*Stats, error) {
	c.mu.Lock()
	cached := c.cachedStats
	ttl := c.statsTTL
	c.mu.Unlock()

	if !forceRefresh && cached != nil && time.Since(cached.fetchedAt) < ttl {
		return cached.value, nil
	}

	endpoint := c.baseURL + "/api/v1/usage/stats"
	if forceRefresh {
		endpoint += "?force_refresh=true"
	}

	var stats Stats
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &stats); err != nil {
		if cached != nil {
			return cached.value, nil
		}
		return nil, fmt.Errorf("get stats: %w", err)
	}

	c.mu.Lock()
	c.cachedStats = &cachedValue[*Stats]{value: &stats, fetchedAt: time.Now()}
	c.mu.Unlock()

	return &stats, nil
}

// GetRecommendations returns plan suggestions, cached for a minute.
func (c *Client) GetRecommendations(ctx context.Context) ([]Recommendation, error) {
	c.mu.Lock()
	cached := c.cachedRecs
	ttl := c.recsTTL
	c.mu.Unlock()

	if cached != nil && time.Since(cached.fetchedAt) < ttl {
		return cached.value, nil
	}

	var data struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	if err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/api/v1/usage/recommendations", nil, &data); err != nil {
		if cached != nil {
			return cached.value, nil
		}
		return nil, fmt.Errorf("get recommendations: %w", err)
	}

	c.mu.Lock()
	c.cachedRecs = &cachedValue[[]Recommendation]{value: data.Recommendations, fetchedAt: time.Now()}
	c.mu.Unlock()

	return data.Recommendations, nil
}

// ListPlans returns the public plan catalog.
func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var data struct {
		Plans []Plan `json:"plans"`
	}
	if err := c.doRequest(ctx, http.MethodGet, c.baseURL+"/api/v1/plans", nil, &data); err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	return data.Plans, nil
}

// ListEventsPage is one page of the usage audit trail.
type ListEventsPage struct {
	Items []struct {
		SID         string    `json:"sid"`
		FeatureType string    `json:"feature_type"`
		TokensUsed  uint64    `json:"tokens_used"`
		CostUSD     float64   `json:"cost_usd"`
		ModelID     string    `json:"model_id,omitempty"`
		OccurredAt  time.Time `json:"occurred_at"`
	} `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ListEvents returns one page of the usage audit trail for a month.
// periodMonth is "YYYY-MM"; empty means the current month.
func (c *Client) ListEvents(ctx context.Context, periodMonth string, page, pageSize int) (*ListEventsPage, error) {
	params := url.Values{}
	if periodMonth != "" {
		params.Set("period_month", periodMonth)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}

	endpoint := c.baseURL + "/api/v1/usage/events"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var result ListEventsPage
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &result); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return &result, nil
}

// ProcessAnalysis runs a server-mediated deep-dive analysis. Generation can
// take minutes, size the context deadline accordingly.
func (c *Client) ProcessAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	var result AnalysisResult
	if err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/api/v1/analysis", req, &result); err != nil {
		return nil, fmt.Errorf("process analysis: %w", err)
	}

	if result.UsageCounted {
		c.mu.Lock()
		c.cachedStats = nil
		c.cachedRecs = nil
		c.mu.Unlock()
	}

	return &result, nil
}

// doRequest performs an HTTP request and decodes the response envelope.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if apiResp.Error != nil {
			return &APIError{StatusCode: resp.StatusCode, Type: apiResp.Error.Type, Message: apiResp.Error.Message}
		}
		return fmt.Errorf("api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	if !apiResp.Success {
		return fmt.Errorf("api error: %s", apiResp.Message)
	}

	if result == nil || apiResp.Data == nil {
		return nil
	}

	if err := json.Unmarshal(apiResp.Data, result); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}

	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a structured error returned by the API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d type=%s message=%s", e.StatusCode, e.Type, e.Message)
}

// IsQuotaExceeded reports whether the error is a quota refusal.
func IsQuotaExceeded(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Type == "quota_exceeded"
}
