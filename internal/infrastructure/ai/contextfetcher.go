package ai

import (
	"context"
	"io"
	"net/http"
	"time"

	"pagemark/internal/shared/config"
	"pagemark/internal/shared/logger"
)

// maxContextBytes caps how much fetched supporting content is fed to the
// engine; anything longer adds cost without improving the analysis.
const maxContextBytes = 256 * 1024

// ContextFetcher pulls externally hosted supporting content (the saved
// page's readable text) before a generation call. Fetch failures are not
// fatal: the analysis proceeds with partial data rather than blocking.
type ContextFetcher struct {
	client *http.Client
	logger logger.Interface
}

func NewContextFetcher(cfg *config.AnalysisEngineConfig, log logger.Interface) *ContextFetcher {
	timeout := time.Duration(cfg.ContextFetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ContextFetcher{
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// Fetch returns the supporting content at url, or "" when the fetch fails
// or times out.
func (f *ContextFetcher) Fetch(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warnw("failed to build context fetch request", "error", err, "url", url)
		return ""
	}

	resp, err := f.client.Do(req)
	if err != nil {
		f.logger.Warnw("context fetch failed, proceeding without supporting content", "error", err, "url", url)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		f.logger.Warnw("context fetch returned non-OK status", "status", resp.StatusCode, "url", url)
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxContextBytes))
	if err != nil {
		f.logger.Warnw("failed to read context fetch body", "error", err, "url", url)
		return ""
	}

	return string(body)
}
