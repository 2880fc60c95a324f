// Package analysis defines the external AI engine port and the acceptance
// rules that decide whether a generated result counts as billable usage.
package analysis

import "context"

// Result is what the AI engine produced for one generation call.
type Result struct {
	Text       string
	TokensUsed uint64
	CostUSD    float64
	ModelID    string
}

// Engine generates an analysis for a saved page. Implementations call an
// external AI provider; latency runs from seconds to over a minute, so
// callers must never hold locks across a Generate call.
type Engine interface {
	Generate(ctx context.Context, prompt, contextText string) (*Result, error)
}
