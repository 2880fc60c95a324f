package analysis

import (
	"errors"
	"strings"
)

// minResultLength is the shortest text accepted as a genuine analysis.
// Anything below this is an empty or error-text result, never billable.
const minResultLength = 80

// titleMarker is the structural heading every well-formed analysis opens
// with. Its absence means the model returned free-form or error text.
const titleMarker = "## "

var (
	// ErrResultRejected marks a transport-successful call whose output
	// failed validation. Non-billable; the user may retry at no cost.
	ErrResultRejected = errors.New("analysis result rejected")

	// ErrTransientFailure marks infrastructure-level failure text inside
	// an otherwise successful response. Non-billable and retryable.
	ErrTransientFailure = errors.New("transient analysis failure")
)

// transientPatterns are provider failure strings that sometimes arrive as
// response text rather than as an HTTP error.
var transientPatterns = []string{
	"deadline exceeded",
	"deadline_exceeded",
	"internal error",
	"internal_server_error",
	"service unavailable",
	"overloaded",
}

// Accept decides whether a generated result counts as a successful, billable
// analysis. Usage must only ever be recorded for results that pass here:
// the product guarantee is that users are charged a usage count for results
// they actually received, not for attempts.
func Accept(result *Result, cancelled bool) error {
	if cancelled {
		return ErrResultRejected
	}
	if result == nil {
		return ErrResultRejected
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return ErrResultRejected
	}

	if len(text) >= minResultLength && strings.Contains(text, titleMarker) && hasBulletLine(text) {
		return nil
	}

	// Provider failure text arrives as a short unstructured body, so the
	// pattern scan only runs on results that already failed the shape
	// checks. A genuine analysis of an article about outages or timeouts
	// must never be misclassified as a failed call.
	lower := strings.ToLower(text)
	for _, pattern := range transientPatterns {
		if strings.Contains(lower, pattern) {
			return ErrTransientFailure
		}
	}

	return ErrResultRejected
}

// hasBulletLine reports whether at least one content line is bulleted.
func hasBulletLine(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
			return true
		}
	}
	return false
}
