package analysis

import (
	"errors"
	"strings"
	"testing"
)

func wellFormedText() string {
	return "## Key Takeaways\n\n" +
		"- The author argues that spaced repetition beats cramming for retention.\n" +
		"- Several cited studies used sample sizes under fifty participants.\n" +
		"- The piece closes with practical scheduling advice for daily review.\n"
}

func TestAccept(t *testing.T) {
	tests := []struct {
		name      string
		result    *Result
		cancelled bool
		wantErr   error
	}{
		{
			name:    "well-formed result is accepted",
			result:  &Result{Text: wellFormedText(), TokensUsed: 500},
			wantErr: nil,
		},
		{
			name:      "cancelled operation is rejected",
			result:    &Result{Text: wellFormedText()},
			cancelled: true,
			wantErr:   ErrResultRejected,
		},
		{
			name:    "nil result is rejected",
			result:  nil,
			wantErr: ErrResultRejected,
		},
		{
			name:    "empty text is rejected",
			result:  &Result{Text: "   \n  "},
			wantErr: ErrResultRejected,
		},
		{
			name:    "short text is rejected",
			result:  &Result{Text: "## Summary\n- too thin"},
			wantErr: ErrResultRejected,
		},
		{
			name:    "missing title marker is rejected",
			result:  &Result{Text: strings.ReplaceAll(wellFormedText(), "## ", "")},
			wantErr: ErrResultRejected,
		},
		{
			name:    "missing bullet lines is rejected",
			result:  &Result{Text: strings.ReplaceAll(wellFormedText(), "- ", "")},
			wantErr: ErrResultRejected,
		},
		{
			name: "structured analysis discussing failures is accepted",
			result: &Result{Text: "## Key Takeaways\n\n" +
				"- The postmortem traces the outage to a deadline exceeded error in the gateway.\n" +
				"- An internal error in the retry loop amplified load on the primary.\n" +
				"- The team now alerts on service unavailable responses within one minute.\n"},
			wantErr: nil,
		},
		{
			name:    "deadline text is transient",
			result:  &Result{Text: "error: context deadline exceeded while generating"},
			wantErr: ErrTransientFailure,
		},
		{
			name:    "internal error text is transient",
			result:  &Result{Text: "INTERNAL ERROR: upstream model returned no content"},
			wantErr: ErrTransientFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Accept(tt.result, tt.cancelled)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Accept() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Accept() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestHasBulletLine(t *testing.T) {
	if !hasBulletLine("intro\n  * indented star bullet") {
		t.Error("star bullets should count")
	}
	if hasBulletLine("no bullets\njust prose\n-dash without space") {
		t.Error("a dash without a trailing space is not a bullet")
	}
}
