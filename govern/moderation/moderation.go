// Package moderation scores submitted content against platform policy and
// interprets scorer output into an allow/flag/block decision.
//
// The scorer itself is a capability interface: rule-based, ML-backed, and
// third-party implementations are all interchangeable without touching the
// pipeline. See the keyword and remote sub-packages for the two bundled
// implementations.
package moderation

import (
	"context"
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

type Action string

const (
	ActionAllow Action = "allow"
	ActionFlag  Action = "flag"
	ActionBlock Action = "block"
)

// Result is a scorer's verdict on a single piece of content. Immutable once
// produced; the pipeline attaches it to the submission's verdict so handlers
// and telemetry can record it.
type Result struct {
	Blocked         bool     `json:"blocked"`
	Reasons         []string `json:"reasons,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Severity        Severity `json:"severity"`
	Confidence      float64  `json:"confidence"`
	SuggestedAction Action   `json:"suggestedAction"`
}

// Scorer is the external scoring capability. Implementations should respect
// ctx cancellation; the evaluator bounds every call with a timeout.
type Scorer interface {
	Score(ctx context.Context, text string, meta map[string]string) (*Result, error)
}

// BlockedError is the fail-closed rejection for content a scorer blocked. It
// carries the policy-facing fields only, never raw scorer internals.
type BlockedError struct {
	Reasons    []string
	Categories []string
	Severity   Severity
}

func (e *BlockedError) Error() string {
	if len(e.Reasons) == 0 {
		return "content blocked by moderation policy"
	}
	return fmt.Sprintf("content blocked by moderation policy: %s", strings.Join(e.Reasons, "; "))
}
