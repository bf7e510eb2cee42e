package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quillfeed/gatekeeper/govern/countstore"
	"github.com/quillfeed/gatekeeper/govern/moderation"
	"github.com/quillfeed/gatekeeper/govern/ratelimit"
)

// scorer driven by magic strings in the content, for tests
type scriptedScorer struct{}

func (scriptedScorer) Score(ctx context.Context, text string, meta map[string]string) (*moderation.Result, error) {
	switch {
	case strings.Contains(text, "BLOCKME"):
		return &moderation.Result{
			Blocked:         true,
			Reasons:         []string{"scripted block"},
			Categories:      []string{"test"},
			Severity:        moderation.SeverityHigh,
			Confidence:      0.95,
			SuggestedAction: moderation.ActionBlock,
		}, nil
	case strings.Contains(text, "FLAGME"):
		return &moderation.Result{
			Severity:        moderation.SeverityMedium,
			Confidence:      0.6,
			SuggestedAction: moderation.ActionFlag,
		}, nil
	case strings.Contains(text, "FAILME"):
		return nil, fmt.Errorf("scripted scorer outage")
	}
	return &moderation.Result{
		Severity:        moderation.SeverityLow,
		Confidence:      0.1,
		SuggestedAction: moderation.ActionAllow,
	}, nil
}

// EngineTestFixture returns an engine with in-memory counters, a scripted
// scorer, and default limits (30 posts per hour, 2000 chars).
func EngineTestFixture() *Engine {
	counters := countstore.NewMemCountStore(time.Hour)
	return &Engine{
		Logger:    slog.Default(),
		MaxLength: 2000,
		Governor:  ratelimit.NewGovernor(counters, time.Hour, 30, nil),
		Evaluator: moderation.NewEvaluator(scriptedScorer{}, 0.4, nil),
		Counters:  counters,
	}
}
