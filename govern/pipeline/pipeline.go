// Package pipeline is the governance orchestrator: it composes format
// validation, sanitization, rate governance, and moderation scoring into one
// ordered accept/flag/block decision per submission.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/quillfeed/gatekeeper/govern/countstore"
	"github.com/quillfeed/gatekeeper/govern/moderation"
	"github.com/quillfeed/gatekeeper/govern/ratelimit"
	"github.com/quillfeed/gatekeeper/govern/sanitize"
	"github.com/quillfeed/gatekeeper/govern/validate"
)

// Per-submission pipeline states. Reached in order; Rejected can occur from
// Received (format failure) or RateChecked (cap exceeded), Blocked only from
// Scored. Allowed and Flagged are the terminal success states.
type State string

const (
	StateReceived    State = "received"
	StateValidated   State = "validated"
	StateSanitized   State = "sanitized"
	StateRateChecked State = "rate_checked"
	StateScored      State = "scored"
	StateAllowed     State = "allowed"
	StateFlagged     State = "flagged"
	StateBlocked     State = "blocked"
	StateRejected    State = "rejected"
)

// Submission is one piece of user-submitted content entering governance.
// Never persisted directly; only the decision and, if accepted, the resulting
// content item persist (both the caller's concern).
type Submission struct {
	// opaque author identifier; empty means anonymous
	AuthorID string
	// nil when the content field was absent from the request
	RawText     *string
	SubmittedAt time.Time
	Metadata    map[string]string
}

func (s Submission) Author() string {
	if s.AuthorID == "" {
		return ratelimit.AnonymousAuthor
	}
	return s.AuthorID
}

// Verdict is the terminal outcome for an accepted submission. Text holds the
// sanitized content the caller should persist. Moderation is non-nil whenever
// the scorer produced a result, including for StateAllowed.
type Verdict struct {
	State      State
	Text       string
	Moderation *moderation.Result
}

// Engine runs the governance pipeline. Submissions from different authors
// process fully concurrently; the only point of mutual exclusion is the rate
// governor's check-and-reserve.
type Engine struct {
	Logger    *slog.Logger
	MaxLength int
	Governor  *ratelimit.Governor
	Evaluator *moderation.Evaluator
	// observability counters for flagged/blocked authors (optional)
	Counters countstore.CountStore
}

// ProcessSubmission runs one submission through the pipeline.
//
// The error return is the rejection: *validate.ValidationError or
// *ratelimit.Exceeded for Rejected, *moderation.BlockedError for Blocked.
// Failures in the local stages (validation, sanitization) are bugs, not
// dependency outages, and propagate as-is; only the scorer and counting store
// have fail-open handling, inside their own components.
//
// Stage order is load-bearing: the rate reservation commits before scoring,
// so an author whose content is blocked by moderation still consumes a
// rate-limit slot. Intended: blocked spam attempts still cost quota, which
// damps resubmission storms. Only a validation rejection avoids the
// reservation entirely.
func (eng *Engine) ProcessSubmission(ctx context.Context, sub Submission) (*Verdict, error) {
	start := time.Now()
	author := sub.Author()
	logger := eng.Logger.With("author", author)
	state := StateReceived

	defer func() {
		submissionsProcessed.WithLabelValues(string(state)).Inc()
		processDuration.WithLabelValues(string(state)).Observe(time.Since(start).Seconds())
	}()

	if err := validate.Content(sub.RawText, eng.MaxLength); err != nil {
		state = StateRejected
		var ve *validate.ValidationError
		if errors.As(err, &ve) {
			logger.Info("submission rejected", "kind", ve.Kind)
		}
		return nil, err
	}
	state = StateValidated

	text := sanitize.Normalize(*sub.RawText)
	state = StateSanitized

	if _, err := eng.Governor.CheckAndReserve(ctx, sub.AuthorID); err != nil {
		state = StateRejected
		logger.Info("submission rejected", "kind", "rate_limit")
		return nil, err
	}
	state = StateRateChecked

	decision, result := eng.Evaluator.Evaluate(ctx, text, author, sub.Metadata)
	state = StateScored

	switch decision {
	case moderation.DecisionBlock:
		state = StateBlocked
		eng.bumpAuthorCounter(ctx, "blocked", sub.AuthorID)
		logger.Warn("submission blocked",
			"reasons", result.Reasons,
			"categories", result.Categories,
			"severity", result.Severity)
		return nil, &moderation.BlockedError{
			Reasons:    result.Reasons,
			Categories: result.Categories,
			Severity:   result.Severity,
		}
	case moderation.DecisionFlag:
		state = StateFlagged
		eng.bumpAuthorCounter(ctx, "flagged", sub.AuthorID)
	default:
		state = StateAllowed
	}

	logger.Info("submission accepted", "state", state, "duration", time.Since(start))
	return &Verdict{
		State:      state,
		Text:       text,
		Moderation: result,
	}, nil
}

// best-effort observability counter, keyed on the real author ID; never
// affects the decision
func (eng *Engine) bumpAuthorCounter(ctx context.Context, name, authorID string) {
	if eng.Counters == nil || authorID == "" {
		return
	}
	if err := eng.Counters.Increment(ctx, name, authorID); err != nil {
		eng.Logger.Warn("failed to increment governance counter", "err", err, "counter", name)
	}
}
