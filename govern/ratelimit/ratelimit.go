// Package ratelimit enforces the per-author submission cap over a rolling
// window.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quillfeed/gatekeeper/govern/countstore"
)

// Counter namespace for accepted submissions.
const SubmissionCounter = "submission"

// Display name for submissions carrying no identity, used in logs and
// counters. Never an enforcement key: the governor bypasses on the empty
// author ID only, so a platform user whose ID happens to be "anonymous" is
// still governed like anyone else.
const AnonymousAuthor = "anonymous"

const (
	DefaultWindow = time.Hour
	DefaultCap    = 30
)

// Exceeded is returned when an author is over their submission cap.
//
// ResetTime is a fixed-horizon estimate (now + window), not the precise expiry
// of the oldest counted submission. Simpler, and deliberately so: the client
// just needs a backoff hint, not exact accounting.
type Exceeded struct {
	Limit     int
	Current   int
	ResetTime time.Time
}

func (e *Exceeded) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d of %d submissions in window, resets %s", e.Current, e.Limit, e.ResetTime.Format(time.RFC3339))
}

// Reservation reports the post-reservation counter state for an accepted
// submission.
type Reservation struct {
	Current int
	Limit   int
}

// Governor serializes check-and-reserve per author through the counting
// store's atomic Reserve, so concurrent submissions from one author can never
// both take the last remaining slot.
type Governor struct {
	Counters countstore.CountStore
	Window   time.Duration
	Cap      int
	Logger   *slog.Logger
}

func NewGovernor(counters countstore.CountStore, window time.Duration, cap int, logger *slog.Logger) *Governor {
	if window <= 0 {
		window = DefaultWindow
	}
	if cap <= 0 {
		cap = DefaultCap
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Governor{
		Counters: counters,
		Window:   window,
		Cap:      cap,
		Logger:   logger,
	}
}

// CheckAndReserve consumes one submission slot for the author, or fails with
// *Exceeded when the author is at their cap.
//
// Anonymous submissions (empty author ID) pass through without touching the
// counting store: rate limiting is an accountability mechanism, and
// accountability requires identity. If the counting store itself is
// unreachable this fails open: the submission is allowed, nothing is counted,
// and the condition is logged at error level. Availability of the posting
// path outweighs strict enforcement of a soft abuse control.
func (g *Governor) CheckAndReserve(ctx context.Context, authorID string) (*Reservation, error) {
	if authorID == "" {
		return &Reservation{Limit: g.Cap}, nil
	}

	current, ok, err := g.Counters.Reserve(ctx, SubmissionCounter, authorID, g.Cap)
	if err != nil {
		g.Logger.Error("counting store unreachable, allowing submission unthrottled", "err", err, "author", authorID)
		failOpenCount.WithLabelValues("countstore").Inc()
		return &Reservation{Limit: g.Cap}, nil
	}
	if !ok {
		limitedCount.Inc()
		return nil, &Exceeded{
			Limit:     g.Cap,
			Current:   current,
			ResetTime: time.Now().Add(g.Window),
		}
	}
	return &Reservation{Current: current, Limit: g.Cap}, nil
}
