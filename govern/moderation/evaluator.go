package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionFlag  Decision = "flag"
	DecisionBlock Decision = "block"
)

const (
	DefaultScoreTimeout  = 5 * time.Second
	DefaultFlagThreshold = 0.4
)

// length of content excerpt included in scorer failure logs
const logExcerptLen = 64

// Evaluator calls a Scorer and applies the interpretation policy to its
// result.
//
// Scorer failure is fail-open: a scorer outage must never become a platform
// outage. The trade-off is that abuse controls are absent while the scorer is
// down, so every fail-open pass is logged at error level and counted in
// metrics rather than silently swallowed.
type Evaluator struct {
	Scorer        Scorer
	Timeout       time.Duration
	FlagThreshold float64
	Logger        *slog.Logger
}

func NewEvaluator(scorer Scorer, flagThreshold float64, logger *slog.Logger) *Evaluator {
	if flagThreshold <= 0 {
		flagThreshold = DefaultFlagThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		Scorer:        scorer,
		Timeout:       DefaultScoreTimeout,
		FlagThreshold: flagThreshold,
		Logger:        logger,
	}
}

// Evaluate scores the content and interprets the result.
//
// Returns DecisionBlock when the scorer blocked the content; DecisionFlag when
// the scorer suggested flagging or reported confidence above the threshold
// (content is allowed through but recorded for review); DecisionAllow
// otherwise. On scorer error, timeout, or panic, returns DecisionAllow with a
// nil result: the submission proceeds unscored.
func (ev *Evaluator) Evaluate(ctx context.Context, text, authorID string, meta map[string]string) (Decision, *Result) {
	res, err := ev.score(ctx, text, meta)
	if err != nil {
		ev.Logger.Error("moderation scorer unavailable, allowing submission unscored",
			"err", err,
			"author", authorID,
			"excerpt", excerpt(text))
		scorerFailCount.Inc()
		return DecisionAllow, nil
	}

	// scorers may return a shared result (the keyword scorer caches by content
	// hash), and results are immutable once produced; normalize a private copy
	r := *res
	normalize(&r)
	decision := interpret(&r, ev.FlagThreshold)
	decisionCount.WithLabelValues(string(decision)).Inc()
	return decision, &r
}

func (ev *Evaluator) score(ctx context.Context, text string, meta map[string]string) (res *Result, err error) {
	timeout := ev.Timeout
	if timeout <= 0 {
		timeout = DefaultScoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// scorer implementations are swappable and possibly third-party; treat a
	// panic the same as any other scorer failure
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("scorer panic: %v", r)
		}
	}()

	res, err = ev.Scorer.Score(ctx, text, meta)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("scorer returned no result")
	}
	return res, nil
}

// Clamps confidence to [0,1] and forces the blocked/action invariant
// (Blocked implies ActionBlock) if a scorer misbehaves.
func normalize(res *Result) {
	if res.Confidence < 0 {
		res.Confidence = 0
	} else if res.Confidence > 1 {
		res.Confidence = 1
	}
	if res.Blocked {
		res.SuggestedAction = ActionBlock
	}
}

func interpret(res *Result, flagThreshold float64) Decision {
	if res.Blocked {
		return DecisionBlock
	}
	if res.SuggestedAction == ActionFlag || res.Confidence > flagThreshold {
		return DecisionFlag
	}
	return DecisionAllow
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= logExcerptLen {
		return text
	}
	return string(runes[:logExcerptLen]) + "…"
}
