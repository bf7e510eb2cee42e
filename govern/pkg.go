package govern

import (
	"github.com/quillfeed/gatekeeper/govern/moderation"
	"github.com/quillfeed/gatekeeper/govern/pipeline"
	"github.com/quillfeed/gatekeeper/govern/ratelimit"
)

type Engine = pipeline.Engine
type Submission = pipeline.Submission
type Verdict = pipeline.Verdict

type Scorer = moderation.Scorer
type ModerationResult = moderation.Result
type Evaluator = moderation.Evaluator

var (
	AnonymousAuthor = ratelimit.AnonymousAuthor

	StateAllowed = pipeline.StateAllowed
	StateFlagged = pipeline.StateFlagged
	StateBlocked = pipeline.StateBlocked
)
