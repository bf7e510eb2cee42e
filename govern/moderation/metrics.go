package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var scorerFailCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatekeeper_scorer_failures",
	Help: "Number of submissions allowed unscored because the moderation scorer failed or timed out",
})

var decisionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatekeeper_moderation_decisions",
	Help: "Number of moderation decisions, by outcome",
}, []string{"decision"})
