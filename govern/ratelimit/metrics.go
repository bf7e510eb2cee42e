package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var limitedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatekeeper_ratelimit_rejections",
	Help: "Number of submissions rejected for exceeding the rate cap",
})

var failOpenCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatekeeper_ratelimit_fail_open",
	Help: "Number of submissions allowed unthrottled because a dependency was unreachable",
}, []string{"dependency"})
