package keyword

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheHitCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gatekeeper_keyword_cache_hits",
	Help: "Number of keyword scorer results served from the content-hash cache",
})
