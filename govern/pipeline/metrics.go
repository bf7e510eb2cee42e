package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatekeeper_submissions_processed",
	Help: "Number of submissions processed, by terminal state",
}, []string{"state"})

var processDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "gatekeeper_submission_duration_sec",
	Help: "Total duration of submission pipeline processing",
}, []string{"state"})
