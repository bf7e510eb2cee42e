package reports

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reportCreatedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gatekeeper_reports_created",
	Help: "Number of citizen reports filed, by category",
}, []string{"category"})
