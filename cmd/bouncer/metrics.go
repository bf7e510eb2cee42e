package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("bouncer")

var requestsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_requests_received",
	Help: "Number of governance API requests received, by kind",
}, []string{"kind"})
