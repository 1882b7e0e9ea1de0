package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cuegen_service_requests_total",
		Help: "Service requests by subject and outcome.",
	}, []string{"subject", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cuegen_service_request_duration_seconds",
		Help:    "Service request handling time by subject.",
		Buckets: prometheus.DefBuckets,
	}, []string{"subject"})
)
