package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route paths are a small fixed set, so path is a safe label here.
var httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "facegate",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, path, and status class.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "path", "status"})
