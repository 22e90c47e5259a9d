package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var rateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "codecast",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the Redis rate limiter",
})
