package hub

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codecast",
		Subsystem: "ws",
		Name:      "connections_active",
		Help:      "Open websocket connections",
	})

	// framesDropped counts outbound frames dropped because a client's send queue was full.
	framesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "ws",
		Name:      "frames_dropped_total",
		Help:      "Outbound frames dropped on full client queues",
	})

	// Labels: result (ok, rejected, malformed)
	inboundEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "ws",
		Name:      "inbound_events_total",
		Help:      "Inbound websocket events by handling result",
	}, []string{"result"})
)
