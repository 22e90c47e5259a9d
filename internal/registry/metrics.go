package registry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// roomsActive tracks live rooms; a room is reclaimed as soon as its last member leaves.
var roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "codecast",
	Name:      "rooms_active",
	Help:      "Number of rooms with at least one connected member",
})
