package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// editsProcessed counts edits by kind: attributed or silent.
	editsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "sync",
		Name:      "edits_total",
		Help:      "Edits processed by the sync engine",
	}, []string{"kind"})

	// alignDuration measures the line alignment, the dominant cost of an edit.
	alignDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "codecast",
		Subsystem: "sync",
		Name:      "align_duration_seconds",
		Help:      "Time spent aligning two snapshots",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// activitiesEmitted counts narrated activities by kind: deleted, modified, entered.
	activitiesEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "sync",
		Name:      "activities_total",
		Help:      "Activities broadcast to rooms",
	}, []string{"kind"})

	// ledgerEntriesSkipped counts client-asserted ledger entries rejected during merge.
	ledgerEntriesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "sync",
		Name:      "ledger_entries_skipped_total",
		Help:      "Client-asserted authorship entries that were out of bounds or malformed",
	})

	eventsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "dispatch",
		Name:      "events_sent_total",
		Help:      "Outbound events handed to a connection",
	}, []string{"event"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codecast",
		Subsystem: "dispatch",
		Name:      "events_dropped_total",
		Help:      "Outbound events dropped because the peer was gone or its queue was full",
	}, []string{"event"})

	// executionDuration measures calls to the remote runner.
	// Labels: language, status (ok, error)
	executionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codecast",
		Subsystem: "execution",
		Name:      "duration_seconds",
		Help:      "Remote code execution latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	}, []string{"language", "status"})
)
