package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing and search Prometheus metrics.
var (
	RecordsIndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "madsearch",
			Name:      "records_indexed_total",
			Help:      "Total index record writes",
		},
		[]string{"type", "outcome"}, // outcome: "ok" / "error"
	)

	RecordsRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "madsearch",
			Name:      "records_removed_total",
			Help:      "Total index record removals",
		},
		[]string{"mode"}, // "soft" / "purge"
	)

	RebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "madsearch",
			Name:      "rebuild_duration_seconds",
			Help:      "Full index rebuild duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	RebuildsSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "madsearch",
			Name:      "rebuilds_skipped_total",
			Help:      "Rebuild requests skipped because one was already running",
		},
	)

	EventQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "madsearch",
			Name:      "event_queue_depth",
			Help:      "Buffered entity-change events awaiting indexing",
		},
	)

	EventsDroppedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "madsearch",
			Name:      "events_dropped_total",
			Help:      "Entity-change events dropped due to a full queue",
		},
	)

	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "madsearch",
			Name:      "searches_total",
			Help:      "Total search requests",
		},
		[]string{"outcome"}, // "ok" / "error"
	)

	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "madsearch",
			Name:      "search_duration_seconds",
			Help:      "Search request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)
)

var indexingMetricsRegistered bool

// RegisterIndexingMetrics registers indexing metrics. Must be called once from main.
func RegisterIndexingMetrics() {
	if indexingMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecordsIndexedTotal)
	prometheus.MustRegister(RecordsRemovedTotal)
	prometheus.MustRegister(RebuildDuration)
	prometheus.MustRegister(RebuildsSkippedTotal)
	prometheus.MustRegister(EventQueueDepth)
	prometheus.MustRegister(EventsDroppedTotal)
	prometheus.MustRegister(SearchesTotal)
	prometheus.MustRegister(SearchDuration)
	indexingMetricsRegistered = true
}
