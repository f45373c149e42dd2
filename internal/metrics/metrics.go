package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts signal lookups answered from the store.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalscan_cache_hits_total",
		Help: "Signal lookups served from the cache store.",
	})

	// CacheMisses counts lookups that required a fresh computation.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalscan_cache_misses_total",
		Help: "Signal lookups that missed the cache store.",
	})

	// SignalsGenerated counts freshly computed records by label.
	SignalsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signalscan_signals_generated_total",
		Help: "Freshly generated signal records by label.",
	}, []string{"signal"})

	// FetchFailures counts symbols whose analysis failed.
	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalscan_fetch_failures_total",
		Help: "Symbols whose price fetch or computation failed.",
	})

	// StoreWriteFailures counts dropped cache writes.
	StoreWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "signalscan_store_write_failures_total",
		Help: "Signal records that could not be persisted.",
	})

	// ScanDuration observes the wall time of scheduled market scans.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "signalscan_scan_duration_seconds",
		Help:    "Duration of scheduled market scans.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
