package thumb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "thumb",
		Name:      "cache_hits_total",
		Help:      "Thumbnail lookups served from the disk cache.",
	})

	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "thumb",
		Name:      "cache_misses_total",
		Help:      "Thumbnail lookups that needed a regeneration.",
	})

	generateSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pikeru",
		Subsystem: "thumb",
		Name:      "generate_seconds",
		Help:      "Time spent decoding and resizing one thumbnail.",
		Buckets:   prometheus.DefBuckets,
	})

	thumbErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "thumb",
		Name:      "errors_total",
		Help:      "Thumbnail generation failures, by file kind.",
	}, []string{"kind"})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pikeru",
		Subsystem: "thumb",
		Name:      "queue_depth",
		Help:      "Jobs waiting for a thumbnail worker.",
	})
)
