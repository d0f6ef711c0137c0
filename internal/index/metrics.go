package index

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "index",
		Name:      "files_total",
		Help:      "Files seen by the indexer, by result (captioned, skipped, ignored, failed).",
	}, []string{"result"})

	indexActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pikeru",
		Subsystem: "index",
		Name:      "active",
		Help:      "1 while the indexer is working through a batch.",
	})

	captionSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pikeru",
		Subsystem: "index",
		Name:      "caption_seconds",
		Help:      "Time taken to caption one file.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})
)
