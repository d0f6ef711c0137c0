package portal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "portal",
		Name:      "requests_total",
		Help:      "Total portal requests, by method and result.",
	}, []string{"method", "result"})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pikeru",
		Subsystem: "portal",
		Name:      "http_requests_total",
		Help:      "Total status server requests, by route.",
	}, []string{"route"})
)
