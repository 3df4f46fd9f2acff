// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PageFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lp_tracker",
		Name:      "history_page_fetches_total",
		Help:      "LP history page requests by outcome (ok, timeout, transport, service, payload).",
	}, []string{"outcome"})

	FetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lp_tracker",
		Name:      "history_fetch_duration_seconds",
		Help:      "Time to fetch every page of one LP history.",
		Buckets:   []float64{.25, .5, 1, 2, 4, 8, 16, 32, 64},
	}, []string{"outcome"})

	CutoffCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lp_tracker",
		Name:      "cutoff_cache_lookups_total",
		Help:      "Apex cutoff cache lookups by result.",
	}, []string{"result"})
)
