package mempool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "vigcoin"
	subsystem        = "mempool"
)

var (
	poolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "transactions",
			Help:      "Number of transactions in the pool",
		},
	)

	admissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "admissions_total",
			Help:      "Total number of transactions offered to the pool",
		},
		[]string{"result"}, // result: "added", "ignored", "rejected"
	)

	evictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "evictions_total",
			Help:      "Total number of transactions removed from the pool",
		},
		[]string{"reason"}, // reason: "expired", "taken"
	)

	fillDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "fill_duration_seconds",
			Help:      "Time taken to fill a block template",
			Buckets:   prometheus.DefBuckets,
		},
	)

	fillTransactions = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "fill_transactions",
			Help:      "Number of transactions placed in a block template",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"type"}, // type: "ordinary", "fusion"
	)
)
