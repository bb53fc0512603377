package validator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "vigcoin"
	subsystem        = "validator"
)

var (
	inputChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "input_checks_total",
			Help:      "Total number of contextual input checks",
		},
		[]string{"result"}, // result: "accept", "reject", "error"
	)

	inputCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "input_check_duration_seconds",
			Help:      "Time taken to check the inputs of a transaction",
			Buckets:   prometheus.DefBuckets,
		},
	)

	signatureCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "signature_cache_hits_total",
			Help:      "Total number of transactions whose signatures were already verified",
		},
	)
)
