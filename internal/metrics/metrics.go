package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ZapIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapper_zap_in_total",
			Help: "Total number of zap-in operations",
		},
		[]string{"status"},
	)

	ZapOuts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapper_zap_out_total",
			Help: "Total number of zap-out operations",
		},
		[]string{"status"},
	)

	ZapDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zapper_operation_duration_seconds",
			Help:    "Zap operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	PreSwapRatio = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "zapper_pre_swap_ratio",
			Help:    "Fraction of the input amount sized into the pre-swap",
			Buckets: prometheus.LinearBuckets(0.30, 0.025, 9),
		},
	)
)
