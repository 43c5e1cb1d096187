package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DepositsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_deposits_total",
		Help: "The total number of deposit operations processed",
	}, []string{"status"})

	WithdrawalsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_withdrawals_total",
		Help: "The total number of withdraw operations processed",
	}, []string{"status"})

	ClaimsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_claims_total",
		Help: "The total number of claim operations processed",
	}, []string{"status"})

	AllocationRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldgate_allocation_rejects_total",
		Help: "Total allocation engine rejections",
	}, []string{"reason"})

	RewardsAccrued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yieldgate_rewards_accrued_total",
		Help: "Sum of rewards credited across all claims",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yieldgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
