package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rebalancer"

var (
	// RebalanceRequestsTotal counts rebalance computations by outcome (valid, invalid, or an error kind).
	RebalanceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rebalance_requests_total",
		Help:      "Rebalance computations by strategy and outcome.",
	}, []string{"strategy", "outcome"})

	RebalanceDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rebalance_duration_seconds",
		Help:      "Time spent computing a rebalance, including balance and price fetches.",
		Buckets:   prometheus.DefBuckets,
	})

	RebalanceActions = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rebalance_actions",
		Help:      "Number of swap actions proposed per rebalance.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
	})

	PriceFeedRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_feed_requests_total",
		Help:      "Price feed HTTP requests by result.",
	}, []string{"result"})

	PriceFeedRequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "price_feed_request_duration_seconds",
		Help:      "Latency of price feed HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	})

	PriceCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_cache_hits_total",
		Help:      "Quotes served from the price cache.",
	})

	BalanceReadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_reads_total",
		Help:      "Per-chain balance batch reads by result.",
	}, []string{"chain_id", "result"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RebalanceRequestsTotal,
			RebalanceDuration,
			RebalanceActions,
			PriceFeedRequestsTotal,
			PriceFeedRequestDuration,
			PriceCacheHitsTotal,
			BalanceReadsTotal,
		)
	})
}
