package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TxTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolfarm_tx_total",
			Help: "Total number of executed transactions",
		},
		[]string{"type", "status"},
	)

	BlocksProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tolfarm_blocks_produced_total",
			Help: "Total number of blocks produced",
		},
	)

	BlockProductionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tolfarm_block_production_duration_seconds",
			Help:    "Time to execute, seal and commit one block",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	ChainHeight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tolfarm_chain_height",
			Help: "Height of the chain tip",
		},
	)

	MempoolSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tolfarm_mempool_size",
			Help: "Number of pending transactions",
		},
	)

	RewardsMinted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolfarm_rewards_minted_total",
			Help: "Tokens minted to players, by source",
		},
		[]string{"source"},
	)

	ReferralPaid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolfarm_referral_paid_total",
			Help: "Referral payouts, by currency",
		},
		[]string{"currency"},
	)

	RandomOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolfarm_random_outcomes_total",
			Help: "Settled randomized actions, by action and result",
		},
		[]string{"action", "result"},
	)

	RPCRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tolfarm_rpc_requests_total",
			Help: "JSON-RPC requests, by method and status",
		},
		[]string{"method", "status"},
	)
)
