package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FlowsTotal tracks completed flows per intent kind and terminal state.
	FlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcard_flows_total",
			Help: "Total number of transaction flows by terminal state",
		},
		[]string{"kind", "state"},
	)

	// RetriesTotal tracks retry sleeps per classified error code.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcard_retries_total",
			Help: "Total number of submission retries",
		},
		[]string{"code"},
	)

	// ResolutionTier tracks which fallback tier produced each outcome.
	ResolutionTier = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcard_resolution_tier_total",
			Help: "Outcome resolutions by fallback tier",
		},
		[]string{"tier"},
	)

	// FlowDuration tracks end-to-end flow latency.
	FlowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repcard_flow_duration_seconds",
			Help:    "End-to-end transaction flow duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// RPCCallsTotal tracks ledger RPC calls per provider and method.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcard_rpc_calls_total",
			Help: "Total number of ledger RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks ledger RPC errors per provider and method.
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repcard_rpc_errors_total",
			Help: "Total number of ledger RPC errors",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks ledger RPC latency.
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "repcard_rpc_latency_seconds",
			Help:    "Ledger RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)

	// OutcomeRecordFailures tracks fire-and-forget record failures.
	OutcomeRecordFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "repcard_outcome_record_failures_total",
			Help: "Failed off-chain outcome record writes",
		},
	)
)
