// Package metrics declares the oracle's Prometheus metrics: one package
// scope var block registered at import time via promauto, mirroring the
// source's lazy_static registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RPCVerifyTotalDuration times a whole top-level Verify call, wallet
	// resolution through every auth method's outcome.
	RPCVerifyTotalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "rpc_verify_total_duration_seconds",
		Help: "Histogram of how long top-level verify() takes",
		Buckets: []float64{
			0.01, 0.02, 0.05,
			0.08, 0.10, 0.12, 0.14, 0.16, 0.18,
			0.30,
			0.75,
			2.0,
		},
	})

	// RPCSingleVerifyDuration times one auth method's verification,
	// including any AuthCall indirection it triggers.
	RPCSingleVerifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rpc_single_verify_duration_seconds",
		Help:    "Histogram of how long individual verify() takes",
		Buckets: []float64{0.01, 0.02, 0.03, 0.04, 0.05, 0.25, 1.0, 1.5, 2.0},
	})

	// RPCGetAuthMethodsDuration times the NEAR get_wallet threshold call.
	RPCGetAuthMethodsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "rpc_get_auth_methods_duration_seconds",
		Help: "Histogram of how long get auth methods for wallet takes",
		Buckets: []float64{
			0.01, 0.02, 0.03, 0.05, 0.06, 0.07,
			0.08, 0.1, 0.15,
			0.5,
			1.5,
		},
	})

	// VerifyTotalAttempts counts every auth-method verification attempt,
	// labeled by the numeric chain id it targeted.
	VerifyTotalAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verify_total_attempts",
		Help: "Total attempts to perform verify per chain",
	}, []string{"chain_id"})

	// VerifySuccessAttempts counts the subset of VerifyTotalAttempts whose
	// auth method returned true.
	VerifySuccessAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "verify_success_attempts",
		Help: "Success attempts to perform verify per chain",
	}, []string{"chain_id"})

	// RPCAvailabilityServerUp is 1 when a chain's health probe against a
	// given (redacted) server domain most recently succeeded, 0 otherwise.
	RPCAvailabilityServerUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_availability_server_up",
		Help: "Whether the most recent health probe against a configured RPC server succeeded",
	}, []string{"chain_id", "domain"})

	// RPCAvailabilityThresholdDelta is the number of currently-up servers
	// minus the configured threshold for a chain; negative means the chain
	// cannot currently reach consensus even if every remaining call
	// succeeds.
	RPCAvailabilityThresholdDelta = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rpc_availability_threshold_delta",
		Help: "Up server count minus configured threshold, per chain",
	}, []string{"chain_id"})
)
