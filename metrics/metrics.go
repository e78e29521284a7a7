// Package metrics registers the Prometheus collectors gate reports to.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gate"

var (
	Verifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_total",
		Help:      "Total number of token verifications by outcome",
	}, []string{"outcome"})

	VerifyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "verify_duration_seconds",
		Help:      "Time spent waiting on the auth server",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2.0, 12), // 5ms to ~10s
	}, []string{"outcome"})

	GuardDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions",
	}, []string{"state", "route"})

	CoalescedVerifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verifications_coalesced_total",
		Help:      "Verifications answered by a request already in flight",
	})
)
