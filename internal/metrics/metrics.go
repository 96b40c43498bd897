// Package metrics holds the prometheus collectors of the authentication layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess         = "success"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeError           = "error"
)

var (
	authOperations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "admin_auth_operations_total",
			Help: "Number of admin sign-in, sign-out, refresh and token verification calls by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	guardDecisions = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "auth_guard_decisions_total",
			Help: "Number of authentication and authorization guard decisions by outcome.",
		},
		[]string{"guard", "outcome"},
	)

	scopedSessions = promauto.NewHistogramVec( //nolint:gochecknoglobals
		prometheus.HistogramOpts{
			Name:    "db_scoped_session_duration_seconds",
			Help:    "Duration of scoped database sessions by scope and result.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scope", "result"},
	)
)

// AuthOperation counts one admin auth service call.
func AuthOperation(operation, outcome string) {
	authOperations.WithLabelValues(operation, outcome).Inc()
}

// GuardDecision counts one guard decision.
func GuardDecision(guard, outcome string) {
	guardDecisions.WithLabelValues(guard, outcome).Inc()
}

// ScopedSession observes the duration of one scoped database session.
func ScopedSession(scope string, ok bool, seconds float64) {
	result := OutcomeSuccess
	if !ok {
		result = OutcomeError
	}

	scopedSessions.WithLabelValues(scope, result).Observe(seconds)
}
