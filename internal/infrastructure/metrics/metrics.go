package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the auth subsystem.
type Metrics struct {
	// Authentication metrics
	AuthAttempts   prometheus.Counter
	AuthFailures   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	// Session validation metrics
	SessionValidations *prometheus.CounterVec

	// User management metrics
	UsersCreated prometheus.Counter

	// Permission metrics
	PermissionChecks *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		AuthAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanad_auth_attempts_total",
			Help: "Total number of login attempts",
		}),
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sanad_auth_failures_total",
				Help: "Total number of failed login attempts by reason",
			},
			[]string{"reason"},
		),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sanad_active_sessions",
			Help: "Number of sessions opened minus sessions closed since start",
		}),
		SessionValidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sanad_session_validations_total",
				Help: "Total number of session validations by outcome",
			},
			[]string{"outcome"},
		),
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sanad_users_created_total",
			Help: "Total number of users created",
		}),
		PermissionChecks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sanad_permission_checks_total",
				Help: "Total number of permission checks by decision",
			},
			[]string{"resource", "decision"},
		),
	}
}
