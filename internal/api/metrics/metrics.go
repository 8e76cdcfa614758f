// Package metrics defines the portal's custom Prometheus metrics. They are
// registered with the default registry on import through promauto and
// scraped from /metrics next to echoprometheus' HTTP metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sirpyerre/members-portal/internal/core/ports"
)

const namespace = "portal"

// Operation label values for AuthAttemptsTotal.
const (
	OpRegister = "register"
	OpLogin    = "login"
)

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid_input", "conflict", "not_found", "bad_password" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// RoleChangesTotal counts promote/demote requests.
// Labels:
//   - user_type: the role being assigned
//   - result: "success" or "error"
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of user type changes, by target role and outcome.",
	},
	[]string{"user_type", "result"},
)

var SessionsDestroyedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_destroyed_total",
		Help:      "Total number of sessions ended by logout.",
	},
)

// PasswordHashDuration measures bcrypt work.
// Label:
//   - op: "hash" or "compare"
var PasswordHashDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of password hashing and comparison.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2},
	},
	[]string{"op"},
)

type instrumentedHasher struct {
	next ports.PasswordHasher
}

// InstrumentHasher wraps h so every call is observed in PasswordHashDuration.
func InstrumentHasher(h ports.PasswordHasher) ports.PasswordHasher {
	return instrumentedHasher{next: h}
}

func (h instrumentedHasher) Hash(password string) (string, error) {
	defer observe("hash", time.Now())
	return h.next.Hash(password)
}

func (h instrumentedHasher) Compare(hash, password string) error {
	defer observe("compare", time.Now())
	return h.next.Compare(hash, password)
}

func observe(op string, start time.Time) {
	PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
