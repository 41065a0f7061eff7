// Package metrics defines and registers all custom Prometheus metrics for the
// OMS console. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oms_console"

// ── Session metrics ───────────────────────────────────────────────────────────

// LoginsTotal counts console login attempts.
// Labels:
//   - method: "email" or "federated"
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of console login attempts, by method and result.",
	},
	[]string{"method", "result"},
)

// LoginDuration measures how long the credential check takes.
var LoginDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "login_duration_seconds",
		Help:      "Duration of the remote credential check.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// LogoutsTotal counts explicit logouts.
var LogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logouts_total",
		Help:      "Total number of console logouts.",
	},
)

// SessionExpiriesTotal counts sessions logged out because their token expired.
var SessionExpiriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_expiries_total",
		Help:      "Total number of sessions forcibly logged out on token expiry.",
	},
)

// SessionRestoresTotal counts restore outcomes.
// Label:
//   - result: "restored", "anonymous", "corrupt" or "unavailable"
var SessionRestoresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_restores_total",
		Help:      "Total number of session restores, by outcome.",
	},
	[]string{"result"},
)

// GuardDecisionsTotal counts route guard decisions.
// Label:
//   - decision: "render", "redirect_login", "redirect_unauthorized", "show_loading"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by decision.",
	},
	[]string{"decision"},
)

// ── Directory metrics ─────────────────────────────────────────────────────────

// DirectoryLoginsTotal counts logins served by the bundled directory.
var DirectoryLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_logins_total",
		Help:      "Total number of directory logins, by method and result.",
	},
	[]string{"method", "result"},
)
