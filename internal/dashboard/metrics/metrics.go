// Package metrics defines and registers the Prometheus metrics exported by
// cinedash. Metrics are registered with the default registry at init and
// served by the /metrics endpoint.
package metrics

import (
	"time"

	"github.com/aussiebroadwan/cinedash/pkg/moviesdk"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cinedash"

// GuardDecisionsTotal counts session guard outcomes.
// Labels:
//   - action: "render_guest", "fetch_and_render", "redirect_login", "redirect_to_role", "render_error"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of session guard decisions, by action.",
	},
	[]string{"action"},
)

// DashboardLoadsTotal counts dashboard page loads.
// Labels:
//   - role: the canonical role that was requested
//   - outcome: "rendered", "redirected", "login", "error"
var DashboardLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_loads_total",
		Help:      "Total number of dashboard loads, by role and outcome.",
	},
	[]string{"role", "outcome"},
)

// LoginAttemptsTotal counts login form submissions.
// Label:
//   - outcome: "success", "invalid", "rejected", "network"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// CatalogRequestDuration measures calls to the movie-catalog API.
// Labels:
//   - op: "login", "me", "dashboard", "logout"
//   - result: "ok" or the error kind ("network", "unauthorized", "status", "malformed")
var CatalogRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "catalog_request_duration_seconds",
		Help:      "Duration of movie-catalog API calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op", "result"},
)

// ClientStorageExpiredTotal counts client storage entries purged by housekeeping.
var ClientStorageExpiredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "client_storage_expired_total",
		Help:      "Total number of expired client storage entries removed.",
	},
)

// RateLimitedTotal counts requests rejected with 429.
// Label:
//   - limit: the rate limit profile name ("strict", "moderate", "lenient", "public")
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by rate limiting, by limit profile.",
	},
	[]string{"limit"},
)

// ObserveCatalog records one catalog API call. Its signature matches
// moviesdk.ObserveFunc.
func ObserveCatalog(op string, took time.Duration, err error) {
	CatalogRequestDuration.WithLabelValues(op, catalogResult(err)).Observe(took.Seconds())
}

func catalogResult(err error) string {
	if err == nil {
		return "ok"
	}
	return moviesdk.KindOf(err).String()
}
