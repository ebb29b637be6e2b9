// Package metrics defines and registers all custom Prometheus metrics for the
// marketplace API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default registry on package init through
// promauto; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthOperationsTotal counts auth flow outcomes.
// Labels:
//   - operation: "register", "login", "logout", "refresh"
//   - result: "success", "conflict", "not_found", "bad_credentials", "invalid", "stale", "error"
var AuthOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_operations_total",
		Help:      "Total number of auth operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// TokenIssueDuration measures signing plus persisting a token pair.
// Label:
//   - kind: account kind ("client", "vendor")
var TokenIssueDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_issue_duration_seconds",
		Help:      "Duration of token pair issuance including the refresh token write.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"kind"},
)

// RevokedTokenRejectionsTotal counts access tokens refused because they were revoked at logout.
var RevokedTokenRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revoked_token_rejections_total",
		Help:      "Total number of requests rejected with a revoked access token.",
	},
)

// ── Request metrics ───────────────────────────────────────────────────────────

// RequestWritesTotal counts request entity writes.
// Labels:
//   - operation: "create" or "update"
//   - result: "success" or "error"
var RequestWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_writes_total",
		Help:      "Total number of request create/update operations, by result.",
	},
	[]string{"operation", "result"},
)

// ── Back-reference repair metrics ─────────────────────────────────────────────

// BackrefRepairsTotal counts repair jobs by final outcome.
// Label:
//   - result: "repaired", "failed", "dropped"
var BackrefRepairsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backref_repairs_total",
		Help:      "Total number of client request-index repairs, by outcome.",
	},
	[]string{"result"},
)

// BackrefQueueDepth tracks pending repair jobs per worker channel.
// Label:
//   - worker_id: numeric worker index
var BackrefQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backref_queue_depth",
		Help:      "Current number of repair jobs pending in each worker channel.",
	},
	[]string{"worker_id"},
)
