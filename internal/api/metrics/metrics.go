// Package metrics defines and registers the custom Prometheus metrics of the
// SIP-KPBJ API. It is the single source of truth for metric names, labels, and
// help strings; metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "sipkpbj"
	subsystem = "auth"
)

// ── Session lifecycle ─────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts self-registration attempts.
// Label:
//   - result: "success", "exists", "invalid" or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// RefreshTotal counts /me session refreshes.
// Label:
//   - result: "rotated" or "anonymous"
var RefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "refresh_total",
		Help:      "Total number of session refresh calls, by result.",
	},
	[]string{"result"},
)

// ── Gates ─────────────────────────────────────────────────────────────────────

// GateRejectionsTotal counts requests rejected by the authentication and
// authorization middleware.
// Label:
//   - reason: "missing_cookie", "invalid_session", "forbidden" or "error"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the auth gates, by reason.",
	},
	[]string{"reason"},
)

// ── Audit trail ───────────────────────────────────────────────────────────────

// AuditEventsDroppedTotal counts audit events discarded because a worker buffer was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of audit events dropped on a full dispatcher queue.",
	},
)

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
