// Package metrics defines and registers all custom Prometheus metrics for
// the booking core. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "booking"

// SignInsTotal counts credential exchanges by outcome.
// Label:
//   - result: "ok", "rejected" (bad credentials/unknown account), or "error"
var SignInsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_ins_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)

// ProfileLookupsTotal counts profile resolutions after authentication.
// Label:
//   - result: "found", "not_found", or "error"
var ProfileLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_lookups_total",
		Help:      "Total number of profile directory lookups, by result.",
	},
	[]string{"result"},
)

// CatalogWritesTotal counts catalog write operations.
// Labels:
//   - op: "create" or "update"
//   - result: "ok", "invalid" (rejected before the store), or "error"
var CatalogWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_writes_total",
		Help:      "Total number of service catalog writes, by operation and result.",
	},
	[]string{"op", "result"},
)

// SessionTransitionsTotal counts session state transitions as observed by
// the process-wide controller subscription.
// Label:
//   - state: the state entered ("resolving", "authenticated", "anonymous")
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by state entered.",
	},
	[]string{"state"},
)
