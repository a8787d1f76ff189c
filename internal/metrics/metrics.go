// Package metrics registers the prometheus collectors exposed by
// cmd/redikv-server's metrics endpoint (SPEC_FULL §6): command counters by
// name/outcome, keyspace size, accounted bytes, eviction counters,
// evidence event counters, and active-expire cycle counters. The
// registration style — promauto-registered package vars under one
// namespace constant — follows the teacher's internal/metrics/prometheus.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "redikv"

var (
	// CommandsTotal counts dispatched commands by canonical name and
	// outcome ("ok", "error", "queued").
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of dispatched commands by name and outcome",
		},
		[]string{"command", "outcome"},
	)

	// KeyspaceKeys reports the current live key count.
	KeyspaceKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "keyspace_keys",
			Help:      "Number of live keys in the keyspace",
		},
	)

	// AccountedBytes reports the current maxmemory-accounted byte total.
	AccountedBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accounted_bytes",
			Help:      "Accounted byte total used for maxmemory pressure classification",
		},
	)

	// EvictionsTotal counts evicted keys by reason (the eviction-loop
	// outcome status that produced them).
	EvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Total number of keys evicted by the maxmemory eviction loop",
		},
		[]string{"policy"},
	)

	// EvidenceEventsTotal counts appended evidence ledger events.
	EvidenceEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evidence_events_total",
			Help:      "Total number of evidence ledger events appended",
		},
		[]string{"subsystem", "action", "decision_action"},
	)

	// ActiveExpireSampledTotal and ActiveExpireEvictedTotal count keys
	// examined/removed by the active-expire cycle.
	ActiveExpireSampledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_expire_sampled_total",
			Help:      "Total number of keys sampled by the active-expire cycle",
		},
	)
	ActiveExpireEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_expire_evicted_total",
			Help:      "Total number of keys removed by the active-expire cycle",
		},
	)
)

// ObserveCommand increments the command outcome counter.
func ObserveCommand(name, outcome string) {
	CommandsTotal.WithLabelValues(name, outcome).Inc()
}

// ObserveKeyspace updates the keyspace size and accounted byte gauges.
func ObserveKeyspace(keys int64, accountedBytes int64) {
	KeyspaceKeys.Set(float64(keys))
	AccountedBytes.Set(float64(accountedBytes))
}

// ObserveEviction increments the eviction counter for policy and records
// how many keys it actually evicted.
func ObserveEviction(policy string, evicted int) {
	if evicted <= 0 {
		return
	}
	EvictionsTotal.WithLabelValues(policy).Add(float64(evicted))
}

// ObserveEvidenceEvent increments the evidence-event counter.
func ObserveEvidenceEvent(subsystem, action, decisionAction string) {
	EvidenceEventsTotal.WithLabelValues(subsystem, action, decisionAction).Inc()
}

// ObserveActiveExpireCycle records one active-expire cycle's sample/evict
// counts.
func ObserveActiveExpireCycle(sampled, evicted int) {
	ActiveExpireSampledTotal.Add(float64(sampled))
	ActiveExpireEvictedTotal.Add(float64(evicted))
}
