// Package metrics exposes Prometheus instrumentation for the mock service.
// Parity test harnesses scrape these to confirm the emulation saw the same
// traffic the real service would have.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntitiesCreated counts entity creations by kind
	// (simulator, scheduler, game, profile, simulator_instance).
	EntitiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "egta_mock",
		Name:      "entities_created_total",
		Help:      "Number of entities created, by kind.",
	}, []string{"kind"})

	// EntitiesDestroyed counts soft deletions by kind.
	EntitiesDestroyed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "egta_mock",
		Name:      "entities_destroyed_total",
		Help:      "Number of entities soft-deleted, by kind.",
	}, []string{"kind"})

	// ObservationsSynthesized counts observations produced by the
	// scheduling engine.
	ObservationsSynthesized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "egta_mock",
		Name:      "observations_synthesized_total",
		Help:      "Number of synthetic observations generated.",
	})

	// ProfilesDeduplicated counts profile requests resolved to an existing
	// profile instead of creating a new one.
	ProfilesDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "egta_mock",
		Name:      "profiles_deduplicated_total",
		Help:      "Number of profile requests that hit the dedup table.",
	})
)
