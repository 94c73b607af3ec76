// Package metrics exposes Prometheus instrumentation for the catalog client,
// inventory reconciliation and the deck engine. Every recorder is nil-safe so
// components can be built without metrics in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carddex"

// Metrics groups the recorders of every instrumented component.
type Metrics struct {
	Catalog   *CatalogMetrics
	Inventory *InventoryMetrics
	Decks     *DeckMetrics
}

// New registers all recorders on reg. A nil registerer yields no-op recorders.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Catalog:   NewCatalogMetrics(reg),
		Inventory: NewInventoryMetrics(reg),
		Decks:     NewDeckMetrics(reg),
	}
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
