package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records collection changes.
type InventoryMetrics struct {
	acquisitions *prometheus.CounterVec
	bulkItems    *prometheus.CounterVec
	bulkDuration prometheus.Histogram
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	acquisitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_acquisitions_total",
		Help:      "Card acquisitions by kind (created or incremented).",
	}, []string{"kind"})
	bulkItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_bulk_items_total",
		Help:      "Cards processed by bulk add, by result.",
	}, []string{"result"})
	bulkDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "inventory_bulk_duration_seconds",
		Help:      "Duration of bulk add operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
	reg.MustRegister(acquisitions, bulkItems, bulkDuration)
	return &InventoryMetrics{
		acquisitions: acquisitions,
		bulkItems:    bulkItems,
		bulkDuration: bulkDuration,
	}
}

// IncAcquisition counts an acquisition. created is false for increments.
func (m *InventoryMetrics) IncAcquisition(created bool) {
	if m == nil || m.acquisitions == nil {
		return
	}
	kind := "incremented"
	if created {
		kind = "created"
	}
	m.acquisitions.WithLabelValues(kind).Inc()
}

// ObserveBulk records the outcome of one bulk add.
func (m *InventoryMetrics) ObserveBulk(succeeded, failed int, d time.Duration) {
	if m == nil || m.bulkItems == nil {
		return
	}
	m.bulkItems.WithLabelValues("succeeded").Add(float64(succeeded))
	m.bulkItems.WithLabelValues("failed").Add(float64(failed))
	m.bulkDuration.Observe(d.Seconds())
}
