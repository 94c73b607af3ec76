package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// DeckMetrics records deck engine activity.
type DeckMetrics struct {
	mutations   *prometheus.CounterVec
	clamped     *prometheus.CounterVec
	validations *prometheus.CounterVec
}

// NewDeckMetrics registers the deck metrics on the provided registerer.
func NewDeckMetrics(reg prometheus.Registerer) *DeckMetrics {
	if reg == nil {
		return &DeckMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deck_mutations_total",
		Help:      "Deck mutations by operation.",
	}, []string{"op"})
	clamped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deck_clamped_total",
		Help:      "Deck mutations that achieved fewer copies than requested.",
	}, []string{"op"})
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deck_validations_total",
		Help:      "Deck validations by result.",
	}, []string{"result"})
	reg.MustRegister(mutations, clamped, validations)
	return &DeckMetrics{
		mutations:   mutations,
		clamped:     clamped,
		validations: validations,
	}
}

// IncMutation counts a deck mutation.
func (m *DeckMetrics) IncMutation(op string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncClamped counts a mutation whose requested quantity was reduced.
func (m *DeckMetrics) IncClamped(op string) {
	if m == nil || m.clamped == nil {
		return
	}
	m.clamped.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncValidation counts a validation run.
func (m *DeckMetrics) IncValidation(valid bool) {
	if m == nil || m.validations == nil {
		return
	}
	result := "invalid"
	if valid {
		result = "valid"
	}
	m.validations.WithLabelValues(result).Inc()
}
