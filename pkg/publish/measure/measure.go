package measure

import (
	"sync"
)

// DefaultMeasure keeps metrics in memory.
type DefaultMeasure struct {
	mu    sync.Mutex
	States map[string]Metric
}

// NewDefaultMeasure returns an empty DefaultMeasure.
func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		States: make(map[string]Metric),
	}
}

// AddMetric returns a new metric for name, replacing any previous one.
func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt := &DefaultMetric{}
	m.States[name] = mt

	return mt
}

// GetMetric returns the metric of name, nil if there is none.
func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.States[name]
}

// AllMetrics returns a copy of the metrics by name.
func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make(map[string]Metric, len(m.States))
	for name, mt := range m.States {
		all[name] = mt
	}

	return all
}

var _ Measure = (*DefaultMeasure)(nil)
