package measure

import "time"

// Measure collects one metric per state of a publish run.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
}

// Metric records how a state went.
type Metric interface {
	SetDuration(elapsed time.Duration)
	Duration() time.Duration
	SetError(err error)
	Err() error
	// Visited reports whether the state has been entered.
	Visited() bool
}
