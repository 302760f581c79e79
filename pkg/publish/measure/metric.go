package measure

import (
	"sync"
	"time"
)

// DefaultMetric is a Metric safe for concurrent use.
type DefaultMetric struct {
	mu      sync.Mutex
	elapsed time.Duration
	err     error
	visited bool
}

func (mt *DefaultMetric) SetDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.visited = true
	mt.elapsed = elapsed
}

func (mt *DefaultMetric) Duration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.elapsed)
}

func (mt *DefaultMetric) SetError(err error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.visited = true
	mt.err = err
}

func (mt *DefaultMetric) Err() error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.err
}

func (mt *DefaultMetric) Visited() bool {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.visited
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Minute:
		d = d.Round(time.Second)
	case d > time.Second:
		d = d.Round(time.Millisecond)
	case d > time.Millisecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
