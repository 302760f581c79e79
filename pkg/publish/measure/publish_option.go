package measure

import (
	"time"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

type publishMeasure struct {
	Measure
}

func (pm *publishMeasure) New() error {
	for _, state := range model.States {
		pm.AddMetric(state.String())
	}

	return nil
}

func (pm *publishMeasure) BeforeState(_, _ *model.StateInfo) error {
	return nil
}

func (pm *publishMeasure) AfterState(state *model.StateInfo, elapsed time.Duration, stateErr error) error {
	mt := pm.metric(state.Name())
	mt.SetDuration(elapsed)
	mt.SetError(stateErr)

	return nil
}

func (pm *publishMeasure) Finish(_ *model.Result) error {
	return nil
}

func (pm *publishMeasure) metric(name string) Metric {
	mt := pm.GetMetric(name)
	if mt == nil {
		mt = pm.AddMetric(name)
	}

	return mt
}

// PublishMeasure returns a publish option recording the duration and the error of every state in measure.
func PublishMeasure(measure Measure) model.PublishOption {
	return &publishMeasure{measure}
}
