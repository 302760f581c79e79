package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/dvpublish/pkg/publish/measure"
	"github.com/askiada/dvpublish/pkg/publish/model"
)

type publishDrawer struct {
	Drawer
	m    measure.Measure
	last *model.StateInfo
}

func (pd *publishDrawer) New() error {
	err := pd.AddState(model.StartState.Name())
	if err != nil {
		return errors.Wrap(err, "unable to add start state to drawer")
	}

	for _, state := range model.States {
		err = pd.AddState(state.String())
		if err != nil {
			return errors.Wrapf(err, "unable to add %s state to drawer", state)
		}
	}

	err = pd.AddState(model.EndState.Name())
	if err != nil {
		return errors.Wrap(err, "unable to add end state to drawer")
	}

	pd.last = model.StartState

	return nil
}

func (pd *publishDrawer) BeforeState(previous, state *model.StateInfo) error {
	pd.last = state

	return pd.AddLink(previous.Name(), state.Name(), "")
}

func (pd *publishDrawer) AfterState(_ *model.StateInfo, _ time.Duration, _ error) error {
	return nil
}

func (pd *publishDrawer) Finish(result *model.Result) error {
	err := pd.AddLink(pd.last.Name(), model.EndState.Name(), result.Final.String())
	if err != nil {
		return errors.Wrap(err, "unable to add end transition")
	}

	if pd.m != nil {
		err = pd.SetTotalTime(model.EndState.Name(), result.Elapsed)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw publish run")
	}

	return nil
}

// PublishDrawer returns a publish option drawing the states visited by the run with drawer once it finishes.
// When measure is not nil, states are decorated with its metrics.
func PublishDrawer(drawer Drawer, measure measure.Measure) model.PublishOption {
	return &publishDrawer{Drawer: drawer, m: measure}
}
