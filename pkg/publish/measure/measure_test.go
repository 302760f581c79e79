package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/dvpublish/pkg/publish/measure"
	"github.com/askiada/dvpublish/pkg/publish/model"
)

func TestDefaultMetric(t *testing.T) {
	t.Parallel()

	mt := &measure.DefaultMetric{}
	assert.False(t, mt.Visited())

	mt.SetDuration(1500 * time.Microsecond)
	assert.True(t, mt.Visited())
	assert.Equal(t, 1500*time.Microsecond, mt.Duration())
	assert.NoError(t, mt.Err())

	mt.SetError(assert.AnError)
	assert.ErrorIs(t, mt.Err(), assert.AnError)
}

func TestDefaultMetricRound(t *testing.T) {
	t.Parallel()

	mt := &measure.DefaultMetric{}
	mt.SetDuration(2*time.Second + 1234567*time.Nanosecond)
	assert.Equal(t, 2*time.Second+time.Millisecond, mt.Duration())
}

func TestDefaultMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	assert.Nil(t, msr.GetMetric("Validating"))

	mt := msr.AddMetric("Validating")
	assert.Same(t, mt, msr.GetMetric("Validating"))
	assert.Len(t, msr.AllMetrics(), 1)
}

func TestPublishMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PublishMeasure(msr)

	require.NoError(t, opt.New())
	assert.Len(t, msr.AllMetrics(), len(model.States))

	validating := model.NewStateInfo(model.Validating)
	archiving := model.NewStateInfo(model.Archiving)

	require.NoError(t, opt.BeforeState(model.StartState, validating))
	require.NoError(t, opt.AfterState(validating, time.Millisecond, nil))
	require.NoError(t, opt.BeforeState(validating, archiving))
	require.NoError(t, opt.AfterState(archiving, 2*time.Millisecond, assert.AnError))
	require.NoError(t, opt.Finish(&model.Result{Final: model.Failed, Elapsed: 3 * time.Millisecond}))

	assert.True(t, msr.GetMetric("Validating").Visited())
	assert.Equal(t, time.Millisecond, msr.GetMetric("Validating").Duration())
	assert.NoError(t, msr.GetMetric("Validating").Err())
	assert.ErrorIs(t, msr.GetMetric("Archiving").Err(), assert.AnError)
	assert.False(t, msr.GetMetric("Uploading").Visited())
}
