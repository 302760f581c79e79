package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/dvpublish/pkg/publish/drawer"
	"github.com/askiada/dvpublish/pkg/publish/measure"
	"github.com/askiada/dvpublish/pkg/publish/model"
)

func TestDOTDrawerRender(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer("unused.dot")
	require.NoError(t, d.AddState("b"))
	require.NoError(t, d.AddState("a"))
	require.NoError(t, d.AddLink("a", "b", ""))
	require.NoError(t, d.AddLink("a", "b", "again"))
	require.Error(t, d.AddState("a"))
	require.Error(t, d.AddLink("a", "missing", ""))

	buf := &bytes.Buffer{}
	require.NoError(t, d.Render(buf))

	out := buf.String()
	assert.Contains(t, out, "strict digraph {")
	assert.Contains(t, out, `"a" -> "b" [ label="again", ];`)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(`"a" [`)), bytes.Index(buf.Bytes(), []byte(`"b" [`)))

	again := &bytes.Buffer{}
	require.NoError(t, d.Render(again))
	assert.Equal(t, out, again.String())
}

func TestDOTDrawerAddMeasure(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer("unused.dot")
	for _, name := range []string{"fast", "slow", "failed", "skipped"} {
		require.NoError(t, d.AddState(name))
	}

	msr := measure.NewDefaultMeasure()
	msr.AddMetric("fast").SetDuration(time.Millisecond)
	msr.AddMetric("slow").SetDuration(time.Second)
	failed := msr.AddMetric("failed")
	failed.SetDuration(10 * time.Millisecond)
	failed.SetError(assert.AnError)
	msr.AddMetric("skipped")
	msr.AddMetric("unknown").SetDuration(time.Second)

	require.NoError(t, d.AddMeasure(msr))

	buf := &bytes.Buffer{}
	require.NoError(t, d.Render(buf))

	out := buf.String()
	assert.Contains(t, out, `fillcolor="#0000f0"`)
	assert.Contains(t, out, `fillcolor="#f00000"`)
	assert.Contains(t, out, `penwidth="3"`)
	assert.Contains(t, out, `"skipped" [ color="grey", shape="box", style="dashed", ];`)
	assert.NotContains(t, out, "unknown")
}

func TestPublishDrawer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.dot")
	msr := measure.NewDefaultMeasure()
	msrOpt := measure.PublishMeasure(msr)
	opt := drawer.PublishDrawer(drawer.NewDOTDrawer(path), msr)

	require.NoError(t, msrOpt.New())
	require.NoError(t, opt.New())

	previous := model.StartState
	for _, state := range []model.State{model.Validating, model.Archiving, model.CreatingRecord, model.CleaningUp} {
		info := model.NewStateInfo(state)

		var stateErr error
		if state == model.CreatingRecord {
			stateErr = assert.AnError
		}

		for _, o := range []model.PublishOption{msrOpt, opt} {
			require.NoError(t, o.BeforeState(previous, info))
			require.NoError(t, o.AfterState(info, time.Millisecond, stateErr))
		}

		previous = info
	}

	result := &model.Result{Final: model.Failed, FailedState: model.CreatingRecord, Elapsed: time.Second}
	require.NoError(t, msrOpt.Finish(result))
	require.NoError(t, opt.Finish(result))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(content)
	assert.Contains(t, out, `"start" -> "Validating"`)
	assert.Contains(t, out, `"CreatingRecord" -> "CleaningUp"`)
	assert.Contains(t, out, `"CleaningUp" -> "end" [ label="Failed", ];`)
	assert.Contains(t, out, `"Uploading" [ color="grey", shape="box", style="dashed", ];`)
	assert.Contains(t, out, "total: 1s")
}

func TestPublishDrawerUnwritable(t *testing.T) {
	t.Parallel()

	opt := drawer.PublishDrawer(drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "missing", "run.dot")), nil)
	require.NoError(t, opt.New())
	assert.Error(t, opt.Finish(&model.Result{Final: model.Success}))
}
