package dataset_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/dvpublish/pkg/dataset"
	"github.com/askiada/dvpublish/pkg/publish/model"
)

func TestParseType(t *testing.T) {
	t.Parallel()

	for value, expected := range map[string]dataset.Type{
		"tabular":          dataset.Tabular,
		"classification":   dataset.Classification,
		"object-detection": dataset.ObjectDetection,
		"object detection": dataset.ObjectDetection,
		" Tabular ":        dataset.Tabular,
	} {
		got, err := dataset.ParseType(value)
		require.NoError(t, err, value)
		assert.Equal(t, expected, got, value)
	}

	_, err := dataset.ParseType("segmentation")
	require.ErrorIs(t, err, dataset.ErrUnknownType)
	assert.Equal(t, model.KindInput, model.KindOf(err))
}

func TestSplitSetMissingData(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	_, err := dataset.SplitSet(root)
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
	assert.Contains(t, err.Error(), "missing data folder")
}

func TestSplitSetDataIsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data")

	_, err := dataset.SplitSet(root)
	assert.Error(t, err)
}

func TestSplitSetNoSplit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/a.csv")

	got, err := dataset.SplitSet(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "data")}, got)
}

func TestSplitSetOrder(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/test/", "data/train/", "data/other/")

	got, err := dataset.SplitSet(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "data", "train"),
		filepath.Join(root, "data", "test"),
	}, got)
}

func TestValidateMissingData(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.Tabular})
	require.False(t, outcome.OK())
	assert.Equal(t, dataset.RuleDataFolder, outcome.Rule)
	assert.Contains(t, outcome.Reason, "missing data folder")

	err := outcome.Err()
	require.Error(t, err)
	assert.Equal(t, model.KindValidation, model.KindOf(err))
}

func TestValidateUnknownType(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/a.csv")

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: "audio"})
	require.False(t, outcome.OK())
	assert.Equal(t, dataset.RuleType, outcome.Rule)
}

func TestValidateTabular(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		entries []string
		pass    bool
	}{
		"one csv":           {entries: []string{"data/a.csv"}, pass: true},
		"csv among others":  {entries: []string{"data/readme.md", "data/b.csv"}, pass: true},
		"no csv":            {entries: []string{"data/a.tsv", "data/b.txt"}},
		"empty":             {entries: []string{"data/"}},
		"csv folder":        {entries: []string{"data/a.csv/"}},
		"hidden csv":        {entries: []string{"data/.a.csv"}},
		"upper case ext":    {entries: []string{"data/a.CSV"}},
		"all splits pass":   {entries: []string{"data/train/a.csv", "data/eval/b.csv", "data/test/c.csv"}, pass: true},
		"one split fails":   {entries: []string{"data/train/a.csv", "data/test/c.txt"}},
		"csv outside split": {entries: []string{"data/a.csv", "data/train/b.txt"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			createTree(t, root, tc.entries...)

			outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.Tabular})
			assert.Equal(t, tc.pass, outcome.OK(), outcome.String())

			if !tc.pass && outcome.Rule == dataset.RuleTabular {
				assert.Contains(t, outcome.Reason, outcome.Path)
			}
		})
	}
}

func TestValidateTabularReportsFailingSplit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/train/a.csv", "data/eval/b.txt", "data/test/c.txt")

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.Tabular})
	require.False(t, outcome.OK())
	assert.Equal(t, filepath.Join(root, "data", "eval"), outcome.Path)
	assert.Equal(t, dataset.RuleTabular, outcome.Rule)
}

func TestValidateClassification(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		entries []string
		pass    bool
	}{
		"non empty folders":  {entries: []string{"data/cat/img1.jpg", "data/dog/img1.jpg"}, pass: true},
		"nested folder":      {entries: []string{"data/cat/sub/"}, pass: true},
		"empty folder":       {entries: []string{"data/cat/img1.jpg", "data/dog/"}},
		"sibling file":       {entries: []string{"data/cat/img1.jpg", "data/labels.txt"}},
		"hidden sibling":     {entries: []string{"data/cat/img1.jpg", "data/.DS_Store"}},
		"hidden file inside": {entries: []string{"data/cat/.keep"}, pass: true},
		"splits":             {entries: []string{"data/train/cat/a.jpg", "data/test/cat/b.jpg"}, pass: true},
		"split with file":    {entries: []string{"data/train/cat/a.jpg", "data/test/b.jpg"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			createTree(t, root, tc.entries...)

			outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.Classification})
			assert.Equal(t, tc.pass, outcome.OK(), outcome.String())

			if !tc.pass {
				assert.Equal(t, dataset.RuleClassification, outcome.Rule)
			}
		})
	}
}

func TestValidateClassificationEmptyData(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/")

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.Classification})
	assert.True(t, outcome.OK())
}

func TestValidateObjectDetection(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		entries []string
		pass    bool
	}{
		"pairs": {
			entries: []string{"data/a.xml", "data/a.jpg", "data/b.xml", "data/b.png"},
			pass:    true,
		},
		"all image formats": {
			entries: []string{"data/a.xml", "data/a.jpg", "data/b.xml", "data/b.jpeg", "data/c.xml", "data/c.png", "data/d.xml", "data/d.bmp"},
			pass:    true,
		},
		"prefix match": {
			entries: []string{"data/img.xml", "data/img_001.jpg"},
			pass:    true,
		},
		"other files ignored": {
			entries: []string{"data/a.xml", "data/a.jpg", "data/notes.txt"},
			pass:    true,
		},
		"empty": {
			entries: []string{"data/"},
			pass:    true,
		},
		"more images": {
			entries: []string{"data/a.xml", "data/a.jpg", "data/b.jpg"},
		},
		"more annotations": {
			entries: []string{"data/a.xml", "data/b.xml", "data/a.jpg"},
		},
		"unsupported image": {
			entries: []string{"data/a.xml", "data/a.gif"},
		},
		"mismatch": {
			entries: []string{"data/a.xml", "data/b.jpg"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			createTree(t, root, tc.entries...)

			outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.ObjectDetection})
			assert.Equal(t, tc.pass, outcome.OK(), outcome.String())
		})
	}
}

func TestValidateObjectDetectionReportsAllUnmatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root,
		"data/a.xml", "data/b.xml", "data/c.xml",
		"data/a.jpg", "data/x.jpg", "data/y.png",
	)

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.ObjectDetection})
	require.False(t, outcome.OK())
	assert.Equal(t, dataset.RuleObjectDetection, outcome.Rule)

	dataPath := filepath.Join(root, "data")
	assert.Contains(t, outcome.Reason, filepath.Join(dataPath, "b.xml")+","+filepath.Join(dataPath, "c.xml"))
	assert.NotContains(t, outcome.Reason, filepath.Join(dataPath, "a.xml"))
}

func TestValidateObjectDetectionMissingImage(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/a.xml", "data/a.jpg", "data/b.xml", "data/b.jpg")

	outcome := dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.ObjectDetection})
	require.True(t, outcome.OK(), outcome.String())

	// Swap b.jpg for an unrelated image so the counts still match.
	root = t.TempDir()
	createTree(t, root, "data/a.xml", "data/a.jpg", "data/b.xml", "data/z.jpg")

	outcome = dataset.Validate(dataset.Descriptor{Root: root, Type: dataset.ObjectDetection})
	require.False(t, outcome.OK())
	assert.Contains(t, outcome.Reason, filepath.Join(root, "data", "b.xml"))
}

func TestValidatorValidate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	createTree(t, root, "data/a.csv")

	outcome := dataset.Validator{}.Validate(dataset.Descriptor{Root: root, Type: dataset.Tabular})
	assert.True(t, outcome.OK())
	assert.NoError(t, outcome.Err())
	assert.Equal(t, "pass", outcome.String())
}
