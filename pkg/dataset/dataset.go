package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

// Type is the declared layout of a dataset.
type Type string

const (
	Tabular         Type = "tabular"
	Classification  Type = "classification"
	ObjectDetection Type = "object-detection"
)

// Types lists the supported dataset types.
var Types = []Type{Tabular, Classification, ObjectDetection}

// ErrUnknownType is returned by ParseType for unsupported values.
var ErrUnknownType = errors.New("unknown dataset type")

// ParseType parses a dataset type. "object detection" is accepted as an alias of ObjectDetection.
func ParseType(value string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(Tabular):
		return Tabular, nil
	case string(Classification):
		return Classification, nil
	case string(ObjectDetection), "object detection", "object_detection":
		return ObjectDetection, nil
	}

	return "", model.WrapError(model.KindInput, ErrUnknownType, value)
}

// IsValid reports whether t is one of Types.
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}

	return false
}

func (t Type) String() string {
	return string(t)
}

// Descriptor identifies a dataset on disk.
type Descriptor struct {
	Root string
	Type Type
}

// DataDir returns the folder holding the dataset files.
func (d Descriptor) DataDir() string {
	return filepath.Join(d.Root, dataFolder)
}

const dataFolder = "data"

// Splits are the optional sub folders of the data folder, in validation order.
var Splits = []string{"train", "eval", "test"}

// SplitSet returns the folders to validate under root/data: the existing splits, or the data
// folder itself when there is none. It fails when root/data does not exist.
func SplitSet(root string) ([]string, error) {
	dataPath := filepath.Join(root, dataFolder)

	info, err := os.Stat(dataPath)
	if err != nil || !info.IsDir() {
		return nil, model.NewError(model.KindValidation, "missing data folder: %s must contain a folder named %q", root, dataFolder)
	}

	paths := make([]string, 0, len(Splits))

	for _, split := range Splits {
		splitPath := filepath.Join(dataPath, split)
		if _, err := os.Stat(splitPath); err == nil {
			paths = append(paths, splitPath)
		}
	}

	if len(paths) == 0 {
		paths = append(paths, dataPath)
	}

	return paths, nil
}
