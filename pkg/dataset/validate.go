package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

// Rule names reported in an Outcome.
const (
	RuleDataFolder      = "data folder"
	RuleType            = "type"
	RuleReadable        = "readable"
	RuleTabular         = "tabular"
	RuleClassification  = "classification"
	RuleObjectDetection = "object-detection"
)

// ImageExtensions are the image formats accepted next to Pascal VOC annotations.
var ImageExtensions = []string{"jpg", "jpeg", "png", "bmp"}

const annotationExtension = ".xml"

// Outcome is the result of a validation. The zero value is a pass.
type Outcome struct {
	// Path is the folder that broke the rule.
	Path string
	// Rule is the name of the broken rule.
	Rule   string
	Reason string
}

// OK reports whether the validation passed.
func (o Outcome) OK() bool {
	return o.Reason == ""
}

// Err returns nil for a pass and a validation error carrying the reason otherwise.
func (o Outcome) Err() error {
	if o.OK() {
		return nil
	}

	return model.NewError(model.KindValidation, "%s", o.Reason)
}

func (o Outcome) String() string {
	if o.OK() {
		return "pass"
	}

	return fmt.Sprintf("fail (%s): %s", o.Rule, o.Reason)
}

func fail(path, rule, format string, args ...interface{}) Outcome {
	return Outcome{Path: path, Rule: rule, Reason: fmt.Sprintf(format, args...)}
}

type rule func(path string) Outcome

var rules = map[Type]rule{
	Tabular:         validateTabular,
	Classification:  validateClassification,
	ObjectDetection: validateObjectDetection,
}

// Validator checks datasets against the layout of their declared type.
type Validator struct{}

// Validate runs Validate on desc.
func (Validator) Validate(desc Descriptor) Outcome {
	return Validate(desc)
}

// Validate checks the structure of desc. It never modifies the file system and stops at the
// first folder of the split set that breaks the rule of desc.Type.
func Validate(desc Descriptor) Outcome {
	check, ok := rules[desc.Type]
	if !ok {
		return fail(desc.Root, RuleType, "unknown dataset type %q", desc.Type)
	}

	paths, err := SplitSet(desc.Root)
	if err != nil {
		return fail(desc.DataDir(), RuleDataFolder, "%s", err)
	}

	for _, path := range paths {
		outcome := check(path)
		if !outcome.OK() {
			return outcome
		}
	}

	return Outcome{}
}

// validateTabular requires at least one csv file.
func validateTabular(path string) Outcome {
	files, err := candidates(path)
	if err != nil {
		return fail(path, RuleReadable, "unable to read %s: %s", path, err)
	}

	for _, name := range files {
		if strings.HasSuffix(name, ".csv") {
			return Outcome{}
		}
	}

	return fail(path, RuleTabular, "tabular dataset: %s must contain at least 1 csv file", path)
}

// validateClassification requires every entry, hidden ones included, to be a non-empty folder.
func validateClassification(path string) Outcome {
	entries, err := os.ReadDir(path)
	if err != nil {
		return fail(path, RuleReadable, "unable to read %s: %s", path, err)
	}

	folders := 0

	for _, entry := range entries {
		classPath := filepath.Join(path, entry.Name())
		if !isDir(classPath) {
			continue
		}

		content, err := os.ReadDir(classPath)
		if err == nil && len(content) > 0 {
			folders++
		}
	}

	if folders != len(entries) {
		return fail(path, RuleClassification, "classification dataset: %s must contain only non-empty folders", path)
	}

	return Outcome{}
}

// validateObjectDetection pairs every Pascal VOC annotation with an image sharing its name stem.
func validateObjectDetection(path string) Outcome {
	files, err := candidates(path)
	if err != nil {
		return fail(path, RuleReadable, "unable to read %s: %s", path, err)
	}

	annotations := []string{}
	images := []string{}

	for _, name := range files {
		switch {
		case strings.HasSuffix(name, annotationExtension):
			annotations = append(annotations, name)
		case isImage(name):
			images = append(images, name)
		}
	}

	if len(annotations) != len(images) {
		return fail(path, RuleObjectDetection,
			"object-detection dataset: %s contains %d image files but %d pascal voc xml files", path, len(images), len(annotations))
	}

	unmatched := []string{}

	for _, annotation := range annotations {
		stem := annotation[:len(annotation)-len(annotationExtension)]
		if !hasPrefixed(images, stem) {
			unmatched = append(unmatched, filepath.Join(path, annotation))
		}
	}

	if len(unmatched) > 0 {
		sort.Strings(unmatched)

		return fail(path, RuleObjectDetection,
			"object-detection dataset: the following pascal voc xml files have no matching image: %s", strings.Join(unmatched, ","))
	}

	return Outcome{}
}

// candidates lists the names of the non-folder entries of path a shell glob would match,
// dot files excluded.
func candidates(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || isDir(filepath.Join(path, name)) {
			continue
		}

		names = append(names, name)
	}

	return names, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isImage(name string) bool {
	for _, ext := range ImageExtensions {
		if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}

	return false
}

func hasPrefixed(names []string, prefix string) bool {
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
