// Package record renders the metadata record sent to the repository when a dataset is created.
//
// Records are rendered from a template holding the placeholders %NAME%, %DESCRIPTION%, %AUTHOR%,
// %AFFILIATION% and %EMAIL%. Values are substituted verbatim: they are not escaped, so a value
// holding a double quote or a backslash produces an invalid record. Templates may use JSONC
// comments and trailing commas, both are stripped from the rendered record.
package record

import (
	_ "embed"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

// Placeholders of the template.
const (
	NamePlaceholder        = "%NAME%"
	DescriptionPlaceholder = "%DESCRIPTION%"
	AuthorPlaceholder      = "%AUTHOR%"
	AffiliationPlaceholder = "%AFFILIATION%"
	EmailPlaceholder       = "%EMAIL%"
)

//go:embed create-dataset.json
var defaultTemplate []byte

// DefaultTemplate returns a Dataverse citation template.
func DefaultTemplate() []byte {
	out := make([]byte, len(defaultTemplate))
	copy(out, defaultTemplate)

	return out
}

// Fields are the values of a record.
type Fields struct {
	Name        string
	Description string
	Author      string
	Affiliation string
	Email       string
}

// Validate checks that every field is set and that Email looks like an address.
func (f Fields) Validate() error {
	for _, field := range []struct{ name, value string }{
		{"name", f.Name},
		{"description", f.Description},
		{"author", f.Author},
		{"affiliation", f.Affiliation},
	} {
		if field.value == "" {
			return model.NewError(model.KindInput, "%s cannot be empty", field.name)
		}
	}

	if !strings.Contains(f.Email, "@") || !strings.Contains(f.Email, ".") {
		return model.NewError(model.KindInput, "email %q must be a valid email address", f.Email)
	}

	return nil
}

// Render strips the comments and trailing commas of template, then substitutes fields verbatim.
// It does not validate fields.
func Render(template []byte, fields Fields) []byte {
	replacer := strings.NewReplacer(
		NamePlaceholder, fields.Name,
		DescriptionPlaceholder, fields.Description,
		AuthorPlaceholder, fields.Author,
		AffiliationPlaceholder, fields.Affiliation,
		EmailPlaceholder, fields.Email,
	)

	return []byte(replacer.Replace(string(jsonc.ToJSON(template))))
}

// Builder renders records from a template file.
type Builder struct {
	templatePath string
}

// NewBuilder returns a Builder reading its template from templatePath.
func NewBuilder(templatePath string) *Builder {
	return &Builder{templatePath: templatePath}
}

// TemplatePath returns the location of the template.
func (b *Builder) TemplatePath() string {
	return b.templatePath
}

// Build validates fields and renders them into the template.
func (b *Builder) Build(fields Fields) ([]byte, error) {
	err := fields.Validate()
	if err != nil {
		return nil, err
	}

	template, err := os.ReadFile(b.templatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewError(model.KindConfiguration, "missing template file: %s", b.templatePath)
		}

		return nil, model.WrapError(model.KindConfiguration, err, "unable to read template file "+b.templatePath)
	}

	return Render(template, fields), nil
}

// WriteDefaultTemplate writes DefaultTemplate to path. It refuses to overwrite an existing file.
func WriteDefaultTemplate(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return model.WrapError(model.KindIO, err, "unable to create template file "+path)
	}

	_, err = file.Write(defaultTemplate)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}

	if err != nil {
		return model.WrapError(model.KindIO, err, "unable to write template file "+path)
	}

	return nil
}
