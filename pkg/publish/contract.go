package publish

import (
	"context"

	"github.com/askiada/dvpublish/pkg/archive"
	"github.com/askiada/dvpublish/pkg/dataset"
	"github.com/askiada/dvpublish/pkg/record"
	"github.com/askiada/dvpublish/pkg/repository"
)

// Validator checks the structure of a dataset.
type Validator interface {
	Validate(desc dataset.Descriptor) dataset.Outcome
}

// Archiver packages a dataset folder.
type Archiver interface {
	Archive(ctx context.Context, source string) (*archive.Artifact, error)
}

// RecordBuilder renders the metadata record of a dataset.
type RecordBuilder interface {
	Build(fields record.Fields) ([]byte, error)
}

// RepositoryClient creates records and uploads files on the repository service.
type RepositoryClient interface {
	// CreateRecord creates a record in the collection parent and returns its persistent identifier.
	CreateRecord(ctx context.Context, parent string, record []byte) (string, error)
	// UploadFile attaches the file at path to the record persistentID.
	UploadFile(ctx context.Context, persistentID, path string) error
}

var (
	_ Validator        = dataset.Validator{}
	_ Archiver         = (*archive.Zipper)(nil)
	_ RecordBuilder    = (*record.Builder)(nil)
	_ RepositoryClient = (*repository.Client)(nil)
)
