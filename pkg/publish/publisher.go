package publish

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/dvpublish/pkg/archive"
	"github.com/askiada/dvpublish/pkg/dataset"
	"github.com/askiada/dvpublish/pkg/publish/model"
	"github.com/askiada/dvpublish/pkg/record"
)

var (
	ErrValidatorMustBeSet = errors.New("validator must be set")
	ErrArchiverMustBeSet  = errors.New("archiver must be set")
	ErrBuilderMustBeSet   = errors.New("record builder must be set")
	ErrClientMustBeSet    = errors.New("repository client must be set")
)

// Dependencies are the collaborators of a Publisher.
type Dependencies struct {
	Validator Validator
	Archiver  Archiver
	Builder   RecordBuilder
	Client    RepositoryClient
	// Parent is the collection new records are created in.
	Parent string
}

// Request describes a dataset to publish.
type Request struct {
	Dataset  dataset.Descriptor
	Metadata record.Fields
}

// Publisher runs the publish workflow.
type Publisher struct {
	deps Dependencies
	opts []model.PublishOption
}

// New creates a new publisher.
func New(deps Dependencies, opts ...model.PublishOption) (*Publisher, error) {
	switch {
	case deps.Validator == nil:
		return nil, ErrValidatorMustBeSet
	case deps.Archiver == nil:
		return nil, ErrArchiverMustBeSet
	case deps.Builder == nil:
		return nil, ErrBuilderMustBeSet
	case deps.Client == nil:
		return nil, ErrClientMustBeSet
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply publish option")
		}
	}

	return &Publisher{deps: deps, opts: opts}, nil
}

// Run publishes the dataset of req and returns the persistent identifier of the new record.
// Errors are *model.StateError values tagged with the state that failed.
//
// When the run succeeds but a publish option fails to finish, the identifier is returned along
// with the option error.
func (p *Publisher) Run(ctx context.Context, req Request) (string, error) {
	r := &run{
		Publisher: p,
		req:       req,
		previous:  model.StartState,
		result:    &model.Result{RunID: uuid.NewString()},
	}

	startTime := time.Now()
	err := r.execute(ctx)

	r.result.Elapsed = time.Since(startTime)
	r.result.Err = err

	if r.artifact != nil {
		r.result.Artifact = r.artifact.Path
		r.result.Digest = r.artifact.Digest
	}

	r.result.PersistentID = r.persistentID

	if err != nil {
		r.result.Final = model.Failed
		r.result.FailedState = model.StateOf(err)
	} else {
		r.result.Final = model.Success
	}

	finishErr := p.finishRun(r.result)
	if err != nil {
		return "", err
	}

	return r.persistentID, finishErr
}

func (p *Publisher) finishRun(result *model.Result) error {
	for _, opt := range p.opts {
		err := opt.Finish(result)
		if err != nil {
			return errors.Wrap(err, "unable to finish publish option")
		}
	}

	return nil
}

// run holds the state of one execution of the workflow.
type run struct {
	*Publisher

	req          Request
	previous     *model.StateInfo
	result       *model.Result
	artifact     *archive.Artifact
	persistentID string
}

func (r *run) execute(ctx context.Context) (err error) {
	err = r.guard()
	if err != nil {
		return err
	}

	err = r.step(ctx, model.Validating, r.validateDataset)
	if err != nil {
		return err
	}

	defer func() {
		if r.artifact == nil {
			return
		}

		cleanupErr := r.step(ctx, model.CleaningUp, r.cleanup)
		if err == nil {
			err = cleanupErr
		}
	}()

	err = r.step(ctx, model.Archiving, r.archiveDataset)
	if err != nil {
		return err
	}

	err = r.step(ctx, model.CreatingRecord, r.createRecord)
	if err != nil {
		return err
	}

	return r.step(ctx, model.Uploading, r.upload)
}

// guard rejects requests a state would reject, before anything touches the file system or the network.
func (r *run) guard() error {
	desc := r.req.Dataset

	if desc.Root == "" {
		return &model.StateError{State: model.Validating, Err: model.NewError(model.KindInput, "dataset path cannot be empty")}
	}

	if !desc.Type.IsValid() {
		return &model.StateError{State: model.Validating, Err: model.WrapError(model.KindInput, dataset.ErrUnknownType, desc.Type.String())}
	}

	err := r.req.Metadata.Validate()
	if err != nil {
		return &model.StateError{State: model.CreatingRecord, Err: err}
	}

	if r.deps.Parent == "" {
		return &model.StateError{State: model.CreatingRecord, Err: model.NewError(model.KindConfiguration, "parent collection must be set")}
	}

	return nil
}

func (r *run) step(ctx context.Context, state model.State, stepFn func(ctx context.Context) error) error {
	info := model.NewStateInfo(state)

	var beforeErr error

	for _, opt := range r.opts {
		hookErr := opt.BeforeState(r.previous, info)
		if hookErr != nil {
			beforeErr = &model.StateError{State: state, Err: errors.Wrap(hookErr, "unable to run before state hook")}

			break
		}
	}

	// Cleaning up must happen even when the run was cancelled or a hook failed.
	if beforeErr != nil && state != model.CleaningUp {
		return beforeErr
	}

	r.previous = info

	var err error

	startTime := time.Now()

	if state != model.CleaningUp {
		err = ctx.Err()
	}

	if err == nil {
		err = stepFn(ctx)
	}

	elapsed := time.Since(startTime)

	if err != nil {
		err = &model.StateError{State: state, Err: err}
	} else {
		err = beforeErr
	}

	for _, opt := range r.opts {
		hookErr := opt.AfterState(info, elapsed, err)
		if hookErr != nil && err == nil {
			err = &model.StateError{State: state, Err: errors.Wrap(hookErr, "unable to run after state hook")}
		}
	}

	return err
}

func (r *run) validateDataset(_ context.Context) error {
	return r.deps.Validator.Validate(r.req.Dataset).Err()
}

func (r *run) archiveDataset(ctx context.Context) error {
	artifact, err := r.deps.Archiver.Archive(ctx, r.req.Dataset.Root)
	if err != nil {
		return err
	}

	r.artifact = artifact

	return nil
}

func (r *run) createRecord(ctx context.Context) error {
	rendered, err := r.deps.Builder.Build(r.req.Metadata)
	if err != nil {
		return err
	}

	persistentID, err := r.deps.Client.CreateRecord(ctx, r.deps.Parent, rendered)
	if err != nil {
		return err
	}

	if persistentID == "" {
		return model.NewError(model.KindRemote, "repository returned an empty persistent id")
	}

	r.persistentID = persistentID

	return nil
}

func (r *run) upload(ctx context.Context) error {
	if r.persistentID == "" {
		return model.NewError(model.KindInput, "persistent id cannot be empty")
	}

	if !strings.HasSuffix(r.artifact.Path, archive.Extension) {
		return model.NewError(model.KindInput, "archive %s must have %s extension", r.artifact.Path, archive.Extension)
	}

	if _, err := os.Stat(r.artifact.Path); err != nil {
		return model.WrapError(model.KindIO, err, "missing archive at path "+r.artifact.Path)
	}

	return r.deps.Client.UploadFile(ctx, r.persistentID, r.artifact.Path)
}

func (r *run) cleanup(_ context.Context) error {
	return r.artifact.Remove()
}
