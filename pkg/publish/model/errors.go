package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies why a publish run failed.
type ErrorKind string

const (
	// KindValidation is a structural mismatch between the dataset and its declared type.
	KindValidation ErrorKind = "validation"
	// KindConfiguration is a missing template or setting.
	KindConfiguration ErrorKind = "configuration"
	// KindInput is an empty or malformed caller supplied value.
	KindInput ErrorKind = "input"
	// KindRemote is a non-success answer from the repository service.
	KindRemote ErrorKind = "remote"
	// KindIO is a local archive creation or removal failure.
	KindIO ErrorKind = "io"
)

// KindError is an error tagged with its ErrorKind.
type KindError struct {
	Kind ErrorKind
	err  error
}

// NewError returns a KindError with a formatted message.
func NewError(kind ErrorKind, format string, args ...interface{}) error {
	return &KindError{Kind: kind, err: errors.Errorf(format, args...)}
}

// WrapError tags err with kind, annotating it with message.
func WrapError(kind ErrorKind, err error, message string) error {
	if err == nil {
		return nil
	}

	return &KindError{Kind: kind, err: errors.Wrap(err, message)}
}

func (e *KindError) Error() string {
	return e.err.Error()
}

func (e *KindError) Unwrap() error {
	return e.err
}

// KindOf returns the kind of the first KindError in the chain of err, or an empty kind.
func KindOf(err error) ErrorKind {
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind
	}

	return ""
}

// StateError tags an error with the state of the run it happened in.
type StateError struct {
	State State
	Err   error
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.State, e.Err)
}

func (e *StateError) Unwrap() error {
	return e.Err
}

// StateOf returns the state err was tagged with, or an empty state.
func StateOf(err error) State {
	var stateErr *StateError
	if errors.As(err, &stateErr) {
		return stateErr.State
	}

	return ""
}
