package model

import "time"

// PublishOption defines the interface for publish options.
type PublishOption interface {
	// New initialises the publish option.
	New() error
	// BeforeState runs before the state is entered.
	BeforeState(previous, state *StateInfo) error
	// AfterState runs once the state has completed, stateErr is the error it failed with, if any.
	AfterState(state *StateInfo, elapsed time.Duration, stateErr error) error
	// Finish runs after the run is over, successful or not.
	Finish(result *Result) error
}

// Result is the outcome of a publish run.
type Result struct {
	RunID string
	// PersistentID is set once the record exists, even when the upload then fails.
	PersistentID string
	// Final is Success or Failed.
	Final State
	// FailedState is the state the run failed in, empty on success.
	FailedState State
	Err         error
	Elapsed     time.Duration
	// Artifact and Digest describe the archive built by the run, empty when none was built.
	Artifact string
	Digest   string
}
