// Package publish drives the publication of a dataset to a data repository.
//
// A run goes through the states Validating, Archiving, CreatingRecord, Uploading and CleaningUp in
// that order. Each state blocks until it is done and the run stops on the first error, which is
// returned tagged with the state it happened in. Nothing is retried.
//
// The archive produced by Archiving is removed by CleaningUp on every exit path, whether the run
// succeeded or not. A record created before a failed upload is left on the repository without
// files: the run does not try to delete it.
//
// Publish options observe the run through the hooks of model.PublishOption. The measure, drawer
// and logging sub packages provide options recording the duration of each state, drawing the
// state graph and logging the transitions.
package publish
