// Package logging reports the progress of a publish run on a structured logger.
package logging

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/askiada/dvpublish/pkg/publish/model"
)

type publishLogger struct {
	logger *log.Logger
}

func (pl *publishLogger) New() error {
	return nil
}

func (pl *publishLogger) BeforeState(previous, state *model.StateInfo) error {
	pl.logger.Debug("entering state", "state", state.Name(), "from", previous.Name())

	return nil
}

func (pl *publishLogger) AfterState(state *model.StateInfo, elapsed time.Duration, stateErr error) error {
	if stateErr != nil {
		pl.logger.Error("state failed", "state", state.Name(), "elapsed", elapsed, "error", stateErr)

		return nil
	}

	pl.logger.Info("state done", "state", state.Name(), "elapsed", elapsed)

	return nil
}

func (pl *publishLogger) Finish(result *model.Result) error {
	if result.Final == model.Failed {
		pl.logger.Error("publish failed",
			"run_id", result.RunID,
			"state", result.FailedState,
			"persistent_id", result.PersistentID,
			"kind", model.KindOf(result.Err),
			"elapsed", result.Elapsed,
		)

		return nil
	}

	pl.logger.Info("publish succeeded",
		"run_id", result.RunID,
		"persistent_id", result.PersistentID,
		"artifact", result.Artifact,
		"digest", result.Digest,
		"elapsed", result.Elapsed,
	)

	return nil
}

// PublishLogger returns a publish option logging every state of the run on logger.
func PublishLogger(logger *log.Logger) model.PublishOption {
	return &publishLogger{logger: logger}
}
