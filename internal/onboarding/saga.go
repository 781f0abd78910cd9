package onboarding

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Progress is emitted before each step executes.
type Progress struct {
	StepName   string `json:"step_name"`
	Percentage int    `json:"percentage"`
	Message    string `json:"message"`
}

type ProgressFunc func(Progress)

// Compensation semantically undoes a previously successful step. A zero
// Compensation (nil Undo) registers nothing: steps that resolved by fetching
// an existing resource must not delete it on rollback, since this run did
// not create it.
type Compensation struct {
	Name string
	Undo func(ctx context.Context) error
}

// Step is one ordered operation of the saga. Execute performs the write and
// returns the compensation to register for it, if any.
type Step struct {
	Name    string
	Message string
	Execute func(ctx context.Context) (Compensation, error)
}

// runner executes steps in order against independently-writable resources,
// unwinding via the compensation stack on failure. A failed step is never
// retried; the caller retries with a fresh run.
type runner struct {
	logger *logrus.Logger
}

func (r runner) run(ctx context.Context, steps []Step, onProgress ProgressFunc) error {
	var stack []Compensation

	for i, step := range steps {
		if onProgress != nil {
			onProgress(Progress{
				StepName:   step.Name,
				Percentage: i * 100 / len(steps),
				Message:    step.Message,
			})
		}

		comp, err := step.Execute(ctx)
		if err != nil {
			r.logger.WithError(err).WithField("step", step.Name).Error("onboarding step failed, rolling back")
			r.rollback(ctx, stack)
			return fmt.Errorf("%s: %w", step.Name, err)
		}
		if comp.Undo != nil {
			stack = append(stack, comp)
		}
	}

	return nil
}

// rollback runs compensations newest-first. Compensation is best effort:
// failures are logged and swallowed, never surfaced as the overall result.
// Whatever a failed compensation leaves behind is the integrity verifier's
// problem to detect later.
func (r runner) rollback(ctx context.Context, stack []Compensation) {
	for i := len(stack) - 1; i >= 0; i-- {
		comp := stack[i]
		if err := comp.Undo(ctx); err != nil {
			r.logger.WithError(err).WithField("compensation", comp.Name).Warn("compensation failed, orphaned state possible")
			continue
		}
		r.logger.WithField("compensation", comp.Name).Debug("compensation applied")
	}
}
