package onboarding

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func okStep(name string, log *[]string) Step {
	return Step{
		Name:    name,
		Message: name,
		Execute: func(context.Context) (Compensation, error) {
			*log = append(*log, "exec:"+name)
			return Compensation{
				Name: "undo_" + name,
				Undo: func(context.Context) error {
					*log = append(*log, "undo:"+name)
					return nil
				},
			}, nil
		},
	}
}

func TestRunnerExecutesInOrder(t *testing.T) {
	t.Parallel()

	var log []string
	steps := []Step{okStep("a", &log), okStep("b", &log), okStep("c", &log)}

	err := (runner{logger: testLogger()}).run(context.Background(), steps, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"exec:a", "exec:b", "exec:c"}, log)
}

func TestRunnerEmitsProgressBeforeEachStep(t *testing.T) {
	t.Parallel()

	var log []string
	steps := []Step{okStep("a", &log), okStep("b", &log), okStep("c", &log), okStep("d", &log)}

	var progress []Progress
	err := (runner{logger: testLogger()}).run(context.Background(), steps, func(p Progress) {
		progress = append(progress, p)
	})
	require.NoError(t, err)

	require.Len(t, progress, 4)
	assert.Equal(t, []Progress{
		{StepName: "a", Percentage: 0, Message: "a"},
		{StepName: "b", Percentage: 25, Message: "b"},
		{StepName: "c", Percentage: 50, Message: "c"},
		{StepName: "d", Percentage: 75, Message: "d"},
	}, progress)
}

func TestRunnerRollsBackInReverseOrder(t *testing.T) {
	t.Parallel()

	boom := errors.New("store unavailable")
	var log []string
	steps := []Step{
		okStep("a", &log),
		okStep("b", &log),
		{
			Name: "c",
			Execute: func(context.Context) (Compensation, error) {
				return Compensation{}, boom
			},
		},
		okStep("d", &log),
	}

	err := (runner{logger: testLogger()}).run(context.Background(), steps, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "c:")

	// d never ran; b and a were compensated newest-first.
	assert.Equal(t, []string{"exec:a", "exec:b", "undo:b", "undo:a"}, log)
}

func TestRunnerSkipsZeroCompensations(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var log []string
	steps := []Step{
		okStep("created", &log),
		{
			// Fetched an existing resource: nothing to undo.
			Name: "fetched",
			Execute: func(context.Context) (Compensation, error) {
				log = append(log, "exec:fetched")
				return Compensation{}, nil
			},
		},
		{
			Name: "failing",
			Execute: func(context.Context) (Compensation, error) {
				return Compensation{}, boom
			},
		},
	}

	err := (runner{logger: testLogger()}).run(context.Background(), steps, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"exec:created", "exec:fetched", "undo:created"}, log)
}

func TestRollbackSwallowsCompensationFailures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var log []string
	steps := []Step{
		okStep("a", &log),
		{
			Name: "b",
			Execute: func(context.Context) (Compensation, error) {
				log = append(log, "exec:b")
				return Compensation{
					Name: "undo_b",
					Undo: func(context.Context) error {
						log = append(log, "undo:b")
						return errors.New("undo failed")
					},
				}, nil
			},
		},
		{
			Name: "c",
			Execute: func(context.Context) (Compensation, error) {
				return Compensation{}, boom
			},
		},
	}

	// The failed compensation is logged and swallowed; earlier compensations
	// still run and the original step error is the one surfaced.
	err := (runner{logger: testLogger()}).run(context.Background(), steps, nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"exec:a", "exec:b", "undo:b", "undo:a"}, log)
}
