package wizard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string     { return &s }
func slcptr(s []string) *[]string { return &s }

func fillProfile(m *Machine) {
	m.UpdateData(Patch{Name: strptr("Ana Souza"), Email: strptr("ana@example.com")})
}

func fillClinic(m *Machine) {
	m.UpdateData(Patch{ClinicName: strptr("Clinica Bela Pele"), City: strptr("Sao Paulo"), State: strptr("SP")})
}

func fillProfessional(m *Machine) {
	m.UpdateData(Patch{Specialties: slcptr([]string{"dermatology"})})
}

func fillSchedule(m *Machine) {
	m.UpdateData(Patch{OpeningTime: strptr("08:00"), ClosingTime: strptr("18:00")})
}

func TestMachineStartsAtWelcome(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	s := m.State()
	assert.Equal(t, StepWelcome, s.CurrentStep)
	assert.True(t, s.CanProceed)
	assert.Empty(t, s.ValidationErrors)
}

func TestForwardNavigationRequiresValidStep(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.True(t, m.GoNext()) // welcome -> profile

	// Profile data missing: the guard fails closed.
	require.False(t, m.GoNext())
	s := m.State()
	assert.Equal(t, StepProfile, s.CurrentStep)
	assert.NotEmpty(t, s.Err)

	fillProfile(m)
	require.True(t, m.GoNext())
	s = m.State()
	assert.Equal(t, StepClinic, s.CurrentStep)
	assert.Empty(t, s.Err)
}

func TestSkippingAheadDenied(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.False(t, m.GoToStep(StepSchedule))
	assert.Equal(t, StepWelcome, m.State().CurrentStep)
}

func TestBackNavigationIgnoresValidation(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.True(t, m.GoNext())
	fillProfile(m)
	require.True(t, m.GoNext()) // clinic, invalid

	// Going back is allowed even though the current step does not validate.
	require.False(t, m.State().CanProceed)
	require.True(t, m.GoPrevious())
	assert.Equal(t, StepProfile, m.State().CurrentStep)

	// Jumping several steps back at once is also fine.
	fillProfile(m)
	require.True(t, m.GoToStep(StepWelcome))
}

func TestNavigationOutOfRange(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	assert.False(t, m.GoPrevious())
	assert.False(t, m.GoToStep(-3))
	assert.False(t, m.GoToStep(len(Steps)))
	assert.Equal(t, StepWelcome, m.State().CurrentStep)
}

func TestDoneStepUnreachableThroughNavigation(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	fillProfile(m)
	fillClinic(m)
	fillProfessional(m)
	fillSchedule(m)

	for step := StepProfile; step <= StepSchedule; step++ {
		require.True(t, m.GoNext(), "expected to reach step %d", step)
	}
	require.Equal(t, StepSchedule, m.State().CurrentStep)
	require.True(t, m.State().CanProceed)

	// The terminal step is display-only; completion happens server-side.
	assert.False(t, m.GoNext())
	assert.Equal(t, StepSchedule, m.State().CurrentStep)
}

func TestNavigatingToCurrentStepClearsError(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.False(t, m.GoToStep(StepClinic))
	require.NotEmpty(t, m.State().Err)

	require.True(t, m.GoToStep(StepWelcome))
	assert.Empty(t, m.State().Err)
}

func TestUpdateDataRevalidatesCurrentStep(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	require.True(t, m.GoNext())
	require.False(t, m.State().CanProceed)
	assert.Contains(t, m.State().ValidationErrors, "name")

	fillProfile(m)
	s := m.State()
	assert.True(t, s.CanProceed)
	assert.Empty(t, s.ValidationErrors)
	assert.False(t, s.LastModifiedAt.IsZero())
}

func TestSubscribersSeeEveryTransition(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	var seen []State
	m.Subscribe(func(s State) { seen = append(seen, s) })

	fillProfile(m)
	m.GoNext()

	require.Len(t, seen, 2)
	assert.Equal(t, StepWelcome, seen[0].CurrentStep)
	assert.Equal(t, StepProfile, seen[1].CurrentStep)
}

func TestProgress(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	p := m.Progress()
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, len(Steps)-1, p.Total)
	assert.Equal(t, 20, p.Percentage)

	require.True(t, m.GoNext())
	p = m.Progress()
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, 40, p.Percentage)
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	fillProfile(m)
	require.True(t, m.GoNext())
	snap := m.Snapshot()
	assert.Equal(t, StepProfile, snap.CurrentStep)
	assert.Equal(t, "Ana Souza", snap.Name)

	restored := NewMachine()
	restored.Restore(snap)
	s := restored.State()
	assert.Equal(t, StepProfile, s.CurrentStep)
	assert.Equal(t, snap.Data, s.Data)
	assert.True(t, s.CanProceed)
}

func TestRestoreClampsAndRevalidates(t *testing.T) {
	t.Parallel()

	m := NewMachine()
	m.Restore(Snapshot{CurrentStep: 99, PersistedAt: time.Now()})
	assert.Equal(t, StepDone, m.State().CurrentStep)

	m.Restore(Snapshot{CurrentStep: -4})
	assert.Equal(t, StepWelcome, m.State().CurrentStep)

	// Stored validation output is never trusted: an empty profile restored
	// onto the profile step cannot proceed.
	m.Restore(Snapshot{CurrentStep: StepProfile})
	s := m.State()
	assert.False(t, s.CanProceed)
	assert.Contains(t, s.ValidationErrors, "name")
}
