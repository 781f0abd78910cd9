package wizard

import "time"

// Snapshot is the restartable serialization of the wizard state: all
// collected fields flattened alongside the step index and the persistence
// time. It omits CanProceed and validation output: rules may change between
// sessions, so restoring always re-runs validation.
type Snapshot struct {
	Data
	CurrentStep int       `json:"current_step"`
	PersistedAt time.Time `json:"persisted_at"`
}

// Snapshot serializes the current state.
func (m *Machine) Snapshot() Snapshot {
	s := m.State()
	return Snapshot{Data: s.Data, CurrentStep: s.CurrentStep, PersistedAt: time.Now()}
}

// Restore replaces the machine state from a snapshot. The step index is
// clamped into range and validation is re-run rather than trusted from the
// stored copy.
func (m *Machine) Restore(snap Snapshot) {
	step := snap.CurrentStep
	if step < 0 {
		step = StepWelcome
	}
	if step >= len(Steps) {
		step = len(Steps) - 1
	}
	m.mu.Lock()
	m.state = revalidate(State{CurrentStep: step, Data: snap.Data, LastModifiedAt: snap.PersistedAt})
	s := m.state
	m.mu.Unlock()
	m.notify(s)
}
