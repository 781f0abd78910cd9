package wizard

import (
	"fmt"
	"sync"
	"time"
)

// State is the full wizard state. It is a plain value: all transitions go
// through pure reducer functions so they can be tested without any UI.
type State struct {
	CurrentStep      int
	Data             Data
	IsLoading        bool
	Err              string
	CanProceed       bool
	ValidationErrors map[string]string
	IsTransitioning  bool
	LastModifiedAt   time.Time
}

// Progress reports position over the steps preceding the terminal one; the
// terminal step is excluded from the denominator.
type Progress struct {
	Current    int `json:"current"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Machine holds a State and an explicit subscription list. Mutations apply a
// reducer to the current state and notify subscribers with the new value.
// Navigation fails closed: anything the guard cannot prove reachable is
// denied with the state left untouched.
type Machine struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewMachine() *Machine {
	return &Machine{state: revalidate(State{CurrentStep: StepWelcome})}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Machine) notify(s State) {
	for _, fn := range m.subs {
		fn(s)
	}
}

// UpdateData merges the patch into the accumulated data, stamps the
// last-modified time, and re-runs validation for the current step.
func (m *Machine) UpdateData(p Patch) {
	m.mu.Lock()
	m.state = reduceUpdate(m.state, p, time.Now())
	s := m.state
	m.mu.Unlock()
	m.notify(s)
}

// GoToStep navigates to the target step. It refuses overlapping calls (the
// IsTransitioning re-entrancy guard), and refuses targets the guard cannot
// reach: reachable means any index at or before the current one, or exactly
// the next index while the current step validates. On a violation Err is set
// and CurrentStep is unchanged.
func (m *Machine) GoToStep(target int) bool {
	m.mu.Lock()
	if m.state.IsTransitioning {
		m.mu.Unlock()
		return false
	}
	m.state.IsTransitioning = true
	next, ok := reduceNavigate(m.state, target)
	next.IsTransitioning = false
	m.state = next
	s := m.state
	m.mu.Unlock()
	m.notify(s)
	return ok
}

func (m *Machine) GoNext() bool {
	return m.GoToStep(m.State().CurrentStep + 1)
}

func (m *Machine) GoPrevious() bool {
	return m.GoToStep(m.State().CurrentStep - 1)
}

func (m *Machine) Progress() Progress {
	s := m.State()
	total := len(Steps) - 1
	current := s.CurrentStep + 1
	if current > total {
		current = total
	}
	return Progress{Current: current, Total: total, Percentage: current * 100 / total}
}

// reduceUpdate is the pure reducer for data updates.
func reduceUpdate(s State, p Patch, now time.Time) State {
	s.Data = s.Data.merge(p)
	s.LastModifiedAt = now
	return revalidate(s)
}

// reduceNavigate is the pure reducer for navigation. The returned bool
// reports whether the transition was allowed.
func reduceNavigate(s State, target int) (State, bool) {
	if !reachable(s, target) {
		s.Err = fmt.Sprintf("step %d is not reachable from step %d", target, s.CurrentStep)
		return s, false
	}
	if target == s.CurrentStep {
		s.Err = ""
		return s, true
	}
	s.CurrentStep = target
	s.Err = ""
	return revalidate(s), true
}

func reachable(s State, target int) bool {
	if target < 0 || target >= len(Steps) {
		return false
	}
	if target == s.CurrentStep {
		return true
	}
	if !Steps[s.CurrentStep].CanNavigateFrom || !Steps[target].CanNavigateTo {
		return false
	}
	if target < s.CurrentStep {
		return true
	}
	return target == s.CurrentStep+1 && s.CanProceed
}

func revalidate(s State) State {
	res := Steps[s.CurrentStep].Validate(s.Data)
	s.CanProceed = res.IsValid
	s.ValidationErrors = res.Errors
	return s
}
