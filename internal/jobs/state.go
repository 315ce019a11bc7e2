package jobs

import (
	"fmt"
	"sync"
)

// State is a job's lifecycle position.
type State string

const (
	StatePending    State = "pending"
	StateRunning    State = "running"
	StateCancelling State = "cancelling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	default:
		return false
	}
}

// transitions lists the permitted edges. Cancelled is reachable from Running
// only through Cancelling.
var transitions = map[State][]State{
	StatePending:    {StateRunning, StateFailed, StateCancelled},
	StateRunning:    {StateSucceeded, StateFailed, StateCancelling},
	StateCancelling: {StateCancelled},
}

func validTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// tracker guards one job's state.
type tracker struct {
	mu    sync.RWMutex
	state State
}

func newTracker() *tracker {
	return &tracker{state: StatePending}
}

func (t *tracker) current() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *tracker) transition(to State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == to {
		return nil
	}
	if !validTransition(t.state, to) {
		return fmt.Errorf("invalid transition: %s -> %s", t.state, to)
	}
	t.state = to
	return nil
}

// beginCancel moves a running job to Cancelling and reports whether the job
// is now cancelling.
func (t *tracker) beginCancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateRunning {
		t.state = StateCancelling
	}
	return t.state == StateCancelling
}

// settle moves the job to its final state and returns it. A job that is
// already cancelling ends Cancelled whatever outcome is offered.
func (t *tracker) settle(to State) (State, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == StateCancelling {
		t.state = StateCancelled
		return t.state, nil
	}
	if t.state == to {
		return to, nil
	}
	if !validTransition(t.state, to) {
		return t.state, fmt.Errorf("invalid transition: %s -> %s", t.state, to)
	}
	t.state = to
	return to, nil
}
