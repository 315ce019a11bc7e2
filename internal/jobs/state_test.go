package jobs

import "testing"

func TestTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		ok       bool
	}{
		{StatePending, StateRunning, true},
		{StatePending, StateCancelled, true},
		{StatePending, StateFailed, true},
		{StatePending, StateSucceeded, false},
		{StateRunning, StateSucceeded, true},
		{StateRunning, StateFailed, true},
		{StateRunning, StateCancelling, true},
		{StateRunning, StateCancelled, false},
		{StateCancelling, StateCancelled, true},
		{StateCancelling, StateFailed, false},
		{StateCancelling, StateSucceeded, false},
		{StateSucceeded, StateRunning, false},
		{StateCancelled, StatePending, false},
	}
	for _, tt := range tests {
		if got := validTransition(tt.from, tt.to); got != tt.ok {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.ok)
		}
	}
}

func TestTrackerRejectsInvalidTransition(t *testing.T) {
	tr := newTracker()
	if err := tr.transition(StateSucceeded); err == nil {
		t.Fatal("expected pending -> succeeded to fail")
	}
	if tr.current() != StatePending {
		t.Fatalf("state changed on rejected transition: %s", tr.current())
	}
	if err := tr.transition(StateRunning); err != nil {
		t.Fatalf("pending -> running: %v", err)
	}
	if err := tr.transition(StateRunning); err != nil {
		t.Fatalf("self transition should be a no-op: %v", err)
	}
}

func TestBeginCancel(t *testing.T) {
	tr := newTracker()
	if tr.beginCancel() {
		t.Fatal("pending job must not enter cancelling")
	}
	_ = tr.transition(StateRunning)
	if !tr.beginCancel() || !tr.beginCancel() {
		t.Fatal("running job should enter cancelling idempotently")
	}
	if tr.current() != StateCancelling {
		t.Fatalf("state = %s", tr.current())
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range []State{StateSucceeded, StateFailed, StateCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StatePending, StateRunning, StateCancelling} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name    string
		cancel  bool
		to      State
		want    State
		wantErr bool
	}{
		{"running succeeds", false, StateSucceeded, StateSucceeded, false},
		{"running fails", false, StateFailed, StateFailed, false},
		{"cancelling wins over success", true, StateSucceeded, StateCancelled, false},
		{"cancelling wins over failure", true, StateFailed, StateCancelled, false},
		{"running cannot skip cancelling", false, StateCancelled, StateRunning, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTracker()
			if err := tr.transition(StateRunning); err != nil {
				t.Fatal(err)
			}
			if tt.cancel {
				tr.beginCancel()
			}
			got, err := tr.settle(tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("settle(%s) err = %v, wantErr %v", tt.to, err, tt.wantErr)
			}
			if got != tt.want || tr.current() != tt.want {
				t.Fatalf("settle(%s) = %s (tracker %s), want %s", tt.to, got, tr.current(), tt.want)
			}
		})
	}
}
