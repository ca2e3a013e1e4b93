/*
Package access meters how long the local identity may chat.

Timer is the in-memory state machine: Unknown until a grant is loaded, then Active with a
whole number of remaining seconds, then Expired once the countdown reaches zero. Grants is
the persistence side: it reads and writes the AccessGrant of one user in a storage.Store.

The two halves are separate so that a caller running an event loop can do the storage work
elsewhere and apply only the outcome to the Timer.
*/
package access

import "time"

// State is the phase of a Timer.
type State int

const (
	StateUnknown State = iota
	StateActive
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Status is a point-in-time view of a Timer.
type Status struct {
	State     State
	Remaining int

	// FailedOpen is set when the status came from a storage failure rather than a stored grant.
	FailedOpen bool

	// Missing is set when no grant was stored and the free grant still has to be saved.
	Missing bool
}

// Timer counts down the remaining access of one identity. It is not safe for concurrent use.
type Timer struct {
	state     State
	remaining int
}

// State returns the current phase.
func (t *Timer) State() State {
	return t.state
}

// Remaining returns the remaining seconds. It is zero unless the timer is Active.
func (t *Timer) Remaining() int {
	return t.remaining
}

// Active reports whether the identity may currently chat.
func (t *Timer) Active() bool {
	return t.state == StateActive
}

// Status returns the current phase and remaining seconds.
func (t *Timer) Status() Status {
	return Status{State: t.state, Remaining: t.remaining}
}

// Apply moves the timer to st. An Active status with no remaining seconds becomes Expired.
func (t *Timer) Apply(st Status) {
	switch {
	case st.State == StateActive && st.Remaining > 0:
		t.state = StateActive
		t.remaining = st.Remaining
	case st.State == StateUnknown:
		t.state = StateUnknown
		t.remaining = 0
	default:
		t.state = StateExpired
		t.remaining = 0
	}
}

// Tick removes one second. It returns true only on the tick that expires the timer.
// Ticks outside Active are ignored.
func (t *Timer) Tick() bool {
	if t.state != StateActive {
		return false
	}

	if t.remaining > 0 {
		t.remaining--
	}

	if t.remaining == 0 {
		t.state = StateExpired
		return true
	}

	return false
}

// Grant activates the timer for d, whatever its current phase. Sub-second parts are dropped.
func (t *Timer) Grant(d time.Duration) {
	t.Apply(Status{State: StateActive, Remaining: int(d / time.Second)})
}
