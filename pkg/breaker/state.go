// Package breaker provides a per-resource circuit breaker that sheds load
// from failing dependencies, including state machine transitions, lazy
// recovery probing, and state change observation.
//
// # Circuit States
//
// Every breaker follows a finite state machine. The [State] type
// represents the breaker's current position, and all transitions are
// validated against the [validTransitions] matrix to prevent illegal
// state changes.
//
// The flow for a failing resource is:
//
//	Closed → Open → HalfOpen → Closed
//
// While closed, calls pass through and consecutive failures are counted.
// Reaching the failure threshold opens the circuit. While open, calls are
// rejected immediately without invoking the guarded operation. Once the
// recovery timeout has elapsed, the next call transitions the breaker to
// half-open and runs as a probe: success closes the circuit and clears
// the failure count, failure reopens it and restarts the recovery clock.
//
// The failure count resets to zero only on a successful execution. It is
// never decremented and never reset by a state transition, so after a
// failed probe it remains at or above the threshold.
//
// # Thread Safety
//
// State management in [Breaker] is protected by a [sync.Mutex]. All state
// reads and writes are safe for concurrent use by multiple goroutines,
// including [Breaker.Execute] and the snapshot accessors.
package breaker

// State represents the state of a circuit breaker. States form a finite
// state machine with validated transitions defined by [ValidTransition].
//
// The zero value ("") is not a valid state; breakers are initialized with
// [StateClosed] at construction time.
type State string

const (
	// StateClosed is the normal operating state. Calls pass through to
	// the guarded operation and consecutive failures are counted. The
	// breaker stays closed until the failure threshold is reached.
	StateClosed State = "closed"

	// StateOpen indicates the failure threshold was reached and the
	// resource is cooling down. Calls are rejected immediately without
	// invoking the guarded operation until the recovery timeout elapses.
	StateOpen State = "open"

	// StateHalfOpen indicates the recovery timeout has elapsed and the
	// breaker is probing the resource. The next call executes normally:
	// success transitions to [StateClosed], failure back to [StateOpen].
	StateHalfOpen State = "half-open"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Valid reports whether the state is one of the recognized circuit
// states. The zero value ("") is not valid.
func (s State) Valid() bool {
	switch s {
	case StateClosed, StateOpen, StateHalfOpen:
		return true
	default:
		return false
	}
}

// validTransitions defines the allowed state transitions for the circuit
// breaker state machine. Each key is a source state, and the value is the
// set of states it may transition to. Transitions not present in this map
// are rejected by [ValidTransition].
//
// Transition matrix:
//
//	Closed   → Open                  (failure threshold reached)
//	Open     → HalfOpen, Closed      (recovery probe, manual reset)
//	HalfOpen → Closed, Open          (probe success, probe failure)
var validTransitions = map[State][]State{
	StateClosed:   {StateOpen},
	StateOpen:     {StateHalfOpen, StateClosed},
	StateHalfOpen: {StateClosed, StateOpen},
}

// ValidTransition reports whether transitioning from state from to state
// to is allowed by the circuit breaker state machine. Both from and to
// must be valid states, and the transition must be present in the
// [validTransitions] matrix. Same-state transitions (from == to) are
// always rejected.
func ValidTransition(from, to State) bool {
	if from == to {
		return false
	}
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, t := range targets {
		if t == to {
			return true
		}
	}
	return false
}
