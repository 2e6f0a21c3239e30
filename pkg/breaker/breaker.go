package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Default thresholds applied when no option overrides them.
const (
	// DefaultFailureThreshold is the number of consecutive failures that
	// opens the circuit.
	DefaultFailureThreshold = 5

	// DefaultRecoveryTimeout is how long an open circuit rejects calls
	// before allowing a recovery probe.
	DefaultRecoveryTimeout = 60 * time.Second
)

// ErrOpen is the sentinel error wrapped inside every rejection returned
// by an open breaker. Use errors.Is(err, breaker.ErrOpen) or
// [sserr.IsCircuitOpen] to tell protective rejection apart from a genuine
// failure of the guarded operation.
var ErrOpen = errors.New("circuit breaker is open")

// Clock abstracts the time source so recovery timing can be tested
// without real time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// StateChangeHandler is called synchronously on every breaker state
// transition. Handlers run under the breaker mutex; they must not call
// methods on the same breaker or block for extended periods.
type StateChangeHandler func(name string, from, to State)

// Breaker guards calls to a single named resource. It is safe for
// concurrent use by multiple goroutines. Create one using [New] and share
// it across the application; breakers for the same resource must be
// shared, not duplicated, or their failure counts will diverge.
type Breaker struct {
	// Immutable fields — set at construction, never modified.
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	clock            Clock
	logger           *slog.Logger
	onStateChange    StateChangeHandler

	// Mutable fields — protected by mu.
	mu           sync.Mutex
	state        State
	failureCount int
	lastFailure  time.Time
}

// Option configures a Breaker at construction time.
type Option func(*Breaker)

// WithFailureThreshold sets the number of consecutive failures that opens
// the circuit. Values less than 1 are ignored and the default applies.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n >= 1 {
			b.failureThreshold = n
		}
	}
}

// WithRecoveryTimeout sets how long an open circuit rejects calls before
// allowing a recovery probe. Non-positive values are ignored and the
// default applies.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.recoveryTimeout = d
		}
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(c Clock) Option {
	return func(b *Breaker) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithLogger sets the logger used for state transition logging.
func WithLogger(l *slog.Logger) Option {
	return func(b *Breaker) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithOnStateChange registers a handler notified on every state
// transition.
func WithOnStateChange(h StateChangeHandler) Option {
	return func(b *Breaker) {
		b.onStateChange = h
	}
}

// New creates a closed Breaker for the named resource with a failure
// threshold of [DefaultFailureThreshold] and a recovery timeout of
// [DefaultRecoveryTimeout] unless options override them.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: DefaultFailureThreshold,
		recoveryTimeout:  DefaultRecoveryTimeout,
		clock:            systemClock{},
		logger:           slog.Default(),
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the resource name this breaker guards. This value is
// immutable after construction.
func (b *Breaker) Name() string {
	return b.name
}

// Execute runs op through the breaker.
//
// If the circuit is open and the recovery timeout has not elapsed, op is
// never invoked and Execute returns a [*sserr.Error] with code
// [sserr.CodeCircuitOpen] wrapping [ErrOpen]. If the timeout has elapsed,
// the breaker transitions to half-open and op runs as a recovery probe.
//
// When op runs, its error is returned unchanged: a success resets the
// failure count to zero and closes the circuit, a failure increments the
// count and opens the circuit once the threshold is reached.
//
// A canceled context is returned before op is invoked and is not counted
// as a failure of the resource.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.allow(); err != nil {
		return err
	}

	err := op(ctx)
	if err != nil {
		b.recordFailure()
		return err
	}
	b.recordSuccess()
	return nil
}

// Run executes fn through breaker b and returns its value. It is the
// generic companion to [Breaker.Execute] for operations that produce a
// result.
//
// Example:
//
//	events, err := breaker.Run(ctx, b, func(ctx context.Context) ([]Event, error) {
//	    return client.RecentEvents(ctx, since)
//	})
func Run[T any](ctx context.Context, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := b.Execute(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// allow decides whether a call may proceed. It returns nil when the
// breaker is closed or half-open, transitions an expired open breaker to
// half-open, and otherwise returns the rejection error.
func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	elapsed := b.clock.Now().Sub(b.lastFailure)
	if elapsed >= b.recoveryTimeout {
		b.transitionLocked(StateHalfOpen)
		return nil
	}

	remaining := b.recoveryTimeout - elapsed
	return sserr.WrapWithCode(ErrOpen, sserr.CategoryServerError, sserr.CodeCircuitOpen,
		fmt.Sprintf("circuit breaker %q is open", b.name)).
		WithContext("breaker", b.name).
		WithContext("retry_after_ms", remaining.Milliseconds())
}

// recordSuccess resets the failure count and closes the circuit. This is
// the only path that sets the count back to zero.
func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state != StateClosed {
		b.transitionLocked(StateClosed)
	}
}

// recordFailure increments the failure count, restarts the recovery
// clock, and opens the circuit once the threshold is reached. A failed
// half-open probe reopens the circuit with its count still at or above
// the threshold.
func (b *Breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount++
	b.lastFailure = b.clock.Now()
	if b.failureCount >= b.failureThreshold && b.state != StateOpen {
		b.transitionLocked(StateOpen)
	}
}

// transitionLocked moves the breaker to the given state. The caller must
// hold mu. Transitions are validated against the state machine; an
// invalid transition is logged and dropped rather than corrupting state.
func (b *Breaker) transitionLocked(to State) {
	from := b.state
	if !ValidTransition(from, to) {
		b.logger.Warn("breaker: invalid state transition dropped",
			"breaker", b.name,
			"from", string(from),
			"to", string(to),
		)
		return
	}

	b.state = to
	b.logger.Info("breaker: state changed",
		"breaker", b.name,
		"from", string(from),
		"to", string(to),
		"failures", b.failureCount,
	)

	if b.onStateChange != nil {
		// The handler is called in a deferred-recover wrapper to prevent
		// a panicking handler from corrupting breaker state.
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("breaker: state change handler panicked",
						"panic", r,
						"breaker", b.name,
						"from", string(from),
						"to", string(to),
					)
				}
			}()
			b.onStateChange(b.name, from, to)
		}()
	}
}

// State returns the current circuit state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Status is a point-in-time snapshot of a breaker.
type Status struct {
	Name         string    `json:"name"`
	State        State     `json:"state"`
	FailureCount int       `json:"failure_count"`
	LastFailure  time.Time `json:"last_failure,omitzero"`
}

// Snapshot returns a point-in-time snapshot of the breaker's state,
// failure count, and last failure time.
func (b *Breaker) Snapshot() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		Name:         b.name,
		State:        b.state,
		FailureCount: b.failureCount,
		LastFailure:  b.lastFailure,
	}
}

// Reset closes the circuit and clears the failure count regardless of the
// current state. Intended for administrative use after a dependency is
// known to have recovered.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failureCount = 0
	if b.state != StateClosed {
		b.transitionLocked(StateClosed)
	}
}
