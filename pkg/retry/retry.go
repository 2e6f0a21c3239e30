// Package retry provides a stateless retry executor with exponential
// backoff driven by error categories. Whether a failure is retried is
// decided by the error's [sserr.Category] against the policy's retryable
// set, never by string matching.
//
// The executor holds no state between calls: all behavior is determined
// by the [Policy] and the errors the operation returns. Backoff delays
// are a pure function of the attempt number, so retry schedules are fully
// deterministic and testable without real time via [WithSleeper].
package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Policy defaults applied by DefaultPolicy.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy controls how many attempts an operation gets and how the delay
// between them grows. The zero value is not usable; start from
// [DefaultPolicy] and adjust fields.
type Policy struct {
	// MaxAttempts is the total number of invocations, including the
	// first. An operation is never invoked more than MaxAttempts times.
	MaxAttempts int

	// BaseDelay is the delay before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor between attempts.
	Multiplier float64

	// RetryableCategories is the set of error categories worth retrying.
	// Failures in any other category abort immediately.
	RetryableCategories []sserr.Category
}

// DefaultPolicy returns the standard policy: 3 attempts, 1s base delay
// doubling up to 10s, retrying network, timeout, server-error, and
// rate-limit failures.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		Multiplier:  DefaultMultiplier,
		RetryableCategories: []sserr.Category{
			sserr.CategoryNetwork,
			sserr.CategoryTimeout,
			sserr.CategoryServerError,
			sserr.CategoryRateLimit,
		},
	}
}

// Validate reports whether the policy is internally consistent. It
// returns a configuration error naming the first invalid field.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return sserr.Configuration("retry: max attempts must be at least 1")
	}
	if p.BaseDelay < 0 {
		return sserr.Configuration("retry: base delay must not be negative")
	}
	if p.MaxDelay < p.BaseDelay {
		return sserr.Configuration("retry: max delay must be at least the base delay")
	}
	if p.Multiplier < 1 {
		return sserr.Configuration("retry: multiplier must be at least 1")
	}
	return nil
}

// Delay returns the backoff delay that precedes the given attempt.
// Attempt numbers start at 1; the delay before attempt n+1 is
//
//	min(BaseDelay × Multiplier^(n−1), MaxDelay)
//
// Delay is a pure function: the same policy and attempt always produce
// the same duration.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// Retryable reports whether an error's category is in the policy's
// retryable set. Errors that are not [*sserr.Error] values are
// classified through [sserr.FromError] for the decision only; the error
// itself is never replaced.
func (p Policy) Retryable(err error) bool {
	if err == nil {
		return false
	}
	category := sserr.FromError(err).Category
	for _, c := range p.RetryableCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Sleeper abstracts the backoff wait so tests can run without real time.
// Sleep returns early with the context's error when ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to the Sleeper interface.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// timerSleeper waits on a real timer while honoring cancellation.
type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Option configures the executor for a single Do or Run call.
type Option func(*executor)

// WithSleeper replaces the real-time backoff wait. Intended for tests.
func WithSleeper(s Sleeper) Option {
	return func(e *executor) {
		if s != nil {
			e.sleeper = s
		}
	}
}

// WithLogger sets the logger used for per-attempt logging.
func WithLogger(l *slog.Logger) Option {
	return func(e *executor) {
		if l != nil {
			e.logger = l
		}
	}
}

type executor struct {
	sleeper Sleeper
	logger  *slog.Logger
}

func newExecutor(opts []Option) *executor {
	e := &executor{
		sleeper: timerSleeper{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Do invokes op up to policy.MaxAttempts times.
//
// A failure whose category is outside the policy's retryable set aborts
// immediately after a single invocation. Retryable failures are retried
// after the policy's backoff delay; the wait honors ctx cancellation.
// Once attempts are exhausted the LAST error is returned unchanged, with
// nothing wrapped around it. The attempt history goes to the logger, not
// the error chain.
func Do(ctx context.Context, policy Policy, op func(context.Context) error, opts ...Option) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	e := newExecutor(opts)

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if !e.shouldRetry(ctx, policy, lastErr, attempt) {
			return lastErr
		}

		if err := e.sleeper.Sleep(ctx, policy.Delay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

// Run invokes fn with retries and returns its value. It is the generic
// companion to [Do] for operations that produce a result.
//
// Example:
//
//	events, err := retry.Run(ctx, retry.DefaultPolicy(), func(ctx context.Context) ([]Event, error) {
//	    return client.RecentEvents(ctx, since)
//	})
func Run[T any](ctx context.Context, policy Policy, fn func(context.Context) (T, error), opts ...Option) (T, error) {
	var out T
	err := Do(ctx, policy, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, opts...)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// shouldRetry decides whether another attempt is warranted and logs the
// outcome of the one that just failed.
func (e *executor) shouldRetry(ctx context.Context, policy Policy, err error, attempt int) bool {
	if !policy.Retryable(err) {
		e.logger.DebugContext(ctx, "retry: error is not retryable",
			"attempt", attempt,
			"category", string(sserr.FromError(err).Category),
			"error", err,
		)
		return false
	}
	if attempt >= policy.MaxAttempts {
		e.logger.WarnContext(ctx, "retry: attempts exhausted",
			"attempts", attempt,
			"error", err,
		)
		return false
	}

	e.logger.InfoContext(ctx, "retry: attempt failed, backing off",
		"attempt", attempt,
		"max_attempts", policy.MaxAttempts,
		"delay", policy.Delay(attempt).String(),
		"category", string(sserr.FromError(err).Category),
		"error", err,
	)
	return true
}
