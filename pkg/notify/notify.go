// Package notify defines the outbound alert contract for the error
// monitor. The monitor hands every fired alert to a [Notifier]; how the
// alert leaves the process is entirely the notifier's concern.
//
// # Implementations
//
//   - [Nop] swallows alerts (the default when nothing is wired)
//   - [Func] adapts a plain function
//   - [Slog] writes alerts to a structured logger
//   - [Webhook] POSTs JSON to an HTTP endpoint, guarded by a circuit
//     breaker so a dead endpoint cannot stall alerting
//   - [Email] formats a subject and body and hands them to an injected
//     send function
//   - [Multi] fans out to several notifiers
//   - [When] gates a notifier behind a runtime predicate, used for
//     channel enable/disable toggles
//
// Notifiers must be safe for concurrent use. Send is called outside the
// monitor's lock, so a slow transport delays only alert delivery, never
// error recording.
package notify

import (
	"context"
	"errors"
	"log/slog"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Alert is the narrow, transport-agnostic payload handed to notifiers.
type Alert struct {
	// Type is the stable alert-type key, e.g. "high_error_rate". One
	// type fires at most once per cooldown window.
	Type string `json:"type"`

	// Message is the human-readable alert text.
	Message string `json:"message"`

	// Severity grades the alert using the error severity scale.
	Severity sserr.Severity `json:"severity"`
}

// Notifier delivers alerts to an external channel.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// Nop discards all alerts.
type Nop struct{}

// Send does nothing.
func (Nop) Send(context.Context, Alert) error { return nil }

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, alert Alert) error

// Send calls f.
func (f Func) Send(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}

// Slog writes alerts to a structured logger at a level derived from the
// alert severity.
type Slog struct {
	logger *slog.Logger
}

// NewSlog returns a notifier that logs alerts. A nil logger falls back
// to [slog.Default].
func NewSlog(logger *slog.Logger) *Slog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Slog{logger: logger}
}

// Send logs the alert.
func (s *Slog) Send(ctx context.Context, alert Alert) error {
	level := slog.LevelWarn
	if alert.Severity == sserr.SeverityCritical || alert.Severity == sserr.SeverityHigh {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "notify: alert fired",
		"alert_type", alert.Type,
		"severity", string(alert.Severity),
		"message", alert.Message,
	)
	return nil
}

// Multi fans an alert out to every notifier in order. Each notifier is
// attempted even if an earlier one fails; the returned error joins all
// individual failures.
type Multi []Notifier

// Send forwards the alert to each notifier.
func (m Multi) Send(ctx context.Context, alert Alert) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Send(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// When gates a notifier behind a predicate evaluated at send time. A
// false predicate drops the alert silently. Used to wire channel
// enable/disable toggles that can change at runtime.
func When(enabled func() bool, n Notifier) Notifier {
	return Func(func(ctx context.Context, alert Alert) error {
		if enabled == nil || n == nil || !enabled() {
			return nil
		}
		return n.Send(ctx, alert)
	})
}
