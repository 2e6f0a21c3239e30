// Package telemetry defines the contract between error-producing code and
// the systems that observe it. A [Sink] receives every structured error
// recorded through the registry, together with the request-scoped
// [ErrorInfo] carried in the context.
//
// # Implementations
//
//   - [NopSink] discards everything (the default when no sink is wired)
//   - [SlogSink] forwards errors to a structured logger at a level derived
//     from severity
//   - [OTelSink] attaches an event to the active OpenTelemetry span
//   - [MultiSink] fans out to several sinks in order
//
// Sinks must be safe for concurrent use and must not block: Record is
// called on the request path.
package telemetry

import (
	"context"
	"log/slog"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Event is the unit handed to a sink: the structured error plus the
// request context captured at the call site.
type Event struct {
	Error *sserr.Error
	Info  ErrorInfo
}

// Sink receives recorded error events. Implementations must tolerate an
// Event whose Info is the zero value.
type Sink interface {
	Record(ctx context.Context, ev Event)
}

// NopSink discards all events.
type NopSink struct{}

// Record does nothing.
func (NopSink) Record(context.Context, Event) {}

// MultiSink forwards each event to every sink in order. A nil entry is
// skipped.
type MultiSink []Sink

// Record forwards ev to each sink.
func (m MultiSink) Record(ctx context.Context, ev Event) {
	for _, s := range m {
		if s != nil {
			s.Record(ctx, ev)
		}
	}
}

// LevelFor maps an error severity to the slog level it should be logged
// at. Critical and high severities map to [slog.LevelError], medium to
// [slog.LevelWarn], and low to [slog.LevelInfo].
func LevelFor(s sserr.Severity) slog.Level {
	switch s {
	case sserr.SeverityCritical, sserr.SeverityHigh:
		return slog.LevelError
	case sserr.SeverityMedium:
		return slog.LevelWarn
	case sserr.SeverityLow:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
