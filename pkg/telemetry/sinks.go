package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SlogSink forwards error events to a structured logger. The log level is
// derived from the error's severity via [LevelFor].
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink returns a sink that logs to the given logger. A nil logger
// falls back to [slog.Default].
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Record logs the event with the error's identifying attributes. Request
// context fields are included only when set.
func (s *SlogSink) Record(ctx context.Context, ev Event) {
	if ev.Error == nil {
		return
	}

	attrs := []slog.Attr{
		slog.String("error_id", ev.Error.ID),
		slog.String("category", string(ev.Error.Category)),
		slog.String("severity", string(ev.Error.Severity())),
		slog.String("code", string(ev.Error.Code)),
		slog.Bool("retryable", ev.Error.Retryable),
	}
	if ev.Info.Method != "" {
		attrs = append(attrs, slog.String("method", ev.Info.Method))
	}
	if ev.Info.Path != "" {
		attrs = append(attrs, slog.String("path", ev.Info.Path))
	}
	if ev.Info.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", ev.Info.RequestID))
	}
	if ev.Info.Operation != "" {
		attrs = append(attrs, slog.String("operation", ev.Info.Operation))
	}
	if ev.Info.DurationMS > 0 {
		attrs = append(attrs, slog.Int64("duration_ms", ev.Info.DurationMS))
	}
	if traceID, ok := TraceIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String("trace_id", traceID))
	}

	s.logger.LogAttrs(ctx, LevelFor(ev.Error.Severity()), ev.Error.Message, attrs...)
}

// OTelSink attaches recorded errors to the active OpenTelemetry span as an
// exception event carrying the error's identifying attributes. If the
// context holds no recording span the event is dropped.
//
// The sink never alters the span's status. Whether the surrounding
// operation failed is the span owner's call, not the sink's.
type OTelSink struct{}

// NewOTelSink returns a sink that records onto the span in the context.
func NewOTelSink() OTelSink {
	return OTelSink{}
}

// Record adds the error to the current span.
func (OTelSink) Record(ctx context.Context, ev Event) {
	if ev.Error == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("error.id", ev.Error.ID),
		attribute.String("error.category", string(ev.Error.Category)),
		attribute.String("error.severity", string(ev.Error.Severity())),
		attribute.String("error.code", string(ev.Error.Code)),
		attribute.Bool("error.retryable", ev.Error.Retryable),
	}
	if ev.Info.Operation != "" {
		attrs = append(attrs, attribute.String("operation", ev.Info.Operation))
	}
	if ev.Info.RequestID != "" {
		attrs = append(attrs, attribute.String("request.id", ev.Info.RequestID))
	}

	span.RecordError(ev.Error, trace.WithAttributes(attrs...))
}
