package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// recordingSink captures events for assertions.
type recordingSink struct {
	events []Event
}

func (r *recordingSink) Record(_ context.Context, ev Event) {
	r.events = append(r.events, ev)
}

// =============================================================================
// LevelFor Tests
// =============================================================================

func TestLevelFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		severity sserr.Severity
		want     slog.Level
	}{
		{severity: sserr.SeverityCritical, want: slog.LevelError},
		{severity: sserr.SeverityHigh, want: slog.LevelError},
		{severity: sserr.SeverityMedium, want: slog.LevelWarn},
		{severity: sserr.SeverityLow, want: slog.LevelInfo},
		{severity: sserr.Severity("bogus"), want: slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, LevelFor(tt.severity))
		})
	}
}

// =============================================================================
// NopSink / MultiSink Tests
// =============================================================================

func TestNopSink(t *testing.T) {
	t.Parallel()

	// Must not panic, even with a zero event.
	NopSink{}.Record(context.Background(), Event{})
	NopSink{}.Record(context.Background(), Event{Error: sserr.New(sserr.CategoryNetwork, "down")})
}

func TestMultiSink_FansOut(t *testing.T) {
	t.Parallel()

	first := &recordingSink{}
	second := &recordingSink{}
	multi := MultiSink{first, nil, second}

	ev := Event{Error: sserr.Timeout("slow upstream")}
	multi.Record(context.Background(), ev)

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Same(t, ev.Error, first.events[0].Error)
	assert.Same(t, ev.Error, second.events[0].Error)
}

func TestMultiSink_Empty(t *testing.T) {
	t.Parallel()

	MultiSink{}.Record(context.Background(), Event{Error: sserr.Validation("bad")})
}

// =============================================================================
// SlogSink Tests
// =============================================================================

func TestSlogSink_Record(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sink := NewSlogSink(logger)

	err := sserr.Unauthorized("token expired")
	sink.Record(context.Background(), Event{
		Error: err,
		Info: ErrorInfo{
			Method:     "GET",
			Path:       "/api/profile",
			RequestID:  "req-9",
			DurationMS: 12,
		},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "ERROR", entry["level"], "high severity must log at error level")
	assert.Equal(t, "token expired", entry["msg"])
	assert.Equal(t, err.ID, entry["error_id"])
	assert.Equal(t, "authentication", entry["category"])
	assert.Equal(t, "high", entry["severity"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/profile", entry["path"])
	assert.Equal(t, "req-9", entry["request_id"])
	assert.Equal(t, float64(12), entry["duration_ms"])
}

func TestSlogSink_LevelFollowsSeverity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       *sserr.Error
		wantLevel string
	}{
		{name: "low severity logs info", err: sserr.Timeout("slow"), wantLevel: "INFO"},
		{name: "medium severity logs warn", err: sserr.Validation("bad"), wantLevel: "WARN"},
		{name: "high severity logs error", err: sserr.Configuration("missing key"), wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			NewSlogSink(logger).Record(context.Background(), Event{Error: tt.err})

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
		})
	}
}

func TestSlogSink_SkipsEmptyInfoFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogSink(logger).Record(context.Background(), Event{Error: sserr.Validation("bad input")})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	_, hasMethod := entry["method"]
	_, hasPath := entry["path"]
	_, hasRequestID := entry["request_id"]
	assert.False(t, hasMethod)
	assert.False(t, hasPath)
	assert.False(t, hasRequestID)
}

func TestSlogSink_NilError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogSink(logger).Record(context.Background(), Event{})

	assert.Zero(t, buf.Len(), "nil error must not produce a log line")
}

func TestNewSlogSink_NilLoggerDefaults(t *testing.T) {
	t.Parallel()

	sink := NewSlogSink(nil)
	require.NotNil(t, sink)

	// Must not panic.
	sink.Record(context.Background(), Event{Error: sserr.Timeout("slow")})
}

// =============================================================================
// OTelSink Tests
// =============================================================================

func TestOTelSink_RecordsSpanEvent(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
	)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "checkout")

	err := sserr.DependencyFailure("payments", nil)
	NewOTelSink().Record(ctx, Event{
		Error: err,
		Info:  ErrorInfo{Operation: "orders.checkout", RequestID: "req-3"},
	})
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.Len(t, spans[0].Events, 1, "exactly one event should be recorded")

	event := spans[0].Events[0]
	assert.Equal(t, "exception", event.Name)

	attrs := make(map[string]string, len(event.Attributes))
	for _, kv := range event.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, err.ID, attrs["error.id"])
	assert.Equal(t, "dependency-failure", attrs["error.category"])
	assert.Equal(t, "medium", attrs["error.severity"])
	assert.Equal(t, "orders.checkout", attrs["operation"])
	assert.Equal(t, "req-3", attrs["request.id"])
}

func TestOTelSink_NoActiveSpan(t *testing.T) {
	t.Parallel()

	// No span in context: must be a silent no-op.
	NewOTelSink().Record(context.Background(), Event{Error: sserr.Timeout("slow")})
}

func TestOTelSink_NilError(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	NewOTelSink().Record(ctx, Event{})
	span.End()

	require.NoError(t, tp.ForceFlush(context.Background()))
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Empty(t, spans[0].Events)
}
