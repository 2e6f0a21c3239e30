// Package registry is the process-wide home for reliability state: the
// set of named circuit breakers and the central place errors are logged
// and fanned out to telemetry and monitoring.
//
// A [Registry] is an explicit dependency constructed once at process
// start and handed to the components that need it. There is no package
// global, so tests build a fresh registry per test.
//
// # Typical Flow
//
//	reg := registry.New(
//	    registry.WithSink(telemetry.NewSlogSink(logger)),
//	    registry.WithMonitor(mon),
//	)
//
//	err := retry.Do(ctx, policy, func(ctx context.Context) error {
//	    return reg.Execute(ctx, "billing-db", queryAccounts)
//	})
//	if err != nil {
//	    reg.Log(ctx, err, registry.ErrorInfo{Operation: "accounts.list"})
//	}
package registry

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/StricklySoft/stricklysoft-reliability/pkg/breaker"
	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/monitor"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/telemetry"
)

// tracerName is the OpenTelemetry instrumentation scope name for
// registry spans. It follows the Go module path convention for OTel
// instrumentation libraries.
const tracerName = "github.com/StricklySoft/stricklysoft-reliability/pkg/registry"

// ErrorInfo is the request context attached to logged errors. It is an
// alias for [telemetry.ErrorInfo] so producers and sinks share a single
// definition.
type ErrorInfo = telemetry.ErrorInfo

// ContextWithInfo returns a copy of ctx carrying the request context.
// [Registry.Log] falls back to it when called with a zero ErrorInfo.
func ContextWithInfo(ctx context.Context, info ErrorInfo) context.Context {
	return telemetry.ContextWithInfo(ctx, info)
}

// InfoFromContext extracts the request context from ctx, if present.
func InfoFromContext(ctx context.Context) (ErrorInfo, bool) {
	return telemetry.InfoFromContext(ctx)
}

// Registry owns the named circuit breakers of a process and routes
// logged errors to the telemetry sink and the error monitor. All methods
// are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*breaker.Breaker

	breakerOpts []breaker.Option
	sink        telemetry.Sink
	monitor     *monitor.Monitor
	logger      *slog.Logger
	tracer      trace.Tracer
}

// Option configures a Registry.
type Option func(*Registry)

// WithSink sets the telemetry sink logged errors are forwarded to.
// Defaults to [telemetry.NopSink].
func WithSink(s telemetry.Sink) Option {
	return func(r *Registry) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithMonitor attaches the error monitor every logged error is recorded
// on.
func WithMonitor(m *monitor.Monitor) Option {
	return func(r *Registry) {
		r.monitor = m
	}
}

// WithLogger sets the registry's logger. It is also handed to breakers
// the registry creates.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithBreakerOptions sets the options applied to every breaker the
// registry creates lazily.
func WithBreakerOptions(opts ...breaker.Option) Option {
	return func(r *Registry) {
		r.breakerOpts = opts
	}
}

// New creates an empty registry. Breakers are created on first lookup.
func New(opts ...Option) *Registry {
	r := &Registry{
		breakers: make(map[string]*breaker.Breaker),
		sink:     telemetry.NopSink{},
		logger:   slog.Default(),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Breaker returns the circuit breaker guarding the named resource,
// creating it on first lookup. Every call with the same name returns the
// same breaker.
func (r *Registry) Breaker(name string) *breaker.Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.breakers[name]
	if !ok {
		opts := append([]breaker.Option{breaker.WithLogger(r.logger)}, r.breakerOpts...)
		b = breaker.New(name, opts...)
		r.breakers[name] = b
		r.logger.Debug("registry: breaker created", "resource", name)
	}
	return b
}

// Execute runs op through the breaker guarding the named resource,
// wrapped in a span. The operation's error is returned unchanged; an
// open breaker rejects with [sserr.CodeCircuitOpen] before op runs.
func (r *Registry) Execute(ctx context.Context, resource string, op func(context.Context) error) error {
	ctx, span := r.startSpan(ctx, "Execute", resource)
	err := r.Breaker(resource).Execute(ctx, op)
	finishSpan(span, err)
	return err
}

// Run executes fn through the named resource's breaker and returns its
// value. It is the generic companion to [Registry.Execute] for
// operations that produce a result.
func Run[T any](ctx context.Context, r *Registry, resource string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := r.Execute(ctx, resource, func(ctx context.Context) error {
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

// Log converts err to a structured error, forwards it to the telemetry
// sink, records it on the monitor, and writes a log line at the level
// implied by the error's severity. When info is zero, the request
// context carried by ctx (via [ContextWithInfo]) is used instead.
// Returns the structured error; a nil err returns nil.
func (r *Registry) Log(ctx context.Context, err error, info ErrorInfo) *sserr.Error {
	if err == nil {
		return nil
	}
	e := sserr.FromError(err)
	if info.IsZero() {
		if fromCtx, ok := telemetry.InfoFromContext(ctx); ok {
			info = fromCtx
		}
	}
	severity := e.Severity()

	attrs := []slog.Attr{
		slog.String("error_id", e.ID),
		slog.String("category", string(e.Category)),
		slog.String("severity", string(severity)),
		slog.String("code", string(e.Code)),
		slog.String("message", e.Message),
	}
	if info.Operation != "" {
		attrs = append(attrs, slog.String("operation", info.Operation))
	}
	if info.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", info.RequestID))
	}
	r.logger.LogAttrs(ctx, telemetry.LevelFor(severity), "registry: error recorded", attrs...)

	r.sink.Record(ctx, telemetry.Event{Error: e, Info: info})
	if r.monitor != nil {
		r.monitor.Record(ctx, e, info)
	}
	return e
}

// BreakerStates returns a point-in-time snapshot of every breaker the
// registry has created, keyed by resource name.
func (r *Registry) BreakerStates() map[string]breaker.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]breaker.Status, len(r.breakers))
	for name, b := range r.breakers {
		out[name] = b.Snapshot()
	}
	return out
}

// startSpan creates a new OpenTelemetry span for a registry operation.
// Returns the updated context and span.
func (r *Registry) startSpan(ctx context.Context, operationName, resource string) (context.Context, trace.Span) {
	ctx, span := r.tracer.Start(ctx, "registry."+operationName,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("reliability.resource", resource),
	)
	return ctx, span
}

// finishSpan records an error on the span (if any) and ends it. If err is
// nil, the span status is set to OK.
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
