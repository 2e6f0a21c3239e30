package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// contextKey is an unexported type used for context keys in this package.
// Using a distinct type prevents collisions with keys from other packages.
type contextKey int

const (
	// infoKey stores the request-scoped ErrorInfo in the context.
	infoKey contextKey = iota
)

// ErrorInfo is the request-scoped context attached to recorded errors.
// HTTP middleware and RPC interceptors populate it once per request;
// everything recorded during that request carries it automatically.
//
// All fields are optional. The zero value is a valid, empty ErrorInfo.
type ErrorInfo struct {
	// Method is the HTTP method or RPC verb of the failing request.
	Method string `json:"method,omitempty"`

	// Path is the request path or RPC route.
	Path string `json:"path,omitempty"`

	// UserAgent identifies the client software.
	UserAgent string `json:"user_agent,omitempty"`

	// ClientIP is the remote address the request arrived from.
	ClientIP string `json:"client_ip,omitempty"`

	// RequestID correlates the error with a single request.
	RequestID string `json:"request_id,omitempty"`

	// UserID identifies the authenticated principal, when known.
	UserID string `json:"user_id,omitempty"`

	// SessionID identifies the client session, when known.
	SessionID string `json:"session_id,omitempty"`

	// Operation names the logical operation that failed, e.g.
	// "orders.checkout". Useful when one request spans several
	// operations.
	Operation string `json:"operation,omitempty"`

	// DurationMS is how long the failing operation ran, in milliseconds.
	DurationMS int64 `json:"duration_ms,omitempty"`
}

// IsZero reports whether no field of the ErrorInfo is set.
func (i ErrorInfo) IsZero() bool {
	return i == ErrorInfo{}
}

// ContextWithInfo returns a new context with the given ErrorInfo attached.
// The info can later be retrieved with [InfoFromContext].
//
// This is typically called by HTTP middleware after it has extracted the
// request metadata, so that errors recorded deeper in the call stack are
// tagged with the request that triggered them.
func ContextWithInfo(ctx context.Context, info ErrorInfo) context.Context {
	return context.WithValue(ctx, infoKey, info)
}

// InfoFromContext retrieves the ErrorInfo from the context.
// Returns the info and true if present, or a zero ErrorInfo and false if
// none has been set.
//
// Example:
//
//	info, ok := telemetry.InfoFromContext(ctx)
//	if ok {
//	    log.Info("failing request", "path", info.Path, "request_id", info.RequestID)
//	}
func InfoFromContext(ctx context.Context) (ErrorInfo, bool) {
	info, ok := ctx.Value(infoKey).(ErrorInfo)
	return info, ok
}

// TraceIDFromContext extracts the OpenTelemetry trace ID from the context.
// Returns the trace ID as a hex string and true if a valid trace is active,
// or an empty string and false if no trace is present.
//
// This lets operators correlate recorded errors with distributed traces.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.HasTraceID() {
		return "", false
	}
	return spanCtx.TraceID().String(), true
}

// SpanIDFromContext extracts the OpenTelemetry span ID from the context.
// Returns the span ID as a hex string and true if a valid span is active,
// or an empty string and false if no span is present.
func SpanIDFromContext(ctx context.Context) (string, bool) {
	spanCtx := trace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.HasSpanID() {
		return "", false
	}
	return spanCtx.SpanID().String(), true
}
