package errors

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Error represents a structured error with a category, machine code,
// message, and optional cause. It implements the standard error interface
// and provides the classification downstream consumers key off: severity,
// HTTP status, retryability, and recoverability.
//
// Error is designed to be:
//   - Immutable: Fields are not modified after creation
//   - Identifiable: Every instance carries a unique, time-ordered ID
//   - Chainable: Supports error wrapping via the Cause field
//   - Structured: Provides machine-readable category, code, and status
//   - Loggable: Implements fmt.Formatter for detailed output
type Error struct {
	// ID uniquely identifies this error instance. IDs are UUIDv7 values,
	// time-ordered with a random tail, so concurrent creation cannot
	// collide and sorted IDs follow creation order.
	ID string

	// Category is the failure domain this error belongs to. It determines
	// the error's severity and default HTTP status.
	Category Category

	// Code is the machine-readable error code (e.g., "NET_001").
	Code Code

	// Message is the human-readable error message.
	// This message may be shown to end users and should not contain
	// sensitive information such as internal paths or credentials.
	Message string

	// Status is the HTTP-style status code for this error. Constructors
	// fill it from the category; a zero value falls back to the category
	// mapping in HTTPStatus.
	Status int

	// Cause is the underlying error that caused this error, if any.
	// Use Unwrap() to access the cause for error chain inspection.
	Cause error

	// Context contains additional structured data about the error, such
	// as field-level validation failures, resource identifiers, or
	// request metadata useful for debugging.
	Context map[string]any

	// CreatedAt records when the error was constructed, in UTC.
	CreatedAt time.Time

	// Recoverable reports whether the failing operation can eventually
	// succeed once the underlying condition clears. Constructors default
	// it to true; only unclassified errors wrapped at a boundary are
	// marked unrecoverable.
	Recoverable bool

	// Retryable reports whether an immediate retry of the same call is
	// worthwhile. Constructors default it to false; transient-failure
	// factories (network, timeout, rate-limit) set it to true.
	Retryable bool
}

// newID returns a unique, time-ordered error ID. UUIDv7 keeps IDs
// monotonic across instances; if the entropy source fails the ID falls
// back to a random UUIDv4 rather than propagating the failure.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Error implements the error interface, returning the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of this error, supporting
// errors.Unwrap() and errors.Is() from the standard library.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Severity returns the severity implied by the error's category.
// Severity is computed, never stored, so it cannot disagree with the
// category.
func (e *Error) Severity() Severity {
	return e.Category.Severity()
}

// HTTPStatus returns the HTTP status code for this error. The Status
// field wins when set; otherwise the category mapping applies.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Category.HTTPStatus()
}

// clone returns a copy of the error with its own context map.
func (e *Error) clone() *Error {
	out := *e
	out.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		out.Context[k] = v
	}
	return &out
}

// WithContext returns a new Error with a single context key-value pair
// added. The original error is not modified.
func (e *Error) WithContext(key string, value any) *Error {
	out := e.clone()
	out.Context[key] = value
	return out
}

// WithContextMap returns a new Error with the specified context entries
// added. The original error is not modified.
func (e *Error) WithContextMap(entries map[string]any) *Error {
	out := e.clone()
	for k, v := range entries {
		out.Context[k] = v
	}
	return out
}

// Format implements fmt.Formatter for detailed error output.
// Use %v for standard output, %+v for detailed output including the
// classification and cause chain.
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "Error{ID: %q, Category: %q, Code: %q, Severity: %q, Message: %q",
				e.ID, e.Category, e.Code, e.Severity(), e.Message)
			if len(e.Context) > 0 {
				fmt.Fprintf(s, ", Context: %v", e.Context)
			}
			if e.Cause != nil {
				fmt.Fprintf(s, ", Cause: %+v", e.Cause)
			}
			fmt.Fprint(s, "}")
			return
		}
		fallthrough
	case 's':
		fmt.Fprint(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}
