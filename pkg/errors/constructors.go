package errors

import (
	"errors"
	"fmt"
	"time"
)

// newError builds an Error with the invariants every constructor
// maintains: a fresh time-ordered ID, a UTC creation timestamp, the
// status implied by the category, recoverable defaulted to true, and
// retryable defaulted to false.
func newError(category Category, code Code, message string, cause error) *Error {
	return &Error{
		ID:          newID(),
		Category:    category,
		Code:        code,
		Message:     message,
		Status:      category.HTTPStatus(),
		Cause:       cause,
		CreatedAt:   time.Now().UTC(),
		Recoverable: true,
		Retryable:   false,
	}
}

// New creates a new Error with the specified category and message, using
// the category's default machine code.
//
// Example:
//
//	err := errors.New(errors.CategoryValidation, "email address is required")
func New(category Category, message string) *Error {
	return newError(category, DefaultCode(category), message, nil)
}

// Newf creates a new Error with the specified category and formatted
// message.
//
// Example:
//
//	err := errors.Newf(errors.CategoryNotFound, "error event %q not found", eventID)
func Newf(category Category, format string, args ...any) *Error {
	return New(category, fmt.Sprintf(format, args...))
}

// NewWithCode creates a new Error with an explicit machine code. Use this
// when a condition has its own code within the category.
//
// Example:
//
//	err := errors.NewWithCode(errors.CategoryValidation, errors.CodeValidationRequired, "name is required")
func NewWithCode(category Category, code Code, message string) *Error {
	return newError(category, code, message, nil)
}

// Wrap wraps an existing error with a category and message. The wrapped
// error becomes the Cause of the new error. If err is nil, Wrap returns
// nil.
//
// Example:
//
//	data, err := client.Fetch(ctx, url)
//	if err != nil {
//	    return errors.Wrap(err, errors.CategoryExternalService, "failed to deliver webhook")
//	}
func Wrap(err error, category Category, message string) *Error {
	if err == nil {
		return nil
	}
	return newError(category, DefaultCode(category), message, err)
}

// Wrapf wraps an existing error with a formatted message.
// If err is nil, Wrapf returns nil.
//
// Example:
//
//	err := errors.Wrapf(err, errors.CategoryDependencyFailure, "lookup for %q failed", key)
func Wrapf(err error, category Category, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, category, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an existing error with an explicit machine code.
// If err is nil, WrapWithCode returns nil.
//
// Example:
//
//	err := errors.WrapWithCode(err, errors.CategoryTimeout, errors.CodeTimeoutDependency, "index lookup timed out")
func WrapWithCode(err error, category Category, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return newError(category, code, message, err)
}

// NetworkError creates a new network error. Network failures are
// transient, so the error is marked retryable.
//
// Example:
//
//	err := errors.NetworkError("connection refused", dialErr)
func NetworkError(message string, cause error) *Error {
	e := newError(CategoryNetwork, CodeNetwork, message, cause)
	e.Retryable = true
	return e
}

// Validation creates a new validation error. Validation failures are
// never retryable: the same input will fail the same rules.
//
// Example:
//
//	err := errors.Validation("email address is invalid")
func Validation(message string) *Error {
	return New(CategoryValidation, message)
}

// Validationf creates a new validation error with a formatted message.
//
// Example:
//
//	err := errors.Validationf("field %q must be at least %d characters", field, minLen)
func Validationf(format string, args ...any) *Error {
	return Newf(CategoryValidation, format, args...)
}

// Unauthorized creates a new authentication error: credentials are
// missing, expired, or failed verification.
//
// Example:
//
//	err := errors.Unauthorized("diagnostic API token expired")
func Unauthorized(message string) *Error {
	return New(CategoryAuthentication, message)
}

// Forbidden creates a new authorization error: the caller is known but
// not allowed to perform the action.
//
// Example:
//
//	err := errors.Forbidden("caller may not resolve incidents for this service")
func Forbidden(message string) *Error {
	return New(CategoryAuthorization, message)
}

// NotFound creates a new not found error for the named resource.
//
// Example:
//
//	err := errors.NotFound("alert rule")
func NotFound(resource string) *Error {
	e := newError(CategoryNotFound, CodeNotFoundResource, fmt.Sprintf("%s not found", resource), nil)
	e.Context = map[string]any{"resource": resource}
	return e
}

// NotFoundf creates a new not found error with a formatted message.
//
// Example:
//
//	err := errors.NotFoundf("error event %q not found", eventID)
func NotFoundf(format string, args ...any) *Error {
	return Newf(CategoryNotFound, format, args...)
}

// ServerError creates a new internal server error.
// Use this for unexpected system failures that should not expose details
// to users.
//
// Example:
//
//	err := errors.ServerError("an unexpected error occurred")
func ServerError(message string) *Error {
	return New(CategoryServerError, message)
}

// ServerErrorf creates a new internal server error with a formatted
// message.
//
// Example:
//
//	err := errors.ServerErrorf("failed to render report: %v", underlyingErr)
func ServerErrorf(format string, args ...any) *Error {
	return Newf(CategoryServerError, format, args...)
}

// ClientError creates a new client error.
// Use this when a request is malformed in a way validation rules do not
// cover.
//
// Example:
//
//	err := errors.ClientError("request body is not valid JSON")
func ClientError(message string) *Error {
	return New(CategoryClientError, message)
}

// Timeout creates a new timeout error. Timeouts are transient, so the
// error is marked retryable.
//
// Example:
//
//	err := errors.Timeout("billing: charge timed out after 2s")
func Timeout(message string) *Error {
	e := New(CategoryTimeout, message)
	e.Retryable = true
	return e
}

// RateLimited creates a new rate limit error. Rate-limited calls are
// always retryable and always recoverable: the quota refills on its own.
//
// Example:
//
//	err := errors.RateLimited("webhook endpoint quota exceeded")
func RateLimited(message string) *Error {
	e := New(CategoryRateLimit, message)
	e.Retryable = true
	e.Recoverable = true
	return e
}

// DependencyFailure creates a new dependency failure error for the named
// downstream component.
//
// Example:
//
//	err := errors.DependencyFailure("search-index", indexErr)
func DependencyFailure(dependency string, cause error) *Error {
	e := newError(CategoryDependencyFailure, CodeDependencyFailure,
		fmt.Sprintf("dependency %q failed", dependency), cause)
	e.Context = map[string]any{"dependency": dependency}
	return e
}

// Configuration creates a new configuration error.
//
// Example:
//
//	err := errors.Configuration("alert cooldown must be positive")
func Configuration(message string) *Error {
	return New(CategoryConfiguration, message)
}

// BusinessLogic creates a new business logic error.
// Use this when an operation violates a domain rule.
//
// Example:
//
//	err := errors.BusinessLogic("cannot resolve an incident that is already resolved")
func BusinessLogic(message string) *Error {
	return New(CategoryBusinessLogic, message)
}

// ExternalService creates a new external service error for the named
// third-party service.
//
// Example:
//
//	err := errors.ExternalService("payment-gateway", respErr)
func ExternalService(service string, cause error) *Error {
	e := newError(CategoryExternalService, CodeExternalService,
		fmt.Sprintf("external service %q failed", service), cause)
	e.Context = map[string]any{"service": service}
	return e
}

// WithRetryable returns a copy of the error with the retryable flag set.
// The original error is not modified.
func (e *Error) WithRetryable(retryable bool) *Error {
	out := e.clone()
	out.Retryable = retryable
	return out
}

// WithRecoverable returns a copy of the error with the recoverable flag
// set. The original error is not modified.
func (e *Error) WithRecoverable(recoverable bool) *Error {
	out := e.clone()
	out.Recoverable = recoverable
	return out
}

// FromError converts a standard error to an *Error.
// If the error is already an *Error anywhere in its chain, that error is
// returned as-is. Otherwise it is wrapped as a server error: category
// server-error, code SRV_003, non-retryable, non-recoverable, with the
// original preserved as the cause and its text kept as the message.
//
// Example:
//
//	structured := errors.FromError(err)
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	wrapped := newError(CategoryServerError, CodeWrapped, err.Error(), err)
	wrapped.Recoverable = false
	return wrapped
}
