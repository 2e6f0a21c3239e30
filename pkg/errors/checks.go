package errors

import (
	"errors"
)

// AsError extracts the *Error from anywhere in err's chain using
// errors.As. It returns the Error and true on success, nil and false
// when the chain holds no structured error.
//
// Example:
//
//	if e, ok := errors.AsError(err); ok {
//	    logger.Warn("operation failed", "error_id", e.ID, "category", e.Category)
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCategory returns the category from an error.
// If the error is not an *Error or is nil, returns an empty category.
//
// Example:
//
//	if errors.GetCategory(err) == errors.CategoryRateLimit {
//	    // back off before calling again
//	}
func GetCategory(err error) Category {
	if e, ok := AsError(err); ok {
		return e.Category
	}
	return ""
}

// GetSeverity returns the severity from an error.
// If the error is not an *Error or is nil, returns an empty severity.
func GetSeverity(err error) Severity {
	if e, ok := AsError(err); ok {
		return e.Severity()
	}
	return ""
}

// GetCode returns the machine code from an error, or an empty Code when
// err is nil or carries no *Error.
//
// Example:
//
//	switch errors.GetCode(err) {
//	case errors.CodeCircuitOpen:
//	    // breaker rejection, not a new dependency failure
//	}
func GetCode(err error) Code {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// HasCode checks if an error has the specified machine code.
// Returns false if the error is nil or not an *Error.
//
// Example:
//
//	if errors.HasCode(err, errors.CodeValidationRequired) {
//	    // point at the missing field
//	}
func HasCode(err error, code Code) bool {
	return GetCode(err) == code
}

// IsCategory checks if an error belongs to the specified category.
// Returns false if the error is nil or not an *Error.
//
// Example:
//
//	if errors.IsCategory(err, errors.CategoryBusinessLogic) {
//	    // surface the rule violation to the user
//	}
func IsCategory(err error, category Category) bool {
	return GetCategory(err) == category
}

// IsNetwork checks if the error is a network error.
func IsNetwork(err error) bool {
	return IsCategory(err, CategoryNetwork)
}

// IsValidation checks if the error is a validation error.
//
// Example:
//
//	if errors.IsValidation(err) {
//	    // return 400 Bad Request
//	}
func IsValidation(err error) bool {
	return IsCategory(err, CategoryValidation)
}

// IsAuthentication checks if the error is an authentication error.
//
// Example:
//
//	if errors.IsAuthentication(err) {
//	    // return 401 Unauthorized
//	}
func IsAuthentication(err error) bool {
	return IsCategory(err, CategoryAuthentication)
}

// IsAuthorization checks if the error is an authorization error.
//
// Example:
//
//	if errors.IsAuthorization(err) {
//	    // return 403 Forbidden
//	}
func IsAuthorization(err error) bool {
	return IsCategory(err, CategoryAuthorization)
}

// IsNotFound checks if the error is a not found error.
//
// Example:
//
//	if errors.IsNotFound(err) {
//	    // return 404 Not Found
//	}
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}

// IsTimeout checks if the error is a timeout error.
//
// Example:
//
//	if errors.IsTimeout(err) {
//	    // return 504 Gateway Timeout
//	}
func IsTimeout(err error) bool {
	return IsCategory(err, CategoryTimeout)
}

// IsRateLimited checks if the error is a rate limit error.
//
// Example:
//
//	if errors.IsRateLimited(err) {
//	    // honor Retry-After before the next attempt
//	}
func IsRateLimited(err error) bool {
	return IsCategory(err, CategoryRateLimit)
}

// IsDependencyFailure checks if the error is a dependency failure.
func IsDependencyFailure(err error) bool {
	return IsCategory(err, CategoryDependencyFailure)
}

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	return IsCategory(err, CategoryConfiguration)
}

// IsBusinessLogic checks if the error is a business logic error.
func IsBusinessLogic(err error) bool {
	return IsCategory(err, CategoryBusinessLogic)
}

// IsExternalService checks if the error is an external service error.
func IsExternalService(err error) bool {
	return IsCategory(err, CategoryExternalService)
}

// IsCircuitOpen checks if the error is a circuit breaker rejection,
// i.e. the guarded operation was never executed because its breaker was
// open. Rejections carry the dedicated code SRV_002 so callers can tell
// protective rejection apart from a genuine server failure.
//
// Example:
//
//	if errors.IsCircuitOpen(err) {
//	    // dependency is cooling down, do not count as a new failure
//	}
func IsCircuitOpen(err error) bool {
	return HasCode(err, CodeCircuitOpen)
}

// IsRetryable checks if the error is marked retryable.
// Returns false if the error is nil or not an *Error.
//
// Example:
//
//	if errors.IsRetryable(err) {
//	    // implement retry with backoff
//	}
func IsRetryable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Retryable
}

// IsRecoverable checks if the error is marked recoverable.
// Returns false if the error is nil or not an *Error.
//
// Example:
//
//	if !errors.IsRecoverable(err) {
//	    // escalate instead of waiting for self-healing
//	}
func IsRecoverable(err error) bool {
	e, ok := AsError(err)
	return ok && e.Recoverable
}

// IsClientError checks if the error maps to a 4xx HTTP status.
//
// Example:
//
//	if errors.IsClientError(err) {
//	    // error is due to the request, not a server issue
//	}
func IsClientError(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	status := e.HTTPStatus()
	return status >= 400 && status < 500
}

// IsServerError checks if the error maps to a 5xx HTTP status.
//
// Example:
//
//	if errors.IsServerError(err) {
//	    // error is due to a server issue, may need alerting
//	}
func IsServerError(err error) bool {
	e, ok := AsError(err)
	if !ok {
		return false
	}
	return e.HTTPStatus() >= 500
}
