package errors

import "net/http"

// Category classifies an error into one of the failure domains recognized
// across the platform. The set of categories is closed: every error carries
// exactly one category, and downstream consumers (retry handlers, circuit
// breakers, monitors, alerting) key their behavior off this value.
//
// Categories are designed to be:
//   - Closed: No categories are added outside this package
//   - Stable: Category strings appear in logs, metrics labels, and API responses
//   - Behavioral: Each category implies a severity and an HTTP status
type Category string

const (
	// CategoryNetwork indicates a connectivity failure such as a refused
	// connection, DNS failure, or dropped socket.
	CategoryNetwork Category = "network"

	// CategoryValidation indicates input that failed validation rules.
	CategoryValidation Category = "validation"

	// CategoryAuthentication indicates missing or invalid credentials.
	CategoryAuthentication Category = "authentication"

	// CategoryAuthorization indicates the caller lacks permission.
	CategoryAuthorization Category = "authorization"

	// CategoryNotFound indicates a requested resource does not exist.
	CategoryNotFound Category = "not-found"

	// CategoryServerError indicates an unexpected internal failure.
	CategoryServerError Category = "server-error"

	// CategoryClientError indicates a malformed or unacceptable request.
	CategoryClientError Category = "client-error"

	// CategoryTimeout indicates an operation exceeded its time limit.
	CategoryTimeout Category = "timeout"

	// CategoryRateLimit indicates the caller exceeded a usage quota.
	CategoryRateLimit Category = "rate-limit"

	// CategoryDependencyFailure indicates a downstream component the
	// system depends on failed.
	CategoryDependencyFailure Category = "dependency-failure"

	// CategoryConfiguration indicates invalid or missing configuration.
	CategoryConfiguration Category = "configuration"

	// CategoryBusinessLogic indicates a domain rule was violated.
	CategoryBusinessLogic Category = "business-logic"

	// CategoryExternalService indicates a third-party service failed.
	CategoryExternalService Category = "external-service"
)

// categories lists every valid Category. Order is stable and used by
// Categories and by consumers that iterate the full set (metrics
// initialization, configuration validation).
var categories = []Category{
	CategoryNetwork,
	CategoryValidation,
	CategoryAuthentication,
	CategoryAuthorization,
	CategoryNotFound,
	CategoryServerError,
	CategoryClientError,
	CategoryTimeout,
	CategoryRateLimit,
	CategoryDependencyFailure,
	CategoryConfiguration,
	CategoryBusinessLogic,
	CategoryExternalService,
}

// Categories returns the closed set of valid categories in stable order.
// The returned slice is a copy and may be modified by the caller.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether the category is a member of the closed set.
func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Severity returns the severity implied by the category. The mapping is a
// pure function: severity is never stored on an error and can never
// disagree with the category.
//
//   - authentication, authorization, configuration: SeverityHigh
//   - server-error, dependency-failure, external-service: SeverityMedium
//   - network, timeout, rate-limit: SeverityLow
//   - everything else: SeverityMedium
//
// No category maps to SeverityCritical; that level is reserved for
// consumers (such as monitor thresholds) that cover the full severity set.
func (c Category) Severity() Severity {
	switch c {
	case CategoryAuthentication, CategoryAuthorization, CategoryConfiguration:
		return SeverityHigh
	case CategoryServerError, CategoryDependencyFailure, CategoryExternalService:
		return SeverityMedium
	case CategoryNetwork, CategoryTimeout, CategoryRateLimit:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// HTTPStatus returns the HTTP status code implied by the category.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryNetwork:
		return http.StatusServiceUnavailable
	case CategoryValidation:
		return http.StatusBadRequest
	case CategoryAuthentication:
		return http.StatusUnauthorized
	case CategoryAuthorization:
		return http.StatusForbidden
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryServerError:
		return http.StatusInternalServerError
	case CategoryClientError:
		return http.StatusBadRequest
	case CategoryTimeout:
		return http.StatusGatewayTimeout
	case CategoryRateLimit:
		return http.StatusTooManyRequests
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryConfiguration:
		return http.StatusInternalServerError
	case CategoryBusinessLogic:
		return http.StatusUnprocessableEntity
	case CategoryExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
