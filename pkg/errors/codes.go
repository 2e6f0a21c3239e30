package errors

// Code represents a machine-readable error code identifying a specific
// error condition within a category. Error codes follow the pattern
// PREFIX_XXX where PREFIX is a short category identifier (e.g., NET, VAL)
// and XXX is a three-digit numeric code.
//
// Error codes are designed to be:
//   - Stable: Codes do not change once assigned
//   - Unique: Each error condition has a distinct code
//   - Searchable: Codes can be used to find documentation and solutions
//   - Machine-readable: Suitable for automated error handling
type Code string

// Error code prefixes and the categories they belong to:
//
//	NET_xxx     - network
//	VAL_xxx     - validation
//	AUTH_xxx    - authentication
//	AUTHZ_xxx   - authorization
//	NF_xxx      - not-found
//	SRV_xxx     - server-error
//	CLI_xxx     - client-error
//	TIMEOUT_xxx - timeout
//	RATE_xxx    - rate-limit
//	DEP_xxx     - dependency-failure
//	CFG_xxx     - configuration
//	BIZ_xxx     - business-logic
//	EXT_xxx     - external-service
const (
	// Network errors (NET_xxx)

	// CodeNetwork indicates a general network failure.
	CodeNetwork Code = "NET_001"

	// CodeNetworkConnection indicates a connection could not be established.
	CodeNetworkConnection Code = "NET_002"

	// Validation errors (VAL_xxx)

	// CodeValidation indicates a general validation failure.
	CodeValidation Code = "VAL_001"

	// CodeValidationRequired indicates a required field is missing.
	CodeValidationRequired Code = "VAL_002"

	// CodeValidationFormat indicates a field has an invalid format.
	CodeValidationFormat Code = "VAL_003"

	// Authentication errors (AUTH_xxx)

	// CodeAuthentication indicates a general authentication failure.
	CodeAuthentication Code = "AUTH_001"

	// CodeAuthenticationExpired indicates credentials have expired.
	CodeAuthenticationExpired Code = "AUTH_002"

	// Authorization errors (AUTHZ_xxx)

	// CodeAuthorization indicates a general authorization failure.
	CodeAuthorization Code = "AUTHZ_001"

	// Not found errors (NF_xxx)

	// CodeNotFound indicates a general not found error.
	CodeNotFound Code = "NF_001"

	// CodeNotFoundResource indicates a specific resource was not found.
	CodeNotFoundResource Code = "NF_002"

	// Server errors (SRV_xxx)

	// CodeServerError indicates a general internal failure.
	CodeServerError Code = "SRV_001"

	// CodeCircuitOpen indicates a circuit breaker rejected the call
	// without executing it. Errors carrying this code are protective
	// rejections, not evidence that the operation itself failed.
	CodeCircuitOpen Code = "SRV_002"

	// CodeWrapped indicates an unclassified error that was wrapped at a
	// system boundary.
	CodeWrapped Code = "SRV_003"

	// Client errors (CLI_xxx)

	// CodeClientError indicates a general client-side request error.
	CodeClientError Code = "CLI_001"

	// Timeout errors (TIMEOUT_xxx)

	// CodeTimeout indicates a general timeout.
	CodeTimeout Code = "TIMEOUT_001"

	// CodeTimeoutDependency indicates a call to a dependency timed out.
	CodeTimeoutDependency Code = "TIMEOUT_002"

	// Rate limit errors (RATE_xxx)

	// CodeRateLimited indicates the caller exceeded a usage quota.
	CodeRateLimited Code = "RATE_001"

	// Dependency errors (DEP_xxx)

	// CodeDependencyFailure indicates a downstream dependency failed.
	CodeDependencyFailure Code = "DEP_001"

	// Configuration errors (CFG_xxx)

	// CodeConfiguration indicates invalid or missing configuration.
	CodeConfiguration Code = "CFG_001"

	// Business logic errors (BIZ_xxx)

	// CodeBusinessLogic indicates a domain rule was violated.
	CodeBusinessLogic Code = "BIZ_001"

	// External service errors (EXT_xxx)

	// CodeExternalService indicates a third-party service failed.
	CodeExternalService Code = "EXT_001"
)

// defaultCodes maps each category to the code its factory assigns when the
// caller does not pick a more specific one.
var defaultCodes = map[Category]Code{
	CategoryNetwork:           CodeNetwork,
	CategoryValidation:        CodeValidation,
	CategoryAuthentication:    CodeAuthentication,
	CategoryAuthorization:     CodeAuthorization,
	CategoryNotFound:          CodeNotFound,
	CategoryServerError:       CodeServerError,
	CategoryClientError:       CodeClientError,
	CategoryTimeout:           CodeTimeout,
	CategoryRateLimit:         CodeRateLimited,
	CategoryDependencyFailure: CodeDependencyFailure,
	CategoryConfiguration:     CodeConfiguration,
	CategoryBusinessLogic:     CodeBusinessLogic,
	CategoryExternalService:   CodeExternalService,
}

// DefaultCode returns the default machine code for a category. Unknown
// categories fall back to CodeServerError.
func DefaultCode(c Category) Code {
	if code, ok := defaultCodes[c]; ok {
		return code
	}
	return CodeServerError
}

// String returns the string representation of the error code.
func (c Code) String() string {
	return string(c)
}
