// Package errors provides the structured error model used across the
// reliability toolkit. It defines a closed set of error categories, the
// severity each category implies, machine-readable error codes, and helper
// functions for creating, wrapping, and inspecting errors.
//
// # Error Categories
//
// Every error belongs to exactly one of thirteen categories covering the
// common failure domains:
//
//   - network, timeout, rate-limit: transient conditions, low severity
//   - validation, client-error, not-found, business-logic: request-side
//     failures, medium severity
//   - server-error, dependency-failure, external-service: service-side
//     failures, medium severity
//   - authentication, authorization, configuration: security and setup
//     failures, high severity
//
// Severity is always derived from the category and never stored, so the
// two can never disagree.
//
// # Error Codes
//
// Each error also carries a machine-readable code (e.g., "NET_001") for
// error tracking, alerting, and client-side handling. Codes follow the
// pattern PREFIX_XXX where PREFIX identifies the category and XXX is a
// numeric code.
//
// # Usage
//
// Create a new error with a category factory:
//
//	err := errors.Validation("email address is invalid")
//
// Wrap an existing error:
//
//	err := errors.Wrap(err, errors.CategoryExternalService, "failed to deliver webhook")
//
// Classify an unknown error at a boundary:
//
//	structured := errors.FromError(err)
//
// Check error categories and flags:
//
//	if errors.IsRetryable(err) {
//	    // schedule another attempt
//	}
//
// Produce a transport-safe payload:
//
//	resp := errors.ResponseFor(err, false)
package errors
