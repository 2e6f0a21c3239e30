// Package testutil provides shared test helpers for the reliability SDK.
//
// Helpers take [testing.TB] so they work from tests and benchmarks alike.
// Require* helpers stop the test on failure (testify require); Assert*
// helpers record the failure and keep going (testify assert).
//
// Every helper calls t.Helper(), so failures report the caller's line,
// not this package's.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// RequireNoError halts the test if err is non-nil. Use it for setup
// steps the rest of the test depends on.
func RequireNoError(t testing.TB, err error, msgAndArgs ...any) {
	t.Helper()
	require.NoError(t, err, msgAndArgs...)
}

// RequireError halts the test if err is nil. Use it when later
// assertions inspect the error.
func RequireError(t testing.TB, err error, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
}

// RequireErrorCategory halts the test if err is nil, is not an
// *sserr.Error, or does not carry the expected category. This is the
// primary helper for validating structured error classification.
//
// Example:
//
//	err := policy.Validate()
//	testutil.RequireErrorCategory(t, err, sserr.CategoryConfiguration)
func RequireErrorCategory(t testing.TB, err error, category sserr.Category, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	ssErr, ok := sserr.AsError(err)
	require.True(t, ok, "expected *sserr.Error, got %T: %v", err, err)
	require.Equal(t, category, ssErr.Category,
		"error category mismatch: got %q, want %q (message: %s)",
		ssErr.Category, category, ssErr.Message)
}

// AssertErrorCategory records a test failure (without halting) if err is
// nil, is not an *sserr.Error, or does not carry the expected category.
// Use this in table-driven tests where you want to check all rows.
func AssertErrorCategory(t testing.TB, err error, category sserr.Category, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	ssErr, ok := sserr.AsError(err)
	if !assert.True(t, ok, "expected *sserr.Error, got %T: %v", err, err) {
		return false
	}
	return assert.Equal(t, category, ssErr.Category,
		"error category mismatch: got %q, want %q (message: %s)",
		ssErr.Category, category, ssErr.Message)
}

// RequireErrorCode halts the test if err is nil, is not an *sserr.Error,
// or does not carry the expected machine code.
//
// Example:
//
//	err := b.Execute(ctx, op)
//	testutil.RequireErrorCode(t, err, sserr.CodeCircuitOpen)
func RequireErrorCode(t testing.TB, err error, code sserr.Code, msgAndArgs ...any) {
	t.Helper()
	require.Error(t, err, msgAndArgs...)
	ssErr, ok := sserr.AsError(err)
	require.True(t, ok, "expected *sserr.Error, got %T: %v", err, err)
	require.Equal(t, code, ssErr.Code,
		"error code mismatch: got %q, want %q (message: %s)",
		ssErr.Code, code, ssErr.Message)
}

// AssertErrorCode records a test failure (without halting) if err is nil,
// is not an *sserr.Error, or does not carry the expected machine code.
func AssertErrorCode(t testing.TB, err error, code sserr.Code, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	ssErr, ok := sserr.AsError(err)
	if !assert.True(t, ok, "expected *sserr.Error, got %T: %v", err, err) {
		return false
	}
	return assert.Equal(t, code, ssErr.Code,
		"error code mismatch: got %q, want %q (message: %s)",
		ssErr.Code, code, ssErr.Message)
}

// AssertNoSSError records a test failure if err is non-nil and is an
// *sserr.Error, printing the category, code, and message for diagnostics.
func AssertNoSSError(t testing.TB, err error) bool {
	t.Helper()
	if err == nil {
		return true
	}
	if ssErr, ok := sserr.AsError(err); ok {
		return assert.Fail(t,
			"unexpected sserr.Error",
			"category=%s code=%s message=%s", ssErr.Category, ssErr.Code, ssErr.Message)
	}
	return assert.NoError(t, err)
}

// TempConfigFile writes content to a file named "config"+ext (e.g.,
// ".yaml", ".json") inside t.TempDir() and returns its path. The temp
// directory is removed when the test finishes. Mode 0600.
func TempConfigFile(t testing.TB, content, ext string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config"+ext)
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err, "write temp config file %s", path)
	return path
}

// TempFile writes content to a file with the given name inside
// t.TempDir() and returns its path.
func TempFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err, "write temp file %s", path)
	return path
}

// SetEnv sets an environment variable for the duration of the test and
// restores the prior state (value or absence) on cleanup. Unlike
// t.Setenv, it works with testing.TB, so benchmarks can use it too.
//
// Not safe under t.Parallel() unless every parallel test touches a
// distinct variable.
func SetEnv(t testing.TB, key, value string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	err := os.Setenv(key, value)
	require.NoError(t, err, "set env var %s", key)
	t.Cleanup(func() {
		if existed {
			_ = os.Setenv(key, prev)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

// UnsetEnv removes an environment variable for the duration of the test
// and restores the prior value (if any) on cleanup.
func UnsetEnv(t testing.TB, key string) {
	t.Helper()
	prev, existed := os.LookupEnv(key)
	err := os.Unsetenv(key)
	require.NoError(t, err, "unset env var %s", key)
	t.Cleanup(func() {
		if existed {
			_ = os.Setenv(key, prev)
		}
	})
}

// AssertJSONContains marshals v and asserts the JSON output contains the
// expected substring. Handy for checking that a field survives
// serialization.
func AssertJSONContains(t testing.TB, v any, expected string) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "json.Marshal failed")
	assert.Contains(t, string(data), expected,
		"expected JSON to contain %q, got: %s", expected, string(data))
}

// AssertJSONNotContains marshals v and asserts the JSON output does not
// contain the given substring. The redaction tests use this to prove
// secrets never reach serialized form.
func AssertJSONNotContains(t testing.TB, v any, unexpected string) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err, "json.Marshal failed")
	assert.NotContains(t, string(data), unexpected,
		"expected JSON to NOT contain %q, got: %s", unexpected, string(data))
}
