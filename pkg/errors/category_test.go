package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_Severity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		category Category
		want     Severity
	}{
		{"authentication is high", CategoryAuthentication, SeverityHigh},
		{"authorization is high", CategoryAuthorization, SeverityHigh},
		{"configuration is high", CategoryConfiguration, SeverityHigh},
		{"server error is medium", CategoryServerError, SeverityMedium},
		{"dependency failure is medium", CategoryDependencyFailure, SeverityMedium},
		{"external service is medium", CategoryExternalService, SeverityMedium},
		{"network is low", CategoryNetwork, SeverityLow},
		{"timeout is low", CategoryTimeout, SeverityLow},
		{"rate limit is low", CategoryRateLimit, SeverityLow},
		{"validation is medium", CategoryValidation, SeverityMedium},
		{"client error is medium", CategoryClientError, SeverityMedium},
		{"not found is medium", CategoryNotFound, SeverityMedium},
		{"business logic is medium", CategoryBusinessLogic, SeverityMedium},
		{"unknown is medium", Category("mystery"), SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.category.Severity())
		})
	}
}

func TestCategory_Severity_NeverCritical(t *testing.T) {
	t.Parallel()
	// The derivation is a pure function of the closed category set and no
	// category maps to critical.
	for _, c := range Categories() {
		assert.NotEqual(t, SeverityCritical, c.Severity(), "category %q derived critical severity", c)
	}
}

func TestCategory_Valid(t *testing.T) {
	t.Parallel()
	for _, c := range Categories() {
		assert.True(t, c.Valid(), "category %q should be valid", c)
	}

	assert.False(t, Category("").Valid())
	assert.False(t, Category("unknown").Valid())
	assert.False(t, Category("NETWORK").Valid(), "categories are case sensitive")
}

func TestCategories_ClosedSet(t *testing.T) {
	t.Parallel()
	got := Categories()
	assert.Len(t, got, 13)

	// The returned slice is a copy; mutating it must not affect the set.
	got[0] = Category("tampered")
	assert.True(t, CategoryNetwork.Valid())
	assert.Equal(t, CategoryNetwork, Categories()[0])
}

func TestCategory_HTTPStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		category Category
		want     int
	}{
		{CategoryNetwork, http.StatusServiceUnavailable},
		{CategoryValidation, http.StatusBadRequest},
		{CategoryAuthentication, http.StatusUnauthorized},
		{CategoryAuthorization, http.StatusForbidden},
		{CategoryNotFound, http.StatusNotFound},
		{CategoryServerError, http.StatusInternalServerError},
		{CategoryClientError, http.StatusBadRequest},
		{CategoryTimeout, http.StatusGatewayTimeout},
		{CategoryRateLimit, http.StatusTooManyRequests},
		{CategoryDependencyFailure, http.StatusBadGateway},
		{CategoryConfiguration, http.StatusInternalServerError},
		{CategoryBusinessLogic, http.StatusUnprocessableEntity},
		{CategoryExternalService, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.category.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.category.HTTPStatus())
		})
	}
}

func TestCategory_String(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "dependency-failure", CategoryDependencyFailure.String())
	assert.Equal(t, "not-found", CategoryNotFound.String())
}
