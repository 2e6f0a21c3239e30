package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverity_Level(t *testing.T) {
	t.Parallel()
	tests := []struct {
		severity Severity
		want     int
	}{
		{SeverityLow, 1},
		{SeverityMedium, 2},
		{SeverityHigh, 3},
		{SeverityCritical, 4},
		{Severity("unknown"), 0},
		{Severity(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.severity.Level())
		})
	}
}

func TestSeverity_Level_Ordering(t *testing.T) {
	t.Parallel()
	assert.Less(t, SeverityLow.Level(), SeverityMedium.Level())
	assert.Less(t, SeverityMedium.Level(), SeverityHigh.Level())
	assert.Less(t, SeverityHigh.Level(), SeverityCritical.Level())
}

func TestSeverity_Valid(t *testing.T) {
	t.Parallel()
	for _, s := range Severities() {
		assert.True(t, s.Valid(), "severity %q should be valid", s)
	}

	assert.False(t, Severity("").Valid())
	assert.False(t, Severity("HIGH").Valid(), "severities are case sensitive")
}

func TestSeverities_ClosedSet(t *testing.T) {
	t.Parallel()
	got := Severities()
	assert.Len(t, got, 4)

	// The returned slice is a copy.
	got[0] = Severity("tampered")
	assert.Equal(t, SeverityLow, Severities()[0])
}
