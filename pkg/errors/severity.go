package errors

// Severity grades the operational impact of an error. It is derived from
// the error's category via [Category.Severity] and is never stored, so an
// error's severity can never drift out of sync with its classification.
type Severity string

const (
	// SeverityLow marks transient conditions that usually self-heal,
	// such as network blips, timeouts, and rate limiting.
	SeverityLow Severity = "low"

	// SeverityMedium marks failures that need attention but do not
	// threaten the system as a whole.
	SeverityMedium Severity = "medium"

	// SeverityHigh marks failures in security or configuration surfaces.
	SeverityHigh Severity = "high"

	// SeverityCritical marks the most serious level. No category derives
	// it; it exists so monitoring thresholds and counters cover the full
	// ordered set.
	SeverityCritical Severity = "critical"
)

// severities lists every valid Severity from least to most severe.
var severities = []Severity{
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Severities returns the closed set of severities ordered from least to
// most severe. The returned slice is a copy.
func Severities() []Severity {
	out := make([]Severity, len(severities))
	copy(out, severities)
	return out
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Valid reports whether the severity is a member of the closed set.
func (s Severity) Valid() bool {
	for _, known := range severities {
		if s == known {
			return true
		}
	}
	return false
}

// Level returns the numeric rank of the severity, from 1 (low) to
// 4 (critical). Unknown severities rank 0, below every valid level.
func (s Severity) Level() int {
	for i, known := range severities {
		if s == known {
			return i + 1
		}
	}
	return 0
}
