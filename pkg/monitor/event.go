package monitor

import (
	"time"

	"github.com/google/uuid"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/telemetry"
)

// Event is a timestamped record of one structured error, retained by the
// monitor for the configured retention window. Events are created by
// [Monitor.Record] and mutated only by [Monitor.Resolve]; every event
// handed out by the monitor is a copy.
type Event struct {
	// ID is the event identifier, equal to the structured error's ID.
	ID string

	// Error is the recorded structured error. Error values are immutable,
	// so sharing the pointer across copies is safe.
	Error *sserr.Error

	// Timestamp is when the event was recorded.
	Timestamp time.Time

	// Info is the request context captured at the call site.
	Info telemetry.ErrorInfo

	// Resolved marks whether an operator or feedback flow has resolved
	// the underlying error.
	Resolved bool

	// ResolvedAt is when the event was resolved. Nil while unresolved.
	ResolvedAt *time.Time

	// ResolutionNote is the free-form note attached at resolution.
	ResolutionNote string
}

// snapshot returns an independent copy of the event. The ResolvedAt
// pointer is re-boxed so callers cannot reach the monitor's copy.
func (e *Event) snapshot() Event {
	out := *e
	if e.ResolvedAt != nil {
		t := *e.ResolvedAt
		out.ResolvedAt = &t
	}
	return out
}

// EventResponse is the JSON form of an event for diagnostic surfaces.
type EventResponse struct {
	ID             string              `json:"id"`
	Error          sserr.Response      `json:"error"`
	Timestamp      time.Time           `json:"timestamp"`
	Info           telemetry.ErrorInfo `json:"info,omitzero"`
	Resolved       bool                `json:"resolved"`
	ResolvedAt     *time.Time          `json:"resolved_at,omitempty"`
	ResolutionNote string              `json:"resolution_note,omitempty"`
}

// Response renders the event for transport. Internal error details
// (cause chain, context map) are included only when includeInternal is
// true, mirroring [sserr.Error.Response].
func (e Event) Response(includeInternal bool) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Error:          e.Error.Response(includeInternal),
		Timestamp:      e.Timestamp,
		Info:           e.Info,
		Resolved:       e.Resolved,
		ResolvedAt:     e.ResolvedAt,
		ResolutionNote: e.ResolutionNote,
	}
}

// Alert type keys. One key fires at most once per cooldown window.
const (
	// AlertErrorRate fires when the per-minute error count exceeds the
	// configured limit.
	AlertErrorRate = "error-rate"

	// AlertCriticalErrors fires when the hourly critical-severity count
	// exceeds the configured limit.
	AlertCriticalErrors = "critical-errors"

	// AlertLowHealth fires from the sweep when the health score drops
	// below the configured floor.
	AlertLowHealth = "low-health-score"

	// AlertStuckErrors fires from the sweep when unresolved events older
	// than the retention window are found.
	AlertStuckErrors = "stuck-errors"
)

// alertTypeCategory returns the alert-type key for a per-category
// threshold breach, e.g. "category-network".
func alertTypeCategory(c sserr.Category) string {
	return "category-" + string(c)
}

// alertTypeSeverity returns the alert-type key for a per-severity
// threshold breach, e.g. "severity-high".
func alertTypeSeverity(s sserr.Severity) string {
	return "severity-" + string(s)
}

// Alert is one fired alert, kept in the monitor's history.
type Alert struct {
	// ID is the unique alert identifier.
	ID string `json:"id"`

	// Type is the alert-type key the cooldown is tracked under.
	Type string `json:"type"`

	// Message is the human-readable alert text.
	Message string `json:"message"`

	// Severity grades the alert.
	Severity sserr.Severity `json:"severity"`

	// Timestamp is when the alert fired.
	Timestamp time.Time `json:"timestamp"`

	// Resolved marks alerts acknowledged out-of-band.
	Resolved bool `json:"resolved"`
}

// newAlert builds an alert with a fresh ID.
func newAlert(alertType, message string, severity sserr.Severity, at time.Time) Alert {
	return Alert{
		ID:        newAlertID(),
		Type:      alertType,
		Message:   message,
		Severity:  severity,
		Timestamp: at,
	}
}

// newAlertID generates a time-ordered unique alert ID.
func newAlertID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Trend describes how the error volume of the last hour compares to the
// hour before it.
type Trend string

const (
	// TrendIncreasing means the last hour saw more than 1.5x the errors
	// of the hour before.
	TrendIncreasing Trend = "increasing"

	// TrendDecreasing means the last hour saw less than 0.5x the errors
	// of the hour before.
	TrendDecreasing Trend = "decreasing"

	// TrendStable means the error volume is between those bounds.
	TrendStable Trend = "stable"
)

// MessageStat is one entry in the recurring-message ranking.
type MessageStat struct {
	// Message is the exact error message text.
	Message string `json:"message"`

	// Count is how many times the message has been recorded.
	Count int `json:"count"`

	// LastSeen is when the message was most recently recorded.
	LastSeen time.Time `json:"last_seen"`
}

// Metrics is a point-in-time snapshot of the monitor's aggregates.
type Metrics struct {
	// TotalErrors is the cumulative recorded-error count. It never
	// resets, even as old events age out of retention.
	TotalErrors int64 `json:"total_errors"`

	// ByCategory holds cumulative counts per error category.
	ByCategory map[sserr.Category]int64 `json:"by_category"`

	// BySeverity holds cumulative counts per severity.
	BySeverity map[sserr.Severity]int64 `json:"by_severity"`

	// Hourly holds per-hour counts within the retention window, keyed by
	// the truncated-to-hour timestamp.
	Hourly map[time.Time]int `json:"hourly"`

	// TopMessages are the ten most recurring messages, ranked by count
	// with ties broken by recency.
	TopMessages []MessageStat `json:"top_messages"`

	// RecoveryRate is resolved-recoverable over total-recoverable events
	// as a percentage. 100 when no recoverable events are retained.
	RecoveryRate float64 `json:"recovery_rate"`

	// MeanResolutionMS is the mean time from recording to resolution in
	// milliseconds, over resolved events. 0 when nothing is resolved.
	MeanResolutionMS float64 `json:"mean_resolution_ms"`

	// Trend compares the last hour's volume to the hour before.
	Trend Trend `json:"trend"`

	// HealthScore is the current 0-100 health score.
	HealthScore float64 `json:"health_score"`

	// UnresolvedCount is how many retained events remain unresolved.
	UnresolvedCount int `json:"unresolved_count"`

	// WindowStart is the oldest timestamp still within retention.
	WindowStart time.Time `json:"window_start"`

	// GeneratedAt is when the snapshot was taken.
	GeneratedAt time.Time `json:"generated_at"`
}
