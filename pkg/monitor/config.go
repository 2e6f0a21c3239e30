package monitor

import (
	"fmt"
	"maps"
	"slices"
	"time"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
)

// Default monitor settings. Zero-valued Config fields are replaced with
// these by [New]; a negative threshold disables that check entirely.
const (
	// DefaultErrorRatePerMinute is the per-minute error count above which
	// the error-rate alert fires.
	DefaultErrorRatePerMinute = 10

	// DefaultCriticalPerHour is the hourly critical-severity count above
	// which the critical-errors alert fires.
	DefaultCriticalPerHour = 5

	// DefaultCooldown is the minimum gap between two alerts of the same
	// type.
	DefaultCooldown = 15 * time.Minute

	// DefaultRetention is how long events are kept before being purged.
	DefaultRetention = 24 * time.Hour

	// DefaultSweepInterval is how often the background sweep runs.
	DefaultSweepInterval = 5 * time.Minute

	// DefaultHealthAlertBelow is the health score floor under which the
	// sweep raises a low-health alert.
	DefaultHealthAlertBelow = 50.0
)

// ChannelToggles enables or disables notification channels. The monitor
// itself only stores the toggles; [notify.When] wires them to the actual
// notifiers.
type ChannelToggles struct {
	Email   bool `yaml:"email" json:"email"`
	Webhook bool `yaml:"webhook" json:"webhook"`
}

// Config is the monitor's recognized configuration surface. All
// thresholds are "exceeds" checks: an alert fires when the observed
// count is strictly greater than the limit.
type Config struct {
	// ErrorRatePerMinute is the per-minute error limit. Zero selects the
	// default; negative disables the check.
	ErrorRatePerMinute int `yaml:"error_rate_per_minute" json:"error_rate_per_minute"`

	// CriticalPerHour is the hourly critical-severity limit. Zero
	// selects the default; negative disables the check.
	CriticalPerHour int `yaml:"critical_per_hour" json:"critical_per_hour"`

	// CategoryThresholds sets per-category hourly limits. Categories
	// without an entry are unchecked.
	CategoryThresholds map[sserr.Category]int `yaml:"category_thresholds" json:"category_thresholds,omitempty"`

	// SeverityThresholds sets per-severity hourly limits. Severities
	// without an entry are unchecked.
	SeverityThresholds map[sserr.Severity]int `yaml:"severity_thresholds" json:"severity_thresholds,omitempty"`

	// Cooldown is the minimum gap between two alerts of the same type.
	// Zero selects the default.
	Cooldown time.Duration `yaml:"cooldown" json:"cooldown"`

	// Retention is how long events are kept. Zero selects the default.
	Retention time.Duration `yaml:"retention" json:"retention"`

	// SweepInterval is how often the background sweep runs. Zero selects
	// the default. Changes take effect the next time Start is called.
	SweepInterval time.Duration `yaml:"sweep_interval" json:"sweep_interval"`

	// HealthAlertBelow is the health score floor for the sweep's
	// low-health alert. Zero selects the default; negative disables the
	// check.
	HealthAlertBelow float64 `yaml:"health_alert_below" json:"health_alert_below"`

	// Channels toggles the notification channels.
	Channels ChannelToggles `yaml:"channels" json:"channels"`

	// Recipients is the alert recipient list handed to notifiers that
	// need one.
	Recipients []string `yaml:"recipients" json:"recipients,omitempty"`
}

// DefaultConfig returns the standard monitor configuration.
func DefaultConfig() Config {
	return Config{
		ErrorRatePerMinute: DefaultErrorRatePerMinute,
		CriticalPerHour:    DefaultCriticalPerHour,
		Cooldown:           DefaultCooldown,
		Retention:          DefaultRetention,
		SweepInterval:      DefaultSweepInterval,
		HealthAlertBelow:   DefaultHealthAlertBelow,
	}
}

// normalize fills zero-valued fields with defaults.
func (c Config) normalize() Config {
	if c.ErrorRatePerMinute == 0 {
		c.ErrorRatePerMinute = DefaultErrorRatePerMinute
	}
	if c.CriticalPerHour == 0 {
		c.CriticalPerHour = DefaultCriticalPerHour
	}
	if c.Cooldown == 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.Retention == 0 {
		c.Retention = DefaultRetention
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.HealthAlertBelow == 0 {
		c.HealthAlertBelow = DefaultHealthAlertBelow
	}
	return c
}

// Validate reports whether the configuration is usable. Returns a
// configuration error naming the first invalid field.
func (c Config) Validate() error {
	if c.Cooldown <= 0 {
		return sserr.Configuration("monitor: cooldown must be positive")
	}
	if c.Retention <= 0 {
		return sserr.Configuration("monitor: retention must be positive")
	}
	if c.SweepInterval <= 0 {
		return sserr.Configuration("monitor: sweep interval must be positive")
	}
	if c.HealthAlertBelow > 100 {
		return sserr.Configuration("monitor: health alert floor must not exceed 100")
	}
	for cat := range c.CategoryThresholds {
		if !cat.Valid() {
			return sserr.Configuration(
				fmt.Sprintf("monitor: unknown category %q in category thresholds", cat))
		}
	}
	for sev := range c.SeverityThresholds {
		if !sev.Valid() {
			return sserr.Configuration(
				fmt.Sprintf("monitor: unknown severity %q in severity thresholds", sev))
		}
	}
	return nil
}

// clone returns a config copy with its maps and slices duplicated.
func (c Config) clone() Config {
	out := c
	if c.CategoryThresholds != nil {
		out.CategoryThresholds = maps.Clone(c.CategoryThresholds)
	}
	if c.SeverityThresholds != nil {
		out.SeverityThresholds = maps.Clone(c.SeverityThresholds)
	}
	if c.Recipients != nil {
		out.Recipients = slices.Clone(c.Recipients)
	}
	return out
}

// ConfigPatch is a partial configuration update for
// [Monitor.UpdateConfig]. Nil fields leave the current value unchanged;
// non-nil maps and slices replace the current value wholesale.
type ConfigPatch struct {
	ErrorRatePerMinute *int                   `yaml:"error_rate_per_minute" json:"error_rate_per_minute,omitempty"`
	CriticalPerHour    *int                   `yaml:"critical_per_hour" json:"critical_per_hour,omitempty"`
	CategoryThresholds map[sserr.Category]int `yaml:"category_thresholds" json:"category_thresholds,omitempty"`
	SeverityThresholds map[sserr.Severity]int `yaml:"severity_thresholds" json:"severity_thresholds,omitempty"`
	Cooldown           *time.Duration         `yaml:"cooldown" json:"cooldown,omitempty"`
	Retention          *time.Duration         `yaml:"retention" json:"retention,omitempty"`
	SweepInterval      *time.Duration         `yaml:"sweep_interval" json:"sweep_interval,omitempty"`
	HealthAlertBelow   *float64               `yaml:"health_alert_below" json:"health_alert_below,omitempty"`
	EmailEnabled       *bool                  `yaml:"email_enabled" json:"email_enabled,omitempty"`
	WebhookEnabled     *bool                  `yaml:"webhook_enabled" json:"webhook_enabled,omitempty"`
	Recipients         []string               `yaml:"recipients" json:"recipients,omitempty"`
}

// apply overlays the patch onto a config and returns the result.
func (p ConfigPatch) apply(c Config) Config {
	if p.ErrorRatePerMinute != nil {
		c.ErrorRatePerMinute = *p.ErrorRatePerMinute
	}
	if p.CriticalPerHour != nil {
		c.CriticalPerHour = *p.CriticalPerHour
	}
	if p.CategoryThresholds != nil {
		c.CategoryThresholds = maps.Clone(p.CategoryThresholds)
	}
	if p.SeverityThresholds != nil {
		c.SeverityThresholds = maps.Clone(p.SeverityThresholds)
	}
	if p.Cooldown != nil {
		c.Cooldown = *p.Cooldown
	}
	if p.Retention != nil {
		c.Retention = *p.Retention
	}
	if p.SweepInterval != nil {
		c.SweepInterval = *p.SweepInterval
	}
	if p.HealthAlertBelow != nil {
		c.HealthAlertBelow = *p.HealthAlertBelow
	}
	if p.EmailEnabled != nil {
		c.Channels.Email = *p.EmailEnabled
	}
	if p.WebhookEnabled != nil {
		c.Channels.Webhook = *p.WebhookEnabled
	}
	if p.Recipients != nil {
		c.Recipients = slices.Clone(p.Recipients)
	}
	return c
}
