// Package monitor implements the in-process error monitor: a rolling
// window of recorded error events with derived aggregate metrics and
// threshold-based alerting.
//
// # Event Retention
//
// Events are held in memory for the configured retention window
// (24 hours by default) and purged on every write. Aggregate counters
// (totals per category and severity) are cumulative and survive the
// purge; windowed figures (hourly buckets, trend, health score) are
// computed over the retained events.
//
// # Alerting
//
// Four checks run on every recorded event, each against its own
// configured limit: error rate per minute, critical errors per hour,
// per-category hourly thresholds, and per-severity hourly thresholds. A
// background sweep additionally raises low-health-score and stuck-errors
// alerts. Every alert type has an independent cooldown (15 minutes by
// default) so a sustained breach fires once per window instead of once
// per event. Fired alerts are kept in history and handed to the
// configured [notify.Notifier] outside the monitor's lock.
//
// # Thread Safety
//
// A single mutex guards all monitor state. Recording, reads, resolution,
// configuration updates, and the background sweep all take the same
// lock; the notifier and the record path's caller never hold it.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	sserr "github.com/StricklySoft/stricklysoft-reliability/pkg/errors"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/notify"
	"github.com/StricklySoft/stricklysoft-reliability/pkg/telemetry"
)

// topMessageCount is how many recurring messages a metrics snapshot
// ranks.
const topMessageCount = 10

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// messageRecord tracks one distinct error message.
type messageRecord struct {
	count    int
	lastSeen time.Time
}

// Monitor retains error events and computes aggregate metrics over them.
// Create one with [New] and share it; all methods are safe for
// concurrent use.
type Monitor struct {
	mu          sync.Mutex
	cfg         Config
	events      []*Event
	totalErrors int64
	byCategory  map[sserr.Category]int64
	bySeverity  map[sserr.Severity]int64
	hourly      map[time.Time]int
	messages    map[string]*messageRecord
	alerts      []Alert
	lastFired   map[string]time.Time
	scheduler   gocron.Scheduler

	notifier notify.Notifier
	logger   *slog.Logger
	clock    Clock
	prom     *PromMetrics
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithNotifier sets the alert notifier. Defaults to [notify.Nop].
func WithNotifier(n notify.Notifier) Option {
	return func(m *Monitor) {
		if n != nil {
			m.notifier = n
		}
	}
}

// WithLogger sets the monitor's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock replaces the wall clock. Intended for tests.
func WithClock(c Clock) Option {
	return func(m *Monitor) {
		if c != nil {
			m.clock = c
		}
	}
}

// WithPromMetrics attaches a Prometheus metrics set that the monitor
// keeps updated as it records.
func WithPromMetrics(p *PromMetrics) Option {
	return func(m *Monitor) {
		m.prom = p
	}
}

// New creates a monitor with the given configuration. Zero-valued config
// fields are filled with defaults before validation.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	cfg = cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:        cfg.clone(),
		byCategory: make(map[sserr.Category]int64),
		bySeverity: make(map[sserr.Severity]int64),
		hourly:     make(map[time.Time]int),
		messages:   make(map[string]*messageRecord),
		lastFired:  make(map[string]time.Time),
		notifier:   notify.Nop{},
		logger:     slog.Default(),
		clock:      systemClock{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Record stores one error event, updates every aggregate, and runs the
// threshold checks. Events older than the retention window are purged
// first. Fired alerts are delivered to the notifier after the monitor's
// lock is released. Returns a copy of the stored event; a nil error
// records nothing and returns a zero Event.
func (m *Monitor) Record(ctx context.Context, e *sserr.Error, info telemetry.ErrorInfo) Event {
	if e == nil {
		return Event{}
	}
	now := m.clock.Now()
	severity := e.Severity()

	m.mu.Lock()
	m.pruneLocked(now)

	ev := &Event{ID: e.ID, Error: e, Timestamp: now, Info: info}
	m.events = append(m.events, ev)
	m.totalErrors++
	m.byCategory[e.Category]++
	m.bySeverity[severity]++
	m.hourly[now.Truncate(time.Hour)]++

	rec, ok := m.messages[e.Message]
	if !ok {
		rec = &messageRecord{}
		m.messages[e.Message] = rec
	}
	rec.count++
	rec.lastSeen = now

	fired := m.checkThresholdsLocked(now, e.Category, severity)

	if m.prom != nil {
		m.prom.ErrorsTotal.WithLabelValues(string(e.Category), string(severity)).Inc()
		m.prom.EventsRetained.Set(float64(len(m.events)))
		m.prom.HealthScore.Set(m.healthScoreLocked(now))
	}
	snapshot := ev.snapshot()
	m.mu.Unlock()

	m.deliver(ctx, fired)
	return snapshot
}

// Metrics returns a snapshot of every aggregate the monitor maintains.
func (m *Monitor) Metrics() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	hourAgo := now.Add(-time.Hour)
	recent := m.countSinceLocked(hourAgo, nil)
	previous := m.countBetweenLocked(now.Add(-2*time.Hour), hourAgo)

	var resolvedCount int
	var resolutionSumMS float64
	var unresolved int
	for _, ev := range m.events {
		if ev.Resolved {
			if ev.ResolvedAt != nil {
				resolvedCount++
				resolutionSumMS += float64(ev.ResolvedAt.Sub(ev.Timestamp)) / float64(time.Millisecond)
			}
		} else {
			unresolved++
		}
	}
	meanResolutionMS := 0.0
	if resolvedCount > 0 {
		meanResolutionMS = resolutionSumMS / float64(resolvedCount)
	}

	return Metrics{
		TotalErrors:      m.totalErrors,
		ByCategory:       maps.Clone(m.byCategory),
		BySeverity:       maps.Clone(m.bySeverity),
		Hourly:           maps.Clone(m.hourly),
		TopMessages:      m.topMessagesLocked(),
		RecoveryRate:     m.recoveryRateLocked(),
		MeanResolutionMS: meanResolutionMS,
		Trend:            ComputeTrend(recent, previous),
		HealthScore:      m.healthScoreLocked(now),
		UnresolvedCount:  unresolved,
		WindowStart:      now.Add(-m.cfg.Retention),
		GeneratedAt:      now,
	}
}

// RecentEvents returns up to limit retained events, newest first. A
// non-positive limit returns all retained events.
func (m *Monitor) RecentEvents(limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterEventsLocked(limit, nil)
}

// EventsByCategory returns up to limit retained events with the given
// category, newest first.
func (m *Monitor) EventsByCategory(category sserr.Category, limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterEventsLocked(limit, func(ev *Event) bool {
		return ev.Error.Category == category
	})
}

// EventsBySeverity returns up to limit retained events with the given
// severity, newest first.
func (m *Monitor) EventsBySeverity(severity sserr.Severity, limit int) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filterEventsLocked(limit, func(ev *Event) bool {
		return ev.Error.Severity() == severity
	})
}

// Event returns a copy of the retained event with the given ID. The
// second return is false when no such event is retained.
func (m *Monitor) Event(id string) (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i].ID == id {
			return m.events[i].snapshot(), true
		}
	}
	return Event{}, false
}

// Resolve marks the event with the given ID as resolved, stamping the
// resolution time and note. It is idempotent: resolving a missing or
// already-resolved event changes nothing and returns false.
func (m *Monitor) Resolve(id, note string) bool {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		if ev.ID != id {
			continue
		}
		if ev.Resolved {
			return false
		}
		ev.Resolved = true
		ev.ResolvedAt = &now
		ev.ResolutionNote = note
		return true
	}
	return false
}

// UpdateConfig applies a partial configuration update. Nil patch fields
// leave the current value unchanged. The patched config is normalized
// and validated before taking effect; on validation failure the current
// config is kept and returned alongside the error.
func (m *Monitor) UpdateConfig(patch ConfigPatch) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := patch.apply(m.cfg.clone()).normalize()
	if err := next.Validate(); err != nil {
		return m.cfg.clone(), err
	}
	m.cfg = next
	m.logger.Info("monitor: configuration updated",
		"error_rate_per_minute", next.ErrorRatePerMinute,
		"critical_per_hour", next.CriticalPerHour,
		"cooldown", next.Cooldown.String(),
		"retention", next.Retention.String(),
	)
	return next.clone(), nil
}

// Config returns a copy of the current configuration.
func (m *Monitor) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.clone()
}

// Alerts returns up to limit alerts from the history, newest first. A
// non-positive limit returns the full history.
func (m *Monitor) Alerts(limit int) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if limit <= 0 || limit > len(m.alerts) {
		limit = len(m.alerts)
	}
	out := make([]Alert, 0, limit)
	for i := len(m.alerts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.alerts[i])
	}
	return out
}

// Start launches the background sweep on its own scheduler, running
// every SweepInterval. Returns an error if the monitor is already
// started. The passed context is handed to the notifier on sweep-fired
// alerts.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	interval := m.cfg.SweepInterval
	m.mu.Unlock()

	s, err := gocron.NewScheduler()
	if err != nil {
		return sserr.Wrap(err, sserr.CategoryServerError, "monitor: creating sweep scheduler")
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(m.Sweep, ctx),
		gocron.WithName("monitor-sweep"),
	); err != nil {
		_ = s.Shutdown()
		return sserr.Wrap(err, sserr.CategoryServerError, "monitor: scheduling sweep")
	}

	m.mu.Lock()
	if m.scheduler != nil {
		m.mu.Unlock()
		_ = s.Shutdown()
		return sserr.Configuration("monitor: already started")
	}
	m.scheduler = s
	m.mu.Unlock()

	s.Start()
	m.logger.Info("monitor: sweep started", "interval", interval.String())
	return nil
}

// Stop shuts the background sweep down. Stopping a monitor that was
// never started is a no-op.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	s := m.scheduler
	m.scheduler = nil
	m.mu.Unlock()

	if s == nil {
		return nil
	}
	if err := s.Shutdown(); err != nil {
		return sserr.Wrap(err, sserr.CategoryServerError, "monitor: stopping sweep scheduler")
	}
	m.logger.Info("monitor: sweep stopped")
	return nil
}

// Sweep runs one maintenance pass: raise a low-health alert if the score
// is under the configured floor, raise a stuck-errors alert if
// unresolved events have outlived the retention window, then purge
// expired state. The background scheduler calls this periodically; tests
// and diagnostics may call it directly.
func (m *Monitor) Sweep(ctx context.Context) {
	now := m.clock.Now()

	m.mu.Lock()
	var fired []Alert

	if m.cfg.HealthAlertBelow >= 0 {
		if score := m.healthScoreLocked(now); score < m.cfg.HealthAlertBelow {
			fired = m.fireLocked(fired, AlertLowHealth,
				fmt.Sprintf("health score %.1f is below %.1f", score, m.cfg.HealthAlertBelow),
				sserr.SeverityHigh, now)
		}
	}

	stuckCutoff := now.Add(-m.cfg.Retention)
	stuck := 0
	for _, ev := range m.events {
		if !ev.Resolved && !ev.Timestamp.After(stuckCutoff) {
			stuck++
		}
	}
	if stuck > 0 {
		fired = m.fireLocked(fired, AlertStuckErrors,
			fmt.Sprintf("%d unresolved errors older than %s", stuck, m.cfg.Retention),
			sserr.SeverityMedium, now)
	}

	m.pruneLocked(now)
	if m.prom != nil {
		m.prom.EventsRetained.Set(float64(len(m.events)))
		m.prom.HealthScore.Set(m.healthScoreLocked(now))
	}
	m.mu.Unlock()

	m.deliver(ctx, fired)
}

// checkThresholdsLocked runs the four per-record alert checks. Only the
// recorded event's own category and severity are checked; other buckets
// cannot have changed.
func (m *Monitor) checkThresholdsLocked(now time.Time, category sserr.Category, severity sserr.Severity) []Alert {
	var fired []Alert
	minuteAgo := now.Add(-time.Minute)
	hourAgo := now.Add(-time.Hour)

	if limit := m.cfg.ErrorRatePerMinute; limit > 0 {
		if n := m.countSinceLocked(minuteAgo, nil); n > limit {
			fired = m.fireLocked(fired, AlertErrorRate,
				fmt.Sprintf("%d errors in the last minute exceeds limit %d", n, limit),
				sserr.SeverityHigh, now)
		}
	}

	if limit := m.cfg.CriticalPerHour; limit > 0 {
		n := m.countSinceLocked(hourAgo, func(ev *Event) bool {
			return ev.Error.Severity() == sserr.SeverityCritical
		})
		if n > limit {
			fired = m.fireLocked(fired, AlertCriticalErrors,
				fmt.Sprintf("%d critical errors in the last hour exceeds limit %d", n, limit),
				sserr.SeverityCritical, now)
		}
	}

	if limit, ok := m.cfg.CategoryThresholds[category]; ok && limit > 0 {
		n := m.countSinceLocked(hourAgo, func(ev *Event) bool {
			return ev.Error.Category == category
		})
		if n > limit {
			fired = m.fireLocked(fired, alertTypeCategory(category),
				fmt.Sprintf("%d %s errors in the last hour exceeds threshold %d", n, category, limit),
				sserr.SeverityHigh, now)
		}
	}

	if limit, ok := m.cfg.SeverityThresholds[severity]; ok && limit > 0 {
		n := m.countSinceLocked(hourAgo, func(ev *Event) bool {
			return ev.Error.Severity() == severity
		})
		if n > limit {
			fired = m.fireLocked(fired, alertTypeSeverity(severity),
				fmt.Sprintf("%d %s-severity errors in the last hour exceeds threshold %d", n, severity, limit),
				severity, now)
		}
	}

	return fired
}

// fireLocked appends an alert to the history unless its type is still
// cooling down. Returns the fired slice with the new alert appended when
// it fired.
func (m *Monitor) fireLocked(fired []Alert, alertType, message string, severity sserr.Severity, now time.Time) []Alert {
	if last, ok := m.lastFired[alertType]; ok && now.Sub(last) < m.cfg.Cooldown {
		return fired
	}
	m.lastFired[alertType] = now

	a := newAlert(alertType, message, severity, now)
	m.alerts = append(m.alerts, a)
	if m.prom != nil {
		m.prom.AlertsTotal.WithLabelValues(alertType).Inc()
	}
	return append(fired, a)
}

// deliver logs and sends fired alerts. Runs without the monitor's lock
// so a slow notifier cannot block recording.
func (m *Monitor) deliver(ctx context.Context, fired []Alert) {
	for _, a := range fired {
		m.logger.Warn("monitor: alert fired",
			"alert_type", a.Type,
			"severity", string(a.Severity),
			"message", a.Message,
		)
		if err := m.notifier.Send(ctx, notify.Alert{
			Type:     a.Type,
			Message:  a.Message,
			Severity: a.Severity,
		}); err != nil {
			m.logger.Error("monitor: alert delivery failed",
				"alert_type", a.Type,
				"error", err,
			)
		}
	}
}

// pruneLocked drops events, hourly buckets, message records, and alerts
// that have aged out of the retention window.
func (m *Monitor) pruneLocked(now time.Time) {
	cutoff := now.Add(-m.cfg.Retention)

	idx := 0
	for idx < len(m.events) && !m.events[idx].Timestamp.After(cutoff) {
		idx++
	}
	if idx > 0 {
		m.events = slices.Delete(m.events, 0, idx)
	}

	hourCutoff := cutoff.Truncate(time.Hour)
	for k := range m.hourly {
		if k.Before(hourCutoff) {
			delete(m.hourly, k)
		}
	}

	for msg, rec := range m.messages {
		if !rec.lastSeen.After(cutoff) {
			delete(m.messages, msg)
		}
	}

	aidx := 0
	for aidx < len(m.alerts) && !m.alerts[aidx].Timestamp.After(cutoff) {
		aidx++
	}
	if aidx > 0 {
		m.alerts = slices.Delete(m.alerts, 0, aidx)
	}
}

// countSinceLocked counts retained events with Timestamp after cutoff,
// optionally filtered. Events are stored in record order, so the scan
// walks backward and stops at the first event outside the window.
func (m *Monitor) countSinceLocked(cutoff time.Time, match func(*Event) bool) int {
	n := 0
	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		if !ev.Timestamp.After(cutoff) {
			break
		}
		if match == nil || match(ev) {
			n++
		}
	}
	return n
}

// countBetweenLocked counts events with after < Timestamp <= until.
func (m *Monitor) countBetweenLocked(after, until time.Time) int {
	n := 0
	for i := len(m.events) - 1; i >= 0; i-- {
		ts := m.events[i].Timestamp
		if !ts.After(after) {
			break
		}
		if ts.After(until) {
			continue
		}
		n++
	}
	return n
}

// filterEventsLocked copies up to limit events newest-first, optionally
// filtered. A non-positive limit means no limit.
func (m *Monitor) filterEventsLocked(limit int, match func(*Event) bool) []Event {
	if limit <= 0 {
		limit = len(m.events)
	}
	out := make([]Event, 0, min(limit, len(m.events)))
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		ev := m.events[i]
		if match == nil || match(ev) {
			out = append(out, ev.snapshot())
		}
	}
	return out
}

// healthScoreLocked computes the current health score from the last
// hour's volume and the recovery rate.
func (m *Monitor) healthScoreLocked(now time.Time) float64 {
	hourAgo := now.Add(-time.Hour)
	recent := m.countSinceLocked(hourAgo, nil)
	critical := m.countSinceLocked(hourAgo, func(ev *Event) bool {
		return ev.Error.Severity() == sserr.SeverityCritical
	})
	return HealthScore(recent, critical, m.recoveryRateLocked())
}

// recoveryRateLocked is the resolved share of recoverable retained
// events as a percentage; 100 when none are recoverable.
func (m *Monitor) recoveryRateLocked() float64 {
	var recoverable, resolved int
	for _, ev := range m.events {
		if !ev.Error.Recoverable {
			continue
		}
		recoverable++
		if ev.Resolved {
			resolved++
		}
	}
	if recoverable == 0 {
		return 100
	}
	return float64(resolved) / float64(recoverable) * 100
}

// topMessagesLocked ranks distinct messages by count, ties broken by
// recency, truncated to the top ten.
func (m *Monitor) topMessagesLocked() []MessageStat {
	stats := make([]MessageStat, 0, len(m.messages))
	for msg, rec := range m.messages {
		stats = append(stats, MessageStat{
			Message:  msg,
			Count:    rec.count,
			LastSeen: rec.lastSeen,
		})
	}
	slices.SortFunc(stats, func(a, b MessageStat) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return b.LastSeen.Compare(a.LastSeen)
	})
	if len(stats) > topMessageCount {
		stats = stats[:topMessageCount]
	}
	return stats
}
