// Package perf tracks execution statistics for named operations.
//
// The [Tracker] keeps one running record per operation name: how many
// times it ran, how many of those runs failed, the mean duration, and
// when it last executed. The mean is maintained as a streaming average
// (newAvg = oldAvg + (x − oldAvg) / count), so memory stays constant no
// matter how many completions are recorded. Records are never evicted.
//
// Typical use pairs [Tracker.Start] with a deferred completion callback:
//
//	done := tracker.Start("orders.checkout")
//	err := checkout(ctx, order)
//	done(err != nil)
//
// Statistics are read back via [Tracker.Stats] and [Tracker.All] for
// correlation with error-monitor output.
package perf

import (
	"maps"
	"slices"
	"sync"
	"time"
)

// Clock abstracts time for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// RecordHook is called after every recorded completion, outside the
// tracker's lock. Used to bridge completions into external metric
// systems.
type RecordHook func(name string, duration time.Duration, failed bool)

// OperationStats is a point-in-time snapshot of one operation's record.
type OperationStats struct {
	// Name is the operation the statistics belong to.
	Name string `json:"name"`

	// Count is the total number of recorded completions.
	Count int64 `json:"count"`

	// Failures is how many of those completions were failures.
	Failures int64 `json:"failures"`

	// AvgDurationMS is the streaming mean duration in milliseconds.
	AvgDurationMS float64 `json:"avg_duration_ms"`

	// ErrorRate is Failures/Count as a percentage in [0, 100].
	ErrorRate float64 `json:"error_rate"`

	// LastExecuted is when the most recent completion was recorded.
	LastExecuted time.Time `json:"last_executed"`
}

// operationRecord is the mutable per-operation state behind the lock.
type operationRecord struct {
	count        int64
	failures     int64
	avgMS        float64
	lastExecuted time.Time
}

// Tracker records operation completions. Safe for concurrent use.
type Tracker struct {
	mu    sync.Mutex
	ops   map[string]*operationRecord
	clock Clock
	hook  RecordHook
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock. Intended for tests.
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithRecordHook registers a callback invoked after every recorded
// completion.
func WithRecordHook(h RecordHook) Option {
	return func(t *Tracker) {
		t.hook = h
	}
}

// NewTracker returns an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		ops:   make(map[string]*operationRecord),
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start marks the beginning of an operation and returns its completion
// callback. The callback captures the elapsed time and records it with
// the given failure flag. Each callback records exactly one completion
// per invocation.
func (t *Tracker) Start(name string) func(failed bool) {
	start := t.clock.Now()
	return func(failed bool) {
		t.Record(name, t.clock.Now().Sub(start), failed)
	}
}

// Record adds one completion for the named operation, updating its
// count, failure count, streaming mean duration, and last-execution
// timestamp.
func (t *Tracker) Record(name string, duration time.Duration, failed bool) {
	ms := float64(duration) / float64(time.Millisecond)
	now := t.clock.Now()

	t.mu.Lock()
	rec, ok := t.ops[name]
	if !ok {
		rec = &operationRecord{}
		t.ops[name] = rec
	}
	rec.count++
	if failed {
		rec.failures++
	}
	rec.avgMS += (ms - rec.avgMS) / float64(rec.count)
	rec.lastExecuted = now
	t.mu.Unlock()

	if t.hook != nil {
		t.hook(name, duration, failed)
	}
}

// Stats returns a snapshot of one operation's record. The second return
// is false if the operation has never been recorded.
func (t *Tracker) Stats(name string) (OperationStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.ops[name]
	if !ok {
		return OperationStats{}, false
	}
	return rec.snapshot(name), true
}

// All returns a snapshot of every operation's record, keyed by name.
// The returned map is a copy; mutating it does not affect the tracker.
func (t *Tracker) All() map[string]OperationStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]OperationStats, len(t.ops))
	for name, rec := range t.ops {
		out[name] = rec.snapshot(name)
	}
	return out
}

// Names returns the tracked operation names in sorted order.
func (t *Tracker) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Sorted(maps.Keys(t.ops))
}

func (r *operationRecord) snapshot(name string) OperationStats {
	s := OperationStats{
		Name:          name,
		Count:         r.count,
		Failures:      r.failures,
		AvgDurationMS: r.avgMS,
		LastExecuted:  r.lastExecuted,
	}
	if r.count > 0 {
		s.ErrorRate = float64(r.failures) / float64(r.count) * 100
	}
	return s
}
