// Package watcher re-projects the live shift on a cron schedule and emits
// alerts when the outlook changes for the worse or recovers.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/suggest"
	"github.com/robfig/cron/v3"
)

// WatchState captures the outlook of the shift at one point in time.
type WatchState struct {
	Timestamp       time.Time
	SnapshotID      string
	Stale           bool // live snapshot missing or too old to project from
	Projections     []analyzer.Projection
	Recommendations []suggest.Recommendation
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// ProjectFunc produces the current watch state. It is called once per
// scheduled cycle.
type ProjectFunc func(ctx context.Context, now time.Time) (*WatchState, error)

// Watcher re-projects the shift on a schedule and emits alerts when notable
// changes are detected.
type Watcher struct {
	schedule      cron.Schedule
	project       ProjectFunc
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	logger        *slog.Logger
	now           func() time.Time
}

// ParseSchedule parses a five-field cron expression
// (minute hour day-of-month month day-of-week).
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(spec))
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return sched, nil
}

// New creates a Watcher that calls project on every tick of the cron spec.
func New(spec string, project ProjectFunc, alertFn func(Alert), logger *slog.Logger) (*Watcher, error) {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		schedule:      sched,
		project:       project,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		logger:        logger,
		now:           time.Now,
	}, nil
}

// Next returns the next scheduled cycle after t.
func (w *Watcher) Next(t time.Time) time.Time {
	return w.schedule.Next(t)
}

// Run takes an initial projection, then checks at every scheduled time.
// Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.project(ctx, w.now())
	if err != nil {
		return fmt.Errorf("initial projection: %w", err)
	}
	w.previous = initial
	w.emit(Initial(initial))

	for {
		now := w.now()
		next := w.schedule.Next(now)
		w.logger.Debug("next projection scheduled", "at", next.Format(time.RFC3339), "in", next.Sub(now).Round(time.Second))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			w.emit(w.Check(ctx))
		}
	}
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// Check performs a single cycle: re-projects, compares against the previous
// state, updates the previous state, and returns any alerts. Identical
// alerts are suppressed until the underlying outlook changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	now := w.now()
	curr, err := w.project(ctx, now)
	if err != nil {
		w.logger.Warn("projection failed", "error", err)
		return w.dedup([]Alert{{
			Level:   "warning",
			Title:   "Projection failed",
			Message: fmt.Sprintf("Could not project the shift: %v", err),
			Time:    now,
		}})
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}
	w.previous = curr
	return w.dedup(raw)
}

// dedup drops alerts whose level, title and message match one emitted in the
// previous cycle.
func (w *Watcher) dedup(raw []Alert) []Alert {
	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys
	return alerts
}
