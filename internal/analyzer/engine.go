// Package analyzer projects shift output over look-ahead horizons from the
// live snapshot and learned hourly history, and tracks projection accuracy.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/history"
	"github.com/blackwell-systems/shiftwatch/internal/shift"
)

// ErrNoCurrentData is returned when a projection is requested before any
// snapshot has been set.
var ErrNoCurrentData = errors.New("no current shift data available")

// interventionDeficitPerHour is the efficiency gap, in percentage points per
// remaining hour, above which immediate intervention is flagged.
const interventionDeficitPerHour = 20.0

// Projection is the expected state of the shift at the end of a horizon.
type Projection struct {
	Horizon          int      `json:"horizon"`
	UnitsThisHorizon float64  `json:"units_this_horizon"`
	CumulativeUnits  float64  `json:"cumulative_units"`
	IdleTime         float64  `json:"idle_time"`
	Efficiency       float64  `json:"efficiency"`
	Gap              float64  `json:"gap"`
	Confidence       float64  `json:"confidence"`
	InterventionHour *float64 `json:"intervention_hour"`
	Velocity         float64  `json:"velocity"`
	HourlyFactor     float64  `json:"hourly_factor"`
	FatigueFactor    float64  `json:"fatigue_factor"`
	TrendFactor      float64  `json:"trend_factor"`
	ErrorMargin      float64  `json:"error_margin"`
	TargetUnits      float64  `json:"target_units"`
}

// Engine projects shift output over the configured horizons. It owns one
// history, one live snapshot and one calibration log, and is not safe for
// concurrent use: callers keep one Engine per shift and serialize writes.
type Engine struct {
	cfg         Config
	history     *history.Store
	snapshot    *shift.Snapshot
	calibration *Calibration

	historyRepo HistoryRepository
	outcomeRepo OutcomeRepository
	logger      *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger used to report recovered persistence problems.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHistoryRepository sets where history is restored from and persisted to.
func WithHistoryRepository(r HistoryRepository) Option {
	return func(e *Engine) { e.historyRepo = r }
}

// WithOutcomeRepository sets where calibration records are restored from and
// persisted to.
func WithOutcomeRepository(r OutcomeRepository) Option {
	return func(e *Engine) { e.outcomeRepo = r }
}

// NewEngine validates cfg and returns an engine with empty history.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.clone()
	e := &Engine{
		cfg:         cfg,
		history:     history.NewStore(cfg.RetentionDays),
		calibration: NewCalibration(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg.clone()
}

// History exposes the sample store.
func (e *Engine) History() *history.Store {
	return e.history
}

// Calibration exposes the outcome log.
func (e *Engine) Calibration() *Calibration {
	return e.calibration
}

// SetSnapshot validates s and makes a copy of it the live snapshot,
// discarding the previous one.
func (e *Engine) SetSnapshot(s shift.Snapshot) error {
	if err := s.Normalize(); err != nil {
		return err
	}
	e.snapshot = &s
	return nil
}

// Snapshot returns a copy of the live snapshot, or nil if none is set.
func (e *Engine) Snapshot() *shift.Snapshot {
	if e.snapshot == nil {
		return nil
	}
	s := *e.snapshot
	return &s
}

// AddSamples appends hourly samples and prunes the history to the retention
// window as of now. It returns the number of pruned samples.
func (e *Engine) AddSamples(samples []history.Sample, now time.Time) int {
	e.history.Append(samples)
	return e.history.Prune(now)
}

// Project computes the projection for a single horizon.
func (e *Engine) Project(horizon int, now time.Time) (Projection, error) {
	if e.snapshot == nil {
		return Projection{}, ErrNoCurrentData
	}
	if horizon <= 0 {
		return Projection{}, fmt.Errorf("%w: horizon %d must be positive", ErrInvalidConfig, horizon)
	}
	return e.project(horizon, now), nil
}

// ProjectAll computes one projection per configured horizon, in
// configuration order.
func (e *Engine) ProjectAll(now time.Time) ([]Projection, error) {
	if e.snapshot == nil {
		return nil, ErrNoCurrentData
	}
	out := make([]Projection, 0, len(e.cfg.Horizons))
	for _, h := range e.cfg.Horizons {
		out = append(out, e.project(h, now))
	}
	return out, nil
}

func (e *Engine) project(horizon int, now time.Time) Projection {
	snap := e.snapshot
	h := float64(horizon)
	worked := snap.HoursWorked

	hourly := e.HourlyFactor(snap.Hour + horizon)
	fatigue := e.FatigueFactor(worked, h)
	trend := e.TrendFactor(now)

	velocity := finite(snap.Velocity * hourly * (1 - fatigue) * (1 + trend))
	units := roundHalfUp(velocity * h)
	cumulative := snap.Units + units

	idle := finite(snap.IdleTime / math.Max(1, worked) * h)

	target := e.cfg.TargetRate * (worked + h)
	var efficiency float64
	if target > 0 {
		efficiency = finite(cumulative / target * 100)
	}
	gap := math.Max(0, target-cumulative)

	confidence := e.Confidence(horizon)

	return Projection{
		Horizon:          horizon,
		UnitsThisHorizon: units,
		CumulativeUnits:  cumulative,
		IdleTime:         idle,
		Efficiency:       efficiency,
		Gap:              finite(gap),
		Confidence:       confidence,
		InterventionHour: e.interventionHour(efficiency, worked),
		Velocity:         velocity,
		HourlyFactor:     hourly,
		FatigueFactor:    fatigue,
		TrendFactor:      trend,
		ErrorMargin:      ErrorMargin(horizon, confidence),
		TargetUnits:      finite(target),
	}
}

// interventionHour returns hoursWorked when the efficiency recovery needed
// per remaining shift hour to reach green exceeds the intervention limit.
// The value is hours since shift start, not a clock hour.
func (e *Engine) interventionHour(efficiency, hoursWorked float64) *float64 {
	green := e.cfg.GreenThreshold * 100
	if efficiency >= green {
		return nil
	}
	remaining := e.cfg.ShiftHours - hoursWorked
	if remaining <= 0 {
		return nil
	}
	if (green-efficiency)/remaining > interventionDeficitPerHour {
		h := hoursWorked
		return &h
	}
	return nil
}

// RecordOutcome logs the realized value for a previously issued projection.
func (e *Engine) RecordOutcome(now time.Time, horizon int, actual, projected float64) ErrorRecord {
	return e.calibration.Record(now, horizon, actual, projected)
}

// AccuracyReport summarizes the calibration log.
func (e *Engine) AccuracyReport() AccuracyReport {
	return e.calibration.Report()
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// Restore loads history and calibration records from the configured
// repositories. Unreadable data is logged and replaced with an empty
// collection; Restore itself never fails.
func (e *Engine) Restore(ctx context.Context) {
	if e.historyRepo != nil {
		samples, err := e.historyRepo.LoadHistory(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "discarding unreadable history", "error", err)
			samples = nil
		}
		e.history.Replace(samples)
	}
	if e.outcomeRepo != nil {
		records, err := e.outcomeRepo.LoadOutcomes(ctx)
		if err != nil {
			e.logger.WarnContext(ctx, "discarding unreadable outcome log", "error", err)
			records = nil
		}
		e.calibration.Replace(records)
	}
}

// Persist saves history and calibration records to the configured
// repositories.
func (e *Engine) Persist(ctx context.Context) error {
	if e.historyRepo != nil {
		if err := e.historyRepo.SaveHistory(ctx, e.history.Samples()); err != nil {
			return fmt.Errorf("saving history: %w", err)
		}
	}
	if e.outcomeRepo != nil {
		if err := e.outcomeRepo.SaveOutcomes(ctx, e.calibration.Records()); err != nil {
			return fmt.Errorf("saving outcomes: %w", err)
		}
	}
	return nil
}
