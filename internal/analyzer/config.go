package analyzer

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid projection config")

// Projection defaults.
const (
	DefaultTargetRate      = 50.0 // units per hour
	DefaultShiftHours      = 8.0
	DefaultRetentionDays   = 7
	DefaultFatigueBase     = 0.02
	DefaultGreenThreshold  = 0.95
	DefaultYellowThreshold = 0.80
	DefaultShiftStartHour  = 8
)

// DefaultHorizons are the look-ahead horizons, in hours, projected by default.
var DefaultHorizons = []int{2, 4, 6, 8}

// Config is the parameter set of a projection engine. The engine keeps its
// own copy, so mutating a Config after NewEngine has no effect on it.
type Config struct {
	Horizons        []int   `json:"horizons"`
	TargetRate      float64 `json:"target_rate"`
	ShiftHours      float64 `json:"shift_hours"`
	RetentionDays   int     `json:"retention_days"`
	FatigueBase     float64 `json:"fatigue_base"`
	GreenThreshold  float64 `json:"green_threshold"`
	YellowThreshold float64 `json:"yellow_threshold"`
	ShiftStartHour  int     `json:"shift_start_hour"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	horizons := make([]int, len(DefaultHorizons))
	copy(horizons, DefaultHorizons)
	return Config{
		Horizons:        horizons,
		TargetRate:      DefaultTargetRate,
		ShiftHours:      DefaultShiftHours,
		RetentionDays:   DefaultRetentionDays,
		FatigueBase:     DefaultFatigueBase,
		GreenThreshold:  DefaultGreenThreshold,
		YellowThreshold: DefaultYellowThreshold,
		ShiftStartHour:  DefaultShiftStartHour,
	}
}

// Validate checks every parameter constraint.
func (c Config) Validate() error {
	if len(c.Horizons) == 0 {
		return fmt.Errorf("%w: at least one horizon is required", ErrInvalidConfig)
	}
	seen := make(map[int]bool, len(c.Horizons))
	for _, h := range c.Horizons {
		if h <= 0 {
			return fmt.Errorf("%w: horizon %d must be positive", ErrInvalidConfig, h)
		}
		if seen[h] {
			return fmt.Errorf("%w: duplicate horizon %d", ErrInvalidConfig, h)
		}
		seen[h] = true
	}
	if c.TargetRate <= 0 {
		return fmt.Errorf("%w: target rate must be > 0, got %v", ErrInvalidConfig, c.TargetRate)
	}
	if c.ShiftHours <= 0 {
		return fmt.Errorf("%w: shift length must be > 0, got %v", ErrInvalidConfig, c.ShiftHours)
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("%w: retention days must be > 0, got %d", ErrInvalidConfig, c.RetentionDays)
	}
	if c.FatigueBase < 0 {
		return fmt.Errorf("%w: fatigue base must be >= 0, got %v", ErrInvalidConfig, c.FatigueBase)
	}
	if !(c.YellowThreshold > 0 && c.YellowThreshold < c.GreenThreshold && c.GreenThreshold <= 1) {
		return fmt.Errorf("%w: thresholds must satisfy 0 < yellow (%v) < green (%v) <= 1",
			ErrInvalidConfig, c.YellowThreshold, c.GreenThreshold)
	}
	if c.ShiftStartHour < 0 || c.ShiftStartHour > 23 {
		return fmt.Errorf("%w: shift start hour must be within 0-23, got %d", ErrInvalidConfig, c.ShiftStartHour)
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Horizons = make([]int, len(c.Horizons))
	copy(out.Horizons, c.Horizons)
	return out
}
