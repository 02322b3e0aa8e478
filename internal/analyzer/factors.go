package analyzer

import (
	"math"
	"time"
)

const (
	// fatigueOnsetHours is the cumulative work time after which output
	// starts to degrade.
	fatigueOnsetHours = 6.0

	// trendWindow and trendMaxPoints bound the samples used for the trend
	// regression.
	trendWindow    = 24 * time.Hour
	trendMaxPoints = 6
	trendMinPoints = 3

	hourlyFactorMin = 0.5
	hourlyFactorMax = 1.5
	trendFactorMax  = 0.1
)

// PatternFactor is the fixed diurnal productivity curve used when no
// history exists for an hour.
func PatternFactor(hour int) float64 {
	hour = wrapHour(hour)
	switch {
	case hour >= 8 && hour < 10:
		return 0.9 // ramp-up
	case hour >= 10 && hour < 12:
		return 1.1 // mid-morning peak
	case hour >= 12 && hour < 14:
		return 0.95 // pre-lunch
	case hour >= 14 && hour < 16:
		return 1.0 // post-lunch
	case hour >= 16 && hour < 18:
		return 0.9 // afternoon
	case hour >= 18 && hour < 20:
		return 0.85 // wind-down
	default:
		return 0.8 // outside shift hours
	}
}

// HourlyFactor is the historical mean velocity for the given hour-of-day
// relative to the target rate, clamped to [0.5, 1.5]. Hours past 23 wrap.
func (e *Engine) HourlyFactor(hour int) float64 {
	samples := e.history.SamplesForHour(wrapHour(hour))
	if len(samples) == 0 {
		return PatternFactor(hour)
	}

	var sum float64
	for _, s := range samples {
		sum += s.Velocity()
	}
	mean := sum / float64(len(samples))
	return clamp(finite(mean/e.cfg.TargetRate), hourlyFactorMin, hourlyFactorMax)
}

// FatigueFactor is the output penalty for working past the fatigue onset:
// zero up to six cumulative hours, then fatigueBase per two extra hours.
// The result never exceeds 1.
func (e *Engine) FatigueFactor(hoursWorked, horizon float64) float64 {
	total := hoursWorked + horizon
	if total <= fatigueOnsetHours {
		return 0
	}
	excess := total - fatigueOnsetHours
	return math.Min(1, e.cfg.FatigueBase*(excess/2))
}

// TrendFactor is the least-squares slope of recent velocities, normalized by
// their mean and clamped to [-0.1, 0.1]. It uses at most the six latest
// samples from the 24 hours before now and needs at least three of them.
func (e *Engine) TrendFactor(now time.Time) float64 {
	if e.history.Len() < trendMinPoints {
		return 0
	}
	recent := e.history.Recent(now, trendWindow, trendMaxPoints)
	if len(recent) < trendMinPoints {
		return 0
	}

	n := float64(len(recent))
	var sumX, sumY, sumXY, sumX2 float64
	for i, s := range recent {
		x := float64(i)
		y := s.Velocity()
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return 0
	}
	slope := (n*sumXY - sumX*sumY) / denom
	mean := sumY / n
	if mean <= 0 {
		return 0
	}
	return clamp(finite(slope/mean), -trendFactorMax, trendFactorMax)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// finite maps NaN and infinities to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func wrapHour(h int) int {
	h %= 24
	if h < 0 {
		h += 24
	}
	return h
}
