package analyzer

import "math"

// Sample-count thresholds for the confidence bonus: a full week and three
// days of eight-hour shifts.
const (
	fullHistorySamples    = 7 * 8
	partialHistorySamples = 3 * 8
)

// Confidence scores how well history backs a projection at the given
// horizon. The score starts at 0.7, gains for history depth and short
// horizons, loses for velocity variability, and is clamped to [0.5, 1.0].
func (e *Engine) Confidence(horizon int) float64 {
	c := 0.7

	switch n := e.history.Len(); {
	case n >= fullHistorySamples:
		c += 0.15
	case n >= partialHistorySamples:
		c += 0.10
	}

	switch {
	case horizon <= 2:
		c += 0.10
	case horizon <= 4:
		c += 0.05
	default:
		c -= 0.05
	}

	c -= e.Variability() * 0.2
	return clamp(finite(c), 0.5, 1.0)
}

// Variability is the coefficient of variation of retained positive
// velocities, clamped to [0, 1]. With fewer than two data points it is 0.5.
func (e *Engine) Variability() float64 {
	var velocities []float64
	for _, v := range e.history.Velocities() {
		if v > 0 {
			velocities = append(velocities, v)
		}
	}
	if len(velocities) < 2 {
		return 0.5
	}

	n := float64(len(velocities))
	var sum float64
	for _, v := range velocities {
		sum += v
	}
	mean := sum / n
	if mean <= 0 {
		return 1
	}

	var sq float64
	for _, v := range velocities {
		sq += (v - mean) * (v - mean)
	}
	cv := math.Sqrt(sq/n) / mean
	return clamp(finite(cv), 0, 1)
}

// ErrorMargin widens with the horizon and with lower confidence.
func ErrorMargin(horizon int, confidence float64) float64 {
	return 0.10 + 0.02*float64(horizon) + (1-confidence)*0.15
}
