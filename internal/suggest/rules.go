package suggest

import (
	"fmt"
	"math"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
)

// velocityBoost is the velocity increase suggested when efficiency is critical.
const velocityBoost = 1.2

// EfficiencyLevel flags projections that fall below the yellow band as
// critical, or below the green band as needing attention.
func EfficiencyLevel(p analyzer.Projection, t Thresholds) []Recommendation {
	ratio := p.Efficiency / 100
	switch {
	case ratio < t.Yellow:
		return []Recommendation{{
			Category: CategoryCritical,
			Icon:     IconCritical,
			Priority: PriorityCritical,
			Horizon:  p.Horizon,
			Message: fmt.Sprintf(
				"Projection at %dh: critical efficiency (%.1f%%). Immediate intervention required.",
				p.Horizon, p.Efficiency,
			),
			Action: fmt.Sprintf(
				"Raise velocity to %d units/hour to reach the target.",
				round(p.Velocity*velocityBoost),
			),
		}}
	case ratio < t.Green:
		return []Recommendation{{
			Category: CategoryAttention,
			Icon:     IconAttention,
			Priority: PriorityAttention,
			Horizon:  p.Horizon,
			Message: fmt.Sprintf(
				"Projection at %dh: efficiency below target (%.1f%%).",
				p.Horizon, p.Efficiency,
			),
			Action: fmt.Sprintf(
				"Optimize processes to recover %.1f%% efficiency.",
				t.Green*100-p.Efficiency,
			),
		}}
	}
	return nil
}

// ProductivityGap reports the units missing against the target at the end
// of the horizon and the hourly increase needed to close it.
func ProductivityGap(p analyzer.Projection, _ Thresholds) []Recommendation {
	if p.Gap <= 0 {
		return nil
	}
	perHour := p.Gap
	if p.Horizon > 0 {
		perHour = p.Gap / float64(p.Horizon)
	}
	return []Recommendation{{
		Category: CategoryGap,
		Icon:     IconGap,
		Priority: PriorityAttention,
		Horizon:  p.Horizon,
		Message:  fmt.Sprintf("Productivity gap at %dh: %d units short.", p.Horizon, round(p.Gap)),
		Action:   fmt.Sprintf("Increase output by %d units/hour.", round(perHour)),
	}}
}

// InflectionPoint flags projections whose efficiency deficit is too steep to
// recover in the remaining shift without intervention.
func InflectionPoint(p analyzer.Projection, _ Thresholds) []Recommendation {
	if p.InterventionHour == nil {
		return nil
	}
	return []Recommendation{{
		Category: CategoryInflection,
		Icon:     IconInflection,
		Priority: PriorityCritical,
		Horizon:  p.Horizon,
		Message: fmt.Sprintf(
			"Inflection point detected: intervention needed at %s.",
			ShiftHourLabel(*p.InterventionHour),
		),
		Action: "Review processes and assign additional resources if needed.",
	}}
}

// ShiftHourLabel formats a fractional shift hour the way recommendations cite
// it, rounded to the nearest whole hour.
func ShiftHourLabel(h float64) string {
	return fmt.Sprintf("shift hour %d", round(h))
}

// round rounds half up, matching how projected units are rounded.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
