package output

import (
	"fmt"
	"strings"
)

// Efficiency bands, matching the recommendation categories.
const (
	LevelOnTrack   = "on track"
	LevelAttention = "attention"
	LevelCritical  = "critical"
)

// EfficiencyLevel classifies an efficiency percentage against the green and
// yellow thresholds, which are fractions of the target.
func EfficiencyLevel(efficiency, green, yellow float64) string {
	ratio := efficiency / 100
	switch {
	case ratio < yellow:
		return LevelCritical
	case ratio < green:
		return LevelAttention
	default:
		return LevelOnTrack
	}
}

// LevelStyle renders s in the color of the given efficiency level.
func LevelStyle(level, s string) string {
	switch level {
	case LevelCritical:
		return StyleError.Render(s)
	case LevelAttention:
		return StyleWarning.Render(s)
	default:
		return StyleSuccess.Render(s)
	}
}

// EfficiencyBar renders a bar for an efficiency percentage, colored by band.
// Values above 100% fill the bar.
// Example: "████████░░ 83.3%"
func EfficiencyBar(efficiency, green, yellow float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((efficiency / 100.0) * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	level := EfficiencyLevel(efficiency, green, yellow)
	return fmt.Sprintf("%s %s", LevelStyle(level, bar), StyleMuted.Render(fmt.Sprintf("%.1f%%", efficiency)))
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
// The higherIsBetter parameter decides which direction is styled as good.
func TrendArrow(delta float64, higherIsBetter bool) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	isPositive := delta > 0
	isImproved := isPositive == higherIsBetter

	var arrow string
	if isPositive {
		arrow = fmt.Sprintf("▲ +%.1f", delta)
	} else {
		arrow = fmt.Sprintf("▼ %.1f", delta)
	}

	if isImproved {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Section returns a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Field renders a label/value pair on one line.
func Field(label, value string) string {
	return fmt.Sprintf(" %s %s", StyleLabel.Render(label), StyleValue.Render(value))
}
