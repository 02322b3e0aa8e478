// Package suggest turns shift projections into prioritized recommendations.
package suggest

import "github.com/blackwell-systems/shiftwatch/internal/analyzer"

// Recommendation categories.
const (
	CategoryCritical   = "critical"
	CategoryAttention  = "attention"
	CategoryGap        = "gap"
	CategoryInflection = "inflection"
)

// Icon tags understood by the dashboard.
const (
	IconCritical   = "exclamation-triangle"
	IconAttention  = "info-circle"
	IconGap        = "chart-line"
	IconInflection = "clock"
)

// Priority levels. Higher sorts first.
const (
	PriorityAttention = 2
	PriorityCritical  = 3
)

// Recommendation is an advisory derived from one projection. It is
// recomputed on every run and never persisted.
type Recommendation struct {
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Message  string `json:"message"`
	Action   string `json:"action"`
	Priority int    `json:"priority"`
	Horizon  int    `json:"horizon"`
}

// Thresholds are the efficiency bands, as fractions of the target rate.
type Thresholds struct {
	Green  float64
	Yellow float64
}

// Rule examines one projection and produces zero or more recommendations.
type Rule func(p analyzer.Projection, t Thresholds) []Recommendation
