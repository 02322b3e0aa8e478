package suggest

import "github.com/blackwell-systems/shiftwatch/internal/analyzer"

// Engine runs all registered rules against a projection set and collects
// the resulting recommendations.
type Engine struct {
	thresholds Thresholds
	rules      []Rule
}

// NewEngine creates a recommendation engine with all built-in rules
// registered, using the given green and yellow efficiency bands.
func NewEngine(green, yellow float64) *Engine {
	return &Engine{
		thresholds: Thresholds{Green: green, Yellow: yellow},
		rules: []Rule{
			EfficiencyLevel,
			ProductivityGap,
			InflectionPoint,
		},
	}
}

// Run applies every rule to each projection in order and returns the
// recommendations ranked by priority.
func (e *Engine) Run(projections []analyzer.Projection) []Recommendation {
	var all []Recommendation
	for _, p := range projections {
		for _, rule := range e.rules {
			all = append(all, rule(p, e.thresholds)...)
		}
	}
	return RankRecommendations(all)
}
