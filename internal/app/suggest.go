package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	suggestLimit    int
	suggestCategory string
)

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show prioritized recommendations",
	Long: `Project the live shift and turn each projection into recommendations:
critical or below-target efficiency, productivity gaps, and inflection
points where the remaining shift cannot recover without intervention.
Critical and inflection items are listed first.`,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 10, "Maximum number of recommendations to show")
	suggestCmd.Flags().StringVar(&suggestCategory, "category", "", "Filter by category (critical, attention, gap, inflection)")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	if err := validateCategory(suggestCategory); err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	projections, err := s.projectAll(time.Now())
	if err != nil {
		return err
	}

	recs := recommend(s.engine.Config(), projections)
	recs = filterByCategory(recs, suggestCategory)
	if suggestLimit > 0 && len(recs) > suggestLimit {
		recs = recs[:suggestLimit]
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), recs)
	}
	renderRecommendations(recs)
	return nil
}

// recommend runs the recommendation engine with the configured thresholds.
func recommend(cfg analyzer.Config, projections []analyzer.Projection) []suggest.Recommendation {
	return suggest.NewEngine(cfg.GreenThreshold, cfg.YellowThreshold).Run(projections)
}

func validateCategory(category string) error {
	switch category {
	case "", suggest.CategoryCritical, suggest.CategoryAttention, suggest.CategoryGap, suggest.CategoryInflection:
		return nil
	}
	return fmt.Errorf("unknown category %q (want critical, attention, gap or inflection)", category)
}

func filterByCategory(recs []suggest.Recommendation, category string) []suggest.Recommendation {
	if category == "" {
		return recs
	}
	var out []suggest.Recommendation
	for _, r := range recs {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}

func renderRecommendations(recs []suggest.Recommendation) {
	if len(recs) == 0 {
		fmt.Println(output.Section("Recommendations"))
		fmt.Println()
		fmt.Println(" No recommendations. The shift is on track.")
		return
	}

	fmt.Println(output.Section("Recommendations"))
	fmt.Println()

	for i, r := range recs {
		label := stylePriority(r.Priority, priorityToLabel(r))
		fmt.Printf(" #%d %s %s\n", i+1, label, output.StyleBold.Render(r.Message))
		fmt.Printf("    %s\n", r.Action)
		fmt.Println()
	}

	counts := suggest.CountByCategory(recs)
	fmt.Println(output.StyleMuted.Render(fmt.Sprintf(
		" %d critical, %d inflection, %d attention, %d gap",
		counts[suggest.CategoryCritical], counts[suggest.CategoryInflection],
		counts[suggest.CategoryAttention], counts[suggest.CategoryGap],
	)))
}

func priorityToLabel(r suggest.Recommendation) string {
	return "[" + strings.ToUpper(r.Category) + "]"
}

func stylePriority(priority int, label string) string {
	if priority >= suggest.PriorityCritical {
		return output.StyleError.Render(label)
	}
	return output.StyleWarning.Render(label)
}
