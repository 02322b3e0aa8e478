package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"github.com/blackwell-systems/shiftwatch/internal/suggest"
	"github.com/spf13/cobra"
)

var (
	projectHorizons string
	projectSave     bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project output over the configured horizons",
	Long: `Project units, efficiency and gap to target at the end of each horizon,
starting from the live shift snapshot. Each projection shows the factors
that shaped it and a confidence score backed by the retained history.

With --save the run is stored, compared against the previous saved run, and
becomes the default reference for 'shiftwatch outcome'.

Examples:
  shiftwatch project
  shiftwatch project --horizons 1,3,5
  shiftwatch project --save --json`,
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVar(&projectHorizons, "horizons", "", "Comma-separated horizons in hours (overrides config)")
	projectCmd.Flags().BoolVar(&projectSave, "save", false, "Store this run for comparison and outcome recording")
	rootCmd.AddCommand(projectCmd)
}

// projectReport is the JSON shape of the project command.
type projectReport struct {
	Snapshot    string                `json:"snapshot_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Projections []analyzer.Projection `json:"projections"`
	RunID       int64                 `json:"run_id,omitempty"`
	Delta       map[int]float64       `json:"efficiency_delta,omitempty"`
}

func runProject(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tune, err := horizonOverride(projectHorizons)
	if err != nil {
		return err
	}
	s, err := openSession(ctx, tune)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	now := time.Now()
	projections, err := s.projectAll(now)
	if err != nil {
		return err
	}

	report := projectReport{
		Snapshot:    s.snapshot.ID,
		GeneratedAt: now,
		Projections: projections,
	}
	if projectSave {
		runID, delta, err := saveRun(ctx, s.db, "project", s.snapshot.ID, now, projections)
		if err != nil {
			return err
		}
		report.RunID = runID
		report.Delta = delta
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	renderProjections(s.engine.Config(), report)
	return nil
}

// horizonOverride parses a comma-separated horizon list into an engine
// config adjustment. An empty list leaves the config untouched.
func horizonOverride(list string) (func(*analyzer.Config), error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	var horizons []int
	for _, part := range strings.Split(list, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid horizon %q: %w", part, err)
		}
		horizons = append(horizons, h)
	}
	return func(c *analyzer.Config) { c.Horizons = horizons }, nil
}

// saveRun stores a projection run and returns its ID together with the
// per-horizon efficiency change against the previous run.
func saveRun(ctx context.Context, db *store.DB, command, snapshotID string, now time.Time, projections []analyzer.Projection) (int64, map[int]float64, error) {
	prev, err := db.GetLatestRun(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("loading previous run: %w", err)
	}
	runID, err := db.SaveProjectionRun(ctx, store.ProjectionRun{
		TakenAt:    now,
		Command:    command,
		Version:    appVersion,
		SnapshotID: snapshotID,
	}, projections)
	if err != nil {
		return 0, nil, fmt.Errorf("saving projection run: %w", err)
	}
	if prev == nil {
		return runID, nil, nil
	}
	delta, err := db.CompareRuns(ctx, prev.ID, runID)
	if err != nil {
		return runID, nil, fmt.Errorf("comparing runs: %w", err)
	}
	return runID, delta, nil
}

func renderProjections(cfg analyzer.Config, report projectReport) {
	fmt.Println(output.Section("Shift Projections"))
	fmt.Println()

	headers := []string{"Horizon", "Units", "Cumulative", "Target", "Efficiency", "Gap", "Confidence", "±", "Factors (h/f/t)"}
	if report.Delta != nil {
		headers = append(headers, "vs last")
	}
	tbl := output.NewTable(headers...).AlignRight(1, 2, 3, 5, 6, 7).Flex(8)

	for _, p := range report.Projections {
		row := []string{
			fmt.Sprintf("+%dh", p.Horizon),
			fmt.Sprintf("%.0f", p.UnitsThisHorizon),
			fmt.Sprintf("%.0f", p.CumulativeUnits),
			fmt.Sprintf("%.0f", p.TargetUnits),
			output.EfficiencyBar(p.Efficiency, cfg.GreenThreshold, cfg.YellowThreshold, 10),
			fmt.Sprintf("%.0f", p.Gap),
			fmt.Sprintf("%.0f%%", p.Confidence*100),
			fmt.Sprintf("%.0f%%", p.ErrorMargin*100),
			fmt.Sprintf("%.2f/%.2f/%+.2f", p.HourlyFactor, p.FatigueFactor, p.TrendFactor),
		}
		if report.Delta != nil {
			if d, ok := report.Delta[p.Horizon]; ok {
				row = append(row, output.TrendArrow(d, true))
			} else {
				row = append(row, output.StyleMuted.Render("new"))
			}
		}
		tbl.AddRow(row...)
	}
	tbl.Print()

	for _, p := range report.Projections {
		if p.InterventionHour != nil {
			fmt.Println()
			fmt.Printf(" %s intervention needed now (%s)\n",
				output.StyleError.Render("!"), suggest.ShiftHourLabel(*p.InterventionHour))
			break
		}
	}
	if report.RunID != 0 {
		fmt.Println()
		fmt.Println(output.StyleMuted.Render(fmt.Sprintf(" Saved as run #%d", report.RunID)))
	}
}
