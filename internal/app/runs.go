package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs [n]",
	Short: "Show a saved projection run",
	Long: `Show the projections of a run saved with 'shiftwatch project --save' or by
the watcher. n selects the run: 1 is the latest (default), 2 the one before,
and so on.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

// runReport is a saved run with its per-horizon rows.
type runReport struct {
	Run         *store.ProjectionRun  `json:"run"`
	Projections []store.ProjectionRow `json:"projections"`
}

func runRuns(cmd *cobra.Command, args []string) error {
	n := 1
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("run index must be a positive integer, got %q", args[0])
		}
		n = v
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg.Output)

	db, err := store.Open(config.DBPath(), store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	report, err := loadRun(cmd.Context(), db, n)
	if err != nil {
		return err
	}
	if report == nil {
		fmt.Println(" No saved runs. Run 'shiftwatch project --save' to create one.")
		return nil
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	run := report.Run
	fmt.Println(output.Section(fmt.Sprintf("Run #%d", run.ID)))
	fmt.Println(output.Field("Taken", run.TakenAt.Local().Format("Jan 02 15:04")))
	fmt.Println(output.Field("Command", run.Command))
	fmt.Println(output.Field("Snapshot", run.SnapshotID))
	fmt.Println()

	tbl := output.NewTable("Horizon", "Cumulative", "Efficiency", "Gap", "Confidence").AlignRight(1, 2, 3, 4)
	for _, p := range report.Projections {
		tbl.AddRow(
			fmt.Sprintf("+%dh", p.Horizon),
			fmt.Sprintf("%.0f", p.CumulativeUnits),
			fmt.Sprintf("%.1f%%", p.Efficiency),
			fmt.Sprintf("%.0f", p.Gap),
			fmt.Sprintf("%.0f%%", p.Confidence*100),
		)
	}
	tbl.Print()
	return nil
}

// loadRun fetches the nth most recent run and its rows; nil when absent.
func loadRun(ctx context.Context, db *store.DB, n int) (*runReport, error) {
	run, err := db.GetRunN(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}
	if run == nil {
		return nil, nil
	}
	rows, err := db.GetRunProjections(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("loading run projections: %w", err)
	}
	return &runReport{Run: run, Projections: rows}, nil
}
