package app

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	outcomeHorizon   int
	outcomeActual    float64
	outcomeProjected float64
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record the real value for a past projection",
	Long: `Record the cumulative units actually reached at the end of a horizon so
projection precision can be tracked. When --projected is omitted, the value
from the most recent saved run ('shiftwatch project --save') for that
horizon is used. Only the newest 100 outcomes are kept.

Examples:
  shiftwatch outcome --horizon 2 --actual 310
  shiftwatch outcome --horizon 4 --actual 402 --projected 420`,
	RunE: runOutcome,
}

func init() {
	outcomeCmd.Flags().IntVar(&outcomeHorizon, "horizon", 0, "Horizon of the projection, in hours")
	outcomeCmd.Flags().Float64Var(&outcomeActual, "actual", 0, "Cumulative units actually reached")
	outcomeCmd.Flags().Float64Var(&outcomeProjected, "projected", 0, "Cumulative units that were projected")
	_ = outcomeCmd.MarkFlagRequired("horizon")
	_ = outcomeCmd.MarkFlagRequired("actual")
	rootCmd.AddCommand(outcomeCmd)
}

func runOutcome(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var projected *float64
	if cmd.Flags().Changed("projected") {
		projected = &outcomeProjected
	}
	rec, err := recordOutcome(ctx, s, time.Now(), outcomeHorizon, outcomeActual, projected)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), rec)
	}
	fmt.Printf(" %s recorded +%dh outcome: actual %.0f, projected %.0f (error %.1f%%)\n",
		output.StyleSuccess.Render("✓"), rec.Horizon, rec.Actual, rec.Projected, rec.RelativeError*100)
	return nil
}

// recordOutcome logs an outcome, resolving the projected value from the
// latest saved run when projected is nil, and persists the log.
func recordOutcome(ctx context.Context, s *session, now time.Time, horizon int, actual float64, projected *float64) (analyzer.ErrorRecord, error) {
	if horizon <= 0 {
		return analyzer.ErrorRecord{}, fmt.Errorf("horizon must be positive, got %d", horizon)
	}
	if actual < 0 {
		return analyzer.ErrorRecord{}, fmt.Errorf("actual must be non-negative, got %v", actual)
	}

	var value float64
	if projected != nil {
		value = *projected
	} else {
		row, err := s.db.LatestProjectionFor(ctx, horizon)
		if err != nil {
			return analyzer.ErrorRecord{}, fmt.Errorf("looking up saved projection: %w", err)
		}
		if row == nil {
			return analyzer.ErrorRecord{}, fmt.Errorf("no saved projection for +%dh; pass --projected or run 'shiftwatch project --save'", horizon)
		}
		value = row.CumulativeUnits
	}

	rec := s.engine.RecordOutcome(now, horizon, actual, value)
	if err := s.engine.Persist(ctx); err != nil {
		return analyzer.ErrorRecord{}, err
	}
	return rec, nil
}
