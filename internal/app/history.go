package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/history"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	historyHour  int
	historyPrune bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or prune hourly samples",
	Long: `List the retained hourly samples the engine learns from, optionally for a
single hour of day. With --prune, samples older than the retention window
are removed and the history is saved.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyHour, "hour", -1, "Only show samples for this hour of day (0-23)")
	historyCmd.Flags().BoolVar(&historyPrune, "prune", false, "Drop samples outside the retention window")
	rootCmd.AddCommand(historyCmd)
}

// historyReport is the JSON shape of the history command.
type historyReport struct {
	RetentionDays int              `json:"retention_days"`
	Pruned        int              `json:"pruned"`
	Samples       []history.Sample `json:"samples"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyHour < -1 || historyHour > 23 {
		return fmt.Errorf("hour must be within 0-23, got %d", historyHour)
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	hist := s.engine.History()
	report := historyReport{RetentionDays: hist.RetentionDays()}
	if historyPrune {
		report.Pruned = hist.Prune(time.Now())
		if err := s.engine.Persist(ctx); err != nil {
			return err
		}
	}

	if historyHour >= 0 {
		report.Samples = hist.SamplesForHour(historyHour)
	} else {
		report.Samples = hist.Samples()
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	fmt.Println(output.Section(fmt.Sprintf("Hourly History (%d-day window)", report.RetentionDays)))
	fmt.Println()
	if historyPrune {
		fmt.Printf(" Pruned %d sample(s)\n\n", report.Pruned)
	}
	if len(report.Samples) == 0 {
		fmt.Println(" No samples retained. Ingest shift data to build history.")
		return nil
	}

	tbl := output.NewTable("Date", "Hour", "Units", "Stops", "Idle (min)").AlignRight(1, 2, 3, 4)
	for _, smp := range report.Samples {
		tbl.AddRow(
			smp.Timestamp.Format("2006-01-02"),
			fmt.Sprintf("%02d:00", smp.Hour),
			fmt.Sprintf("%.0f", smp.Units),
			fmt.Sprintf("%d", smp.Stops),
			fmt.Sprintf("%.1f", smp.IdleTime),
		)
	}
	tbl.Print()
	return nil
}
