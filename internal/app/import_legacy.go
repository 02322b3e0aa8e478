package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	importHistoryFile  string
	importOutcomesFile string
)

var importLegacyCmd = &cobra.Command{
	Use:   "import-legacy",
	Short: "Import browser-exported history and outcomes",
	Long: `Import the JSON arrays saved by the browser dashboard: the hourly history
and the projection error log. Imported samples are merged into the current
history and pruned to the retention window; imported outcomes are appended
to the log, which keeps its newest 100 records.

Unreadable files are reported and skipped rather than failing the import.`,
	RunE: runImportLegacy,
}

func init() {
	importLegacyCmd.Flags().StringVar(&importHistoryFile, "history", "", "Path to the exported history JSON")
	importLegacyCmd.Flags().StringVar(&importOutcomesFile, "outcomes", "", "Path to the exported error log JSON")
	rootCmd.AddCommand(importLegacyCmd)
}

// importResult summarizes a legacy import.
type importResult struct {
	Samples  int `json:"samples"`
	Pruned   int `json:"pruned"`
	Outcomes int `json:"outcomes"`
}

func runImportLegacy(cmd *cobra.Command, args []string) error {
	if importHistoryFile == "" && importOutcomesFile == "" {
		return fmt.Errorf("nothing to import: pass --history and/or --outcomes")
	}

	ctx := cmd.Context()
	s, err := openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	var historyData, outcomeData []byte
	if importHistoryFile != "" {
		if historyData, err = os.ReadFile(importHistoryFile); err != nil {
			return fmt.Errorf("reading history export: %w", err)
		}
	}
	if importOutcomesFile != "" {
		if outcomeData, err = os.ReadFile(importOutcomesFile); err != nil {
			return fmt.Errorf("reading outcome export: %w", err)
		}
	}

	res, err := importLegacy(ctx, s, historyData, outcomeData, time.Now())
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Printf(" %s imported %d sample(s) (%d pruned) and %d outcome(s)\n",
		output.StyleSuccess.Render("✓"), res.Samples, res.Pruned, res.Outcomes)
	return nil
}

// importLegacy merges decoded exports into the session's engine and
// persists the result. Nil payloads are skipped.
func importLegacy(ctx context.Context, s *session, historyData, outcomeData []byte, now time.Time) (*importResult, error) {
	res := &importResult{}
	if historyData != nil {
		samples := store.DecodeLegacyHistory(ctx, historyData, now.Location(), logger)
		res.Samples = len(samples)
		res.Pruned = s.engine.AddSamples(samples, now)
	}
	if outcomeData != nil {
		records := store.DecodeLegacyOutcomes(ctx, outcomeData, logger)
		res.Outcomes = len(records)
		cal := s.engine.Calibration()
		cal.Replace(append(cal.Records(), records...))
	}
	if err := s.engine.Persist(ctx); err != nil {
		return nil, err
	}
	return res, nil
}
