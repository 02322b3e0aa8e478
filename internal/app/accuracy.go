package app

import (
	"fmt"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/spf13/cobra"
)

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Show projection precision",
	Long: `Summarize recorded outcomes: the mean relative error between projected and
actual cumulative units, and precision as (1 - mean error) x 100, overall
and per horizon.`,
	RunE: runAccuracy,
}

func init() {
	rootCmd.AddCommand(accuracyCmd)
}

// accuracyReport is the JSON shape of the accuracy command.
type accuracyReport struct {
	Overall   analyzer.AccuracyReport    `json:"overall"`
	ByHorizon []analyzer.HorizonAccuracy `json:"by_horizon"`
}

func runAccuracy(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	report := accuracyReport{
		Overall:   s.engine.AccuracyReport(),
		ByHorizon: s.engine.Calibration().ReportByHorizon(),
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), report)
	}

	fmt.Println(output.Section("Projection Accuracy"))
	fmt.Println()
	if report.Overall.Count == 0 {
		fmt.Println(" No outcomes recorded yet. Use 'shiftwatch outcome' after a horizon has passed.")
		return nil
	}

	fmt.Println(output.Field("Outcomes", fmt.Sprintf("%d", report.Overall.Count)))
	fmt.Println(output.Field("Mean relative error", fmt.Sprintf("%.1f%%", report.Overall.MeanRelativeError*100)))
	fmt.Println(output.Field("Precision", precisionStyle(report.Overall.Precision)))
	fmt.Println()

	tbl := output.NewTable("Horizon", "Outcomes", "Mean error", "Precision").AlignRight(1, 2)
	for _, h := range report.ByHorizon {
		tbl.AddRow(
			fmt.Sprintf("+%dh", h.Horizon),
			fmt.Sprintf("%d", h.Count),
			fmt.Sprintf("%.1f%%", h.MeanRelativeError*100),
			precisionStyle(h.Precision),
		)
	}
	tbl.Print()
	return nil
}

func precisionStyle(p float64) string {
	s := fmt.Sprintf("%.1f%%", p)
	switch {
	case p >= 90:
		return output.StyleSuccess.Render(s)
	case p >= 75:
		return output.StyleWarning.Render(s)
	default:
		return output.StyleError.Render(s)
	}
}
