// Package app contains the Cobra command tree for shiftwatch.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

// logger is configured by the root command before any subcommand runs.
var logger = slog.Default()

var rootCmd = &cobra.Command{
	Use:   "shiftwatch",
	Short: "Shift productivity projections for warehouse operations",
	Long: `shiftwatch projects how a warehouse shift will finish. It learns hour-of-day
productivity from recent shifts, applies fatigue and trend adjustments, and
turns the projected efficiency into prioritized recommendations.

Run 'shiftwatch' with no arguments to see the available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(os.Stderr, flagVerbose)
		slog.SetDefault(logger)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("shiftwatch", appVersion)
		fmt.Println()
		fmt.Println("Use a subcommand:")
		fmt.Println("  ingest         Load processed shift data and update history")
		fmt.Println("  project        Project output over the configured horizons")
		fmt.Println("  suggest        Show prioritized recommendations")
		fmt.Println("  outcome        Record the real value for a past projection")
		fmt.Println("  accuracy       Show projection precision")
		fmt.Println("  history        List or prune hourly samples")
		fmt.Println("  runs           Show a saved projection run")
		fmt.Println("  import-legacy  Import browser-exported history and outcomes")
		fmt.Println("  watch          Re-project on a schedule and alert on changes")
		fmt.Println("  doctor         Check whether the setup is healthy")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/shiftwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// newLogger returns a text logger at info level, or debug when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setupOutput applies the --no-color flag and the configured output
// preferences.
func setupOutput(prefs config.Output) {
	output.SetWidth(prefs.Width)
	if flagNoColor {
		output.SetNoColor(true)
		return
	}
	output.ConfigureColor(prefs.Color)
}

// writeJSON encodes v as indented JSON to w.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
