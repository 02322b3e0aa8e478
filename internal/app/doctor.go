package app

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/output"
	"github.com/blackwell-systems/shiftwatch/internal/shift"
	"github.com/blackwell-systems/shiftwatch/internal/watcher"
	"github.com/spf13/cobra"
)

// minHealthyHistory is three eight-hour shifts of hourly samples, the point
// at which history starts adding to projection confidence.
const minHealthyHistory = 3 * 8

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the shiftwatch setup is healthy",
	Long: `Run a series of health checks against your shiftwatch configuration and
database. Prints a pass/fail line for each check and a summary of how many
checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg.Output)

	checks := []doctorCheck{
		checkConfigFile(flagConfig),
		checkProjectionConfig(cfg.Projection),
		checkSchedule(cfg.Watch.Schedule),
		checkDatabase(config.DBPath()),
	}

	// Data checks need a working database and engine.
	if checks[1].Passed && checks[3].Passed {
		s, err := openSession(cmd.Context(), nil)
		if err != nil {
			checks = append(checks, doctorCheck{Name: "Stored data", Message: err.Error()})
		} else {
			defer func() { _ = s.Close() }()
			checks = append(checks,
				checkSnapshot(s.snapshot, time.Now(), cfg.Watch.MaxAge()),
				checkHistory(s.engine.History().Len(), s.engine.History().RetentionDays()),
				checkOutcomes(s.engine.AccuracyReport()),
			)
		}
	}

	checks = append(checks, checkWatchDaemon(pidFile{path: pidFilePath()}))

	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	fmt.Println(output.Section("Doctor"))
	fmt.Println()
	for _, c := range checks {
		renderDoctorCheck(c)
	}
	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	indicator := output.StyleWarning.Render("✗")
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-30s %s\n", indicator, label, detail)
}

// checkConfigFile reports which config file is in effect. A missing default
// file is fine: built-in defaults apply.
func checkConfigFile(explicit string) doctorCheck {
	const name = "Config file"
	path := explicit
	if path == "" {
		path = config.FilePath()
	}
	if _, err := os.Stat(path); err != nil {
		if explicit != "" {
			return doctorCheck{Name: name, Message: fmt.Sprintf("not found: %s", path)}
		}
		return doctorCheck{Name: name, Passed: true, Message: "none, using built-in defaults"}
	}
	return doctorCheck{Name: name, Passed: true, Message: path}
}

func checkProjectionConfig(p config.Projection) doctorCheck {
	cfg, err := p.ToAnalyzer()
	if err != nil {
		return doctorCheck{Name: "Projection settings", Message: err.Error()}
	}
	return doctorCheck{
		Name:    "Projection settings",
		Passed:  true,
		Message: fmt.Sprintf("target %.0f u/h, horizons %v", cfg.TargetRate, cfg.Horizons),
	}
}

func checkSchedule(spec string) doctorCheck {
	if _, err := watcher.ParseSchedule(spec); err != nil {
		return doctorCheck{Name: "Watch schedule", Message: err.Error()}
	}
	return doctorCheck{Name: "Watch schedule", Passed: true, Message: spec}
}

// checkDatabase verifies that the SQLite database file exists.
func checkDatabase(dbPath string) doctorCheck {
	if _, err := os.Stat(dbPath); err != nil {
		return doctorCheck{
			Name:    "SQLite database",
			Message: fmt.Sprintf("not found at %s (run 'shiftwatch ingest <file>' to create)", dbPath),
		}
	}
	return doctorCheck{Name: "SQLite database", Passed: true, Message: dbPath}
}

// checkSnapshot reports whether the live snapshot is fresh enough to project from.
func checkSnapshot(snap *shift.Snapshot, now time.Time, maxAge time.Duration) doctorCheck {
	const name = "Live snapshot"
	if snap == nil {
		return doctorCheck{Name: name, Message: "none stored"}
	}
	age := now.Sub(snap.SavedAt).Round(time.Minute)
	if !shift.IsRecent(snap, now, maxAge) {
		return doctorCheck{Name: name, Message: fmt.Sprintf("stale: saved %s ago (max %s)", age, maxAge)}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("saved %s ago, %.0f units", age, snap.Units)}
}

func checkHistory(samples, retentionDays int) doctorCheck {
	msg := fmt.Sprintf("%d hourly samples over the last %d days", samples, retentionDays)
	return doctorCheck{Name: "History depth", Passed: samples >= minHealthyHistory, Message: msg}
}

// checkOutcomes passes once at least one outcome has been recorded.
func checkOutcomes(report analyzer.AccuracyReport) doctorCheck {
	if report.Count == 0 {
		return doctorCheck{Name: "Outcome log", Message: "no outcomes recorded (see 'shiftwatch outcome')"}
	}
	return doctorCheck{
		Name:    "Outcome log",
		Passed:  true,
		Message: fmt.Sprintf("%d outcomes, %.1f%% precision", report.Count, report.Precision),
	}
}

// checkWatchDaemon checks whether the watch daemon PID file exists and the process is running.
func checkWatchDaemon(pf pidFile) doctorCheck {
	const name = "Watch daemon"
	pid, err := pf.read()
	if err != nil {
		if os.IsNotExist(err) {
			return doctorCheck{Name: name, Message: "not running (no PID file)"}
		}
		return doctorCheck{Name: name, Message: fmt.Sprintf("unreadable PID file: %v", err)}
	}
	if !processExists(pid) {
		return doctorCheck{Name: name, Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid)}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}
