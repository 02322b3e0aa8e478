package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/config"
	"github.com/blackwell-systems/shiftwatch/internal/shift"
	"github.com/blackwell-systems/shiftwatch/internal/store"
	"github.com/blackwell-systems/shiftwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchDaemon   bool
	watchSchedule string
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-project on a schedule and alert on changes",
	Long: `Re-project the live shift on a cron schedule and emit alerts when the
outlook changes: new critical or inflection recommendations, horizons
slipping below target, stale shift data, and recoveries. Desktop
notifications are sent for critical alerts when enabled in config.

Examples:
  shiftwatch watch                             # foreground, ctrl-c to stop
  shiftwatch watch --schedule "*/5 6-22 * * *" # every 5 minutes during the day
  shiftwatch watch --daemon                    # background mode, write PID file
  shiftwatch watch --stop                      # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchSchedule, "schedule", "", "Cron schedule, five fields (default from config)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg.Output)
	if watchSchedule != "" {
		cfg.Watch.Schedule = watchSchedule
	}
	if _, err := watcher.ParseSchedule(cfg.Watch.Schedule); err != nil {
		return err
	}

	db, err := store.Open(config.DBPath(), store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer cancel()

	if watchDaemon {
		return runDaemon(ctx, cfg, db)
	}
	return runForeground(ctx, cfg, db)
}

// watchCycle returns the ProjectFunc used by the watcher: each cycle
// reloads engine state from db so data ingested by other processes is seen.
func watchCycle(cfg *config.Config, db *store.DB) watcher.ProjectFunc {
	return func(ctx context.Context, now time.Time) (*watcher.WatchState, error) {
		s, err := newSession(ctx, cfg, db, nil)
		if err != nil {
			return nil, err
		}
		state := &watcher.WatchState{Timestamp: now}
		if s.snapshot == nil || !shift.IsRecent(s.snapshot, now, cfg.Watch.MaxAge()) {
			state.Stale = true
			return state, nil
		}
		state.SnapshotID = s.snapshot.ID

		projections, err := s.projectAll(now)
		if err != nil {
			return nil, err
		}
		state.Projections = projections
		state.Recommendations = recommend(s.engine.Config(), projections)

		if cfg.Watch.SaveProjections {
			if _, _, err := saveRun(ctx, db, "watch", s.snapshot.ID, now, projections); err != nil {
				logger.WarnContext(ctx, "could not save projection run", "error", err)
			}
		}
		return state, nil
	}
}

// runForeground runs the watcher with live terminal output.
func runForeground(ctx context.Context, cfg *config.Config, db *store.DB) error {
	out := io.Writer(os.Stdout)
	if watchQuiet {
		out = io.Discard
	}
	notifier := &watcher.Notifier{Out: out, Desktop: cfg.Watch.Notify, MinLevel: "critical"}

	w, err := watcher.New(cfg.Watch.Schedule, watchCycle(cfg, db), func(a watcher.Alert) {
		_ = notifier.Send(a)
	}, logger)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "shiftwatch watching... (schedule %q, next check %s)\n",
		cfg.Watch.Schedule, w.Next(time.Now()).Format("15:04"))

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		_, _ = fmt.Fprintln(out, "\nStopped.")
		return nil
	}
	return err
}

// runDaemon writes a PID file and logs alerts to a file. Backgrounding is
// left to the caller (nohup, a service manager, etc.).
func runDaemon(ctx context.Context, cfg *config.Config, db *store.DB) error {
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	pidFile := pidFile{path: pidFilePath()}
	if err := pidFile.acquire(); err != nil {
		return err
	}
	defer pidFile.release()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	daemonLog := newLogger(logFile, flagVerbose)
	daemonLog.Info("daemon started", "pid", os.Getpid(), "schedule", cfg.Watch.Schedule)

	notifier := &watcher.Notifier{Out: logFile, Desktop: cfg.Watch.Notify, MinLevel: "critical"}
	w, err := watcher.New(cfg.Watch.Schedule, watchCycle(cfg, db), func(a watcher.Alert) {
		_ = notifier.Send(a)
	}, daemonLog)
	if err != nil {
		return err
	}

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		daemonLog.Info("daemon stopped")
		return nil
	}
	return err
}
