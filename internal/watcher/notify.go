package watcher

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// levelRank orders alert levels; unknown levels rank lowest.
var levelRank = map[string]int{"info": 1, "warning": 2, "critical": 3}

// Notifier writes every alert to a log stream and, when enabled, raises a
// desktop notification for alerts at or above MinLevel.
type Notifier struct {
	Out      io.Writer
	Desktop  bool
	MinLevel string
}

// Send delivers an alert. Desktop delivery failures fall back to the log
// stream and are not reported as errors.
func (n *Notifier) Send(alert Alert) error {
	if _, err := fmt.Fprintln(n.Out, FormatAlert(alert)); err != nil {
		return err
	}
	if !n.Desktop || levelRank[alert.Level] < levelRank[n.MinLevel] {
		return nil
	}
	if err := desktopNotify(alert); err != nil {
		_, _ = fmt.Fprintf(n.Out, "desktop notification unavailable: %v\n", err)
	}
	return nil
}

// FormatAlert renders an alert as a single log line.
func FormatAlert(alert Alert) string {
	stamp := "--:--"
	if !alert.Time.IsZero() {
		stamp = alert.Time.Format("15:04")
	}
	if alert.Message == "" {
		return fmt.Sprintf("%s [%s] %s", stamp, alert.Level, alert.Title)
	}
	return fmt.Sprintf("%s [%s] %s: %s", stamp, alert.Level, alert.Title, alert.Message)
}

// desktopNotify uses osascript on macOS and notify-send on Linux.
func desktopNotify(alert Alert) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(
			`display notification %q with title "shiftwatch" subtitle %q`,
			alert.Message, alert.Title,
		)
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		if _, err := exec.LookPath("notify-send"); err != nil {
			return err
		}
		urgency := "normal"
		if alert.Level == "critical" {
			urgency = "critical"
		}
		return exec.Command("notify-send", "-u", urgency, "shiftwatch: "+alert.Title, alert.Message).Run()
	default:
		return fmt.Errorf("no desktop notifier on %s", runtime.GOOS)
	}
}
