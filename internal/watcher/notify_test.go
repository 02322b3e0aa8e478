package watcher

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatAlert(t *testing.T) {
	at := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name  string
		alert Alert
		want  string
	}{
		{
			name:  "with message",
			alert: Alert{Level: "critical", Title: "Inflection", Message: "Review processes", Time: at},
			want:  "14:30 [critical] Inflection: Review processes",
		},
		{
			name:  "title only",
			alert: Alert{Level: "info", Title: "New shift data", Time: at},
			want:  "14:30 [info] New shift data",
		},
		{
			name:  "no time",
			alert: Alert{Level: "warning", Title: "Stale"},
			want:  "--:-- [warning] Stale",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatAlert(tc.alert); got != tc.want {
				t.Errorf("FormatAlert() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNotifier_WritesEveryAlert(t *testing.T) {
	var buf bytes.Buffer
	n := &Notifier{Out: &buf}

	for _, level := range []string{"info", "warning", "critical"} {
		if err := n.Send(Alert{Level: level, Title: "t"}); err != nil {
			t.Fatalf("Send(%s): %v", level, err)
		}
	}
	if got := strings.Count(buf.String(), "\n"); got != 3 {
		t.Errorf("expected 3 lines, got %d: %q", got, buf.String())
	}
}

func TestNotifier_DesktopBelowMinLevelSkipped(t *testing.T) {
	var buf bytes.Buffer
	n := &Notifier{Out: &buf, Desktop: true, MinLevel: "critical"}

	// Below the threshold no desktop delivery is attempted, so nothing but
	// the log line is written.
	if err := n.Send(Alert{Level: "info", Title: "quiet"}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "desktop notification") {
		t.Errorf("unexpected desktop attempt: %q", buf.String())
	}
}
