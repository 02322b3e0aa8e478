package suggest

import (
	"testing"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
)

var defaultThresholds = Thresholds{Green: 0.95, Yellow: 0.80}

func floatPtr(v float64) *float64 { return &v }

// --- EfficiencyLevel ---

func TestEfficiencyLevel_Green(t *testing.T) {
	got := EfficiencyLevel(analyzer.Projection{Horizon: 2, Efficiency: 95}, defaultThresholds)
	if len(got) != 0 {
		t.Errorf("expected no recommendation at the green threshold, got %d", len(got))
	}
}

func TestEfficiencyLevel_Attention(t *testing.T) {
	p := analyzer.Projection{Horizon: 2, Efficiency: 300.0 / 360.0 * 100, Velocity: 50}
	got := EfficiencyLevel(p, defaultThresholds)
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(got))
	}
	r := got[0]
	if r.Category != CategoryAttention || r.Priority != PriorityAttention || r.Icon != IconAttention {
		t.Errorf("unexpected recommendation %+v", r)
	}
	if want := "Projection at 2h: efficiency below target (83.3%)."; r.Message != want {
		t.Errorf("Message = %q, want %q", r.Message, want)
	}
	if want := "Optimize processes to recover 11.7% efficiency."; r.Action != want {
		t.Errorf("Action = %q, want %q", r.Action, want)
	}
}

func TestEfficiencyLevel_CriticalExcludesAttention(t *testing.T) {
	p := analyzer.Projection{Horizon: 4, Efficiency: 62.5, Velocity: 41}
	got := EfficiencyLevel(p, defaultThresholds)
	if len(got) != 1 {
		t.Fatalf("expected exactly 1 recommendation, got %d", len(got))
	}
	r := got[0]
	if r.Category != CategoryCritical || r.Priority != PriorityCritical || r.Icon != IconCritical {
		t.Errorf("unexpected recommendation %+v", r)
	}
	if want := "Projection at 4h: critical efficiency (62.5%). Immediate intervention required."; r.Message != want {
		t.Errorf("Message = %q, want %q", r.Message, want)
	}
	// 41 * 1.2 = 49.2
	if want := "Raise velocity to 49 units/hour to reach the target."; r.Action != want {
		t.Errorf("Action = %q, want %q", r.Action, want)
	}
}

// --- ProductivityGap ---

func TestProductivityGap(t *testing.T) {
	tests := []struct {
		name       string
		p          analyzer.Projection
		wantCount  int
		wantMsg    string
		wantAction string
	}{
		{name: "no gap", p: analyzer.Projection{Horizon: 2}, wantCount: 0},
		{
			name:       "gap of 60 over 2h",
			p:          analyzer.Projection{Horizon: 2, Gap: 60},
			wantCount:  1,
			wantMsg:    "Productivity gap at 2h: 60 units short.",
			wantAction: "Increase output by 30 units/hour.",
		},
		{
			name:       "rounds half up",
			p:          analyzer.Projection{Horizon: 4, Gap: 10.5},
			wantCount:  1,
			wantMsg:    "Productivity gap at 4h: 11 units short.",
			wantAction: "Increase output by 3 units/hour.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ProductivityGap(tc.p, defaultThresholds)
			if len(got) != tc.wantCount {
				t.Fatalf("expected %d recommendations, got %d", tc.wantCount, len(got))
			}
			if tc.wantCount == 0 {
				return
			}
			if got[0].Category != CategoryGap || got[0].Priority != PriorityAttention {
				t.Errorf("unexpected recommendation %+v", got[0])
			}
			if got[0].Message != tc.wantMsg {
				t.Errorf("Message = %q, want %q", got[0].Message, tc.wantMsg)
			}
			if got[0].Action != tc.wantAction {
				t.Errorf("Action = %q, want %q", got[0].Action, tc.wantAction)
			}
		})
	}
}

// --- InflectionPoint ---

func TestShiftHourLabel(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4.5, "shift hour 5"},
		{4.49, "shift hour 4"},
		{0, "shift hour 0"},
		{7.96, "shift hour 8"},
	}
	for _, tc := range tests {
		if got := ShiftHourLabel(tc.in); got != tc.want {
			t.Errorf("ShiftHourLabel(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInflectionPoint(t *testing.T) {
	if got := InflectionPoint(analyzer.Projection{Horizon: 2}, defaultThresholds); len(got) != 0 {
		t.Errorf("expected no recommendation without an intervention hour, got %d", len(got))
	}

	got := InflectionPoint(analyzer.Projection{Horizon: 6, InterventionHour: floatPtr(4.5)}, defaultThresholds)
	if len(got) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(got))
	}
	r := got[0]
	if r.Category != CategoryInflection || r.Icon != IconInflection || r.Priority != PriorityCritical {
		t.Errorf("unexpected recommendation %+v", r)
	}
	if want := "Inflection point detected: intervention needed at shift hour 5."; r.Message != want {
		t.Errorf("Message = %q, want %q", r.Message, want)
	}
	if r.Horizon != 6 {
		t.Errorf("Horizon = %d, want 6", r.Horizon)
	}
}
