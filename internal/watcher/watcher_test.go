package watcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/suggest"
)

// sequence returns a ProjectFunc that yields the given states in order,
// repeating the last one.
func sequence(states ...*WatchState) ProjectFunc {
	i := 0
	return func(context.Context, time.Time) (*WatchState, error) {
		s := states[i]
		if i < len(states)-1 {
			i++
		}
		return s, nil
	}
}

func newTestWatcher(t *testing.T, project ProjectFunc, alertFn func(Alert)) *Watcher {
	t.Helper()
	w, err := New("*/15 * * * *", project, alertFn, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.now = func() time.Time { return refNow }
	return w
}

func TestParseSchedule(t *testing.T) {
	sched, err := ParseSchedule(" */15 * * * * ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := sched.Next(refNow.Add(time.Minute)), refNow.Add(15*time.Minute); !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "every minute", "* * * * * *"} {
		if _, err := ParseSchedule(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestCheck_AlertsOnEachNewSlip(t *testing.T) {
	healthy := state("s1")
	failing := state("s1", rec(suggest.CategoryAttention, 2))
	failingAgain := state("s1", rec(suggest.CategoryAttention, 2))
	w := newTestWatcher(t, sequence(healthy, failing, healthy, failingAgain), nil)

	w.previous, _ = w.project(context.Background(), refNow)
	if got := w.Check(context.Background()); len(got) != 1 {
		t.Fatalf("expected 1 alert on first slip, got %+v", got)
	}
	if got := w.Check(context.Background()); len(got) != 0 {
		t.Errorf("expected no alerts after recovery to healthy, got %+v", got)
	}
	if got := w.Check(context.Background()); len(got) != 1 {
		t.Errorf("expected the slip to alert again after a quiet cycle, got %+v", got)
	}
}

func TestCheck_ProjectionErrorAlertsOnce(t *testing.T) {
	boom := func(context.Context, time.Time) (*WatchState, error) {
		return nil, errors.New("database is locked")
	}
	w := newTestWatcher(t, boom, nil)

	first := w.Check(context.Background())
	if len(first) != 1 || first[0].Level != "warning" {
		t.Fatalf("expected one warning, got %+v", first)
	}
	if again := w.Check(context.Background()); len(again) != 0 {
		t.Errorf("expected repeated failure to be suppressed, got %+v", again)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	var got []Alert
	initial := state("s1", rec(suggest.CategoryCritical, 2))
	w := newTestWatcher(t, sequence(initial), func(a Alert) { got = append(got, a) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(got) != 1 || got[0].Level != "critical" {
		t.Errorf("expected the initial critical alert, got %+v", got)
	}
}

func TestRun_InitialProjectionError(t *testing.T) {
	boom := func(context.Context, time.Time) (*WatchState, error) {
		return nil, errors.New("no database")
	}
	w := newTestWatcher(t, boom, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestNext(t *testing.T) {
	w := newTestWatcher(t, sequence(state("s1")), nil)
	if got := w.Next(refNow); !got.Equal(refNow.Add(15 * time.Minute)) {
		t.Errorf("Next = %v", got)
	}
}
