package watcher

import (
	"fmt"

	"github.com/blackwell-systems/shiftwatch/internal/suggest"
)

// Initial reports the urgent recommendations already present when watching
// starts.
func Initial(s *WatchState) []Alert {
	if s == nil {
		return nil
	}
	var alerts []Alert
	for _, r := range s.Recommendations {
		if isUrgent(r) {
			alerts = append(alerts, recommendationAlert("critical", r, s))
		}
	}
	return alerts
}

// Compare detects notable changes between two watch states and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical reports critical or inflection recommendations that were
// not present in the previous cycle.
func compareCritical(prev, curr *WatchState) []Alert {
	seen := recommendationKeys(prev)
	var alerts []Alert
	for _, r := range curr.Recommendations {
		if isUrgent(r) && !seen[keyOf(r)] {
			alerts = append(alerts, recommendationAlert("critical", r, curr))
		}
	}
	return alerts
}

// compareWarning detects horizons slipping below green and shift data going
// stale.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert

	seen := recommendationKeys(prev)
	for _, r := range curr.Recommendations {
		if r.Category == suggest.CategoryAttention && !seen[keyOf(r)] {
			alerts = append(alerts, recommendationAlert("warning", r, curr))
		}
	}

	if curr.Stale && !prev.Stale {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Shift data is stale",
			Message: "No recent shift snapshot; projections are paused until new data is ingested",
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// compareInfo detects recoveries and newly ingested data.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert

	now := recommendationKeys(curr)
	for _, r := range prev.Recommendations {
		if isUrgent(r) && !now[keyOf(r)] && !curr.Stale {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   fmt.Sprintf("Recovered at %dh", r.Horizon),
				Message: fmt.Sprintf("%s condition at the %dh horizon has cleared", r.Category, r.Horizon),
				Time:    curr.Timestamp,
			})
		}
	}

	if curr.SnapshotID != "" && curr.SnapshotID != prev.SnapshotID {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "New shift data",
			Message: fmt.Sprintf("Projections refreshed from snapshot %s", shortID(curr.SnapshotID)),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

func isUrgent(r suggest.Recommendation) bool {
	return r.Category == suggest.CategoryCritical || r.Category == suggest.CategoryInflection
}

type recKey struct {
	category string
	horizon  int
}

func keyOf(r suggest.Recommendation) recKey {
	return recKey{category: r.Category, horizon: r.Horizon}
}

func recommendationKeys(s *WatchState) map[recKey]bool {
	keys := make(map[recKey]bool, len(s.Recommendations))
	for _, r := range s.Recommendations {
		keys[keyOf(r)] = true
	}
	return keys
}

func recommendationAlert(level string, r suggest.Recommendation, s *WatchState) Alert {
	return Alert{
		Level:   level,
		Title:   r.Message,
		Message: r.Action,
		Time:    s.Timestamp,
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
