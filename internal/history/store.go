// Package history holds the rolling window of hourly productivity samples
// that the projection engine learns its hour-of-day and trend signals from.
package history

import (
	"sort"
	"time"
)

// Sample is one hour of observed shift activity.
type Sample struct {
	Timestamp time.Time `json:"timestamp"`
	Hour      int       `json:"hour"`
	Units     float64   `json:"units"`
	Stops     int       `json:"stops"`
	IdleTime  float64   `json:"idle_time"`
}

// Velocity is the number of units observed in the sample's hour.
func (s Sample) Velocity() float64 {
	return s.Units
}

// sameBucket reports whether two samples describe the same calendar hour.
func sameBucket(a, b Sample) bool {
	ay, am, ad := a.Timestamp.Date()
	by, bm, bd := b.Timestamp.Date()
	return ay == by && am == bm && ad == bd && a.Hour == b.Hour
}

// Store is an append-only, time-windowed collection of samples.
// It is not safe for concurrent mutation.
type Store struct {
	retentionDays int
	samples       []Sample
}

// NewStore creates an empty store that keeps samples for retentionDays.
func NewStore(retentionDays int) *Store {
	return &Store{retentionDays: retentionDays}
}

// Replace discards the current contents and loads samples, sorted by
// timestamp. Used when restoring persisted history.
func (s *Store) Replace(samples []Sample) {
	s.samples = make([]Sample, len(samples))
	copy(s.samples, samples)
	sortChronological(s.samples)
}

// Append merges samples that share a calendar day and hour (units and stops
// summed, idle time accumulated) and appends the result. Re-ingesting an hour
// that is already stored adds a second entry for it.
func (s *Store) Append(samples []Sample) {
	var merged []Sample
	for _, in := range samples {
		in.Hour = wrapHour(in.Hour)
		found := false
		for i := range merged {
			if sameBucket(merged[i], in) {
				merged[i].Units += in.Units
				merged[i].Stops += in.Stops
				merged[i].IdleTime += in.IdleTime
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, in)
		}
	}
	s.samples = append(s.samples, merged...)
	sortChronological(s.samples)
}

// Prune drops every sample strictly older than now minus the retention
// window and returns how many were removed.
func (s *Store) Prune(now time.Time) int {
	cutoff := now.AddDate(0, 0, -s.retentionDays)
	kept := s.samples[:0]
	removed := 0
	for _, smp := range s.samples {
		if smp.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, smp)
	}
	s.samples = kept
	return removed
}

// SamplesForHour returns every retained sample whose hour-of-day matches,
// across all retained days.
func (s *Store) SamplesForHour(hour int) []Sample {
	hour = wrapHour(hour)
	var out []Sample
	for _, smp := range s.samples {
		if smp.Hour == hour {
			out = append(out, smp)
		}
	}
	return out
}

// Recent returns, in chronological order, at most n of the latest samples
// whose timestamp lies within window before now.
func (s *Store) Recent(now time.Time, window time.Duration, n int) []Sample {
	var within []Sample
	for _, smp := range s.samples {
		if now.Sub(smp.Timestamp) <= window {
			within = append(within, smp)
		}
	}
	if n > 0 && len(within) > n {
		within = within[len(within)-n:]
	}
	return within
}

// Samples returns a chronological copy of all retained samples.
func (s *Store) Samples() []Sample {
	out := make([]Sample, len(s.samples))
	copy(out, s.samples)
	return out
}

// Velocities returns the velocity of every retained sample.
func (s *Store) Velocities() []float64 {
	out := make([]float64, 0, len(s.samples))
	for _, smp := range s.samples {
		out = append(out, smp.Velocity())
	}
	return out
}

// Len returns the number of retained samples.
func (s *Store) Len() int {
	return len(s.samples)
}

// RetentionDays returns the configured retention window.
func (s *Store) RetentionDays() int {
	return s.retentionDays
}

func sortChronological(samples []Sample) {
	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Timestamp.Before(samples[j].Timestamp)
	})
}

// wrapHour maps any integer hour onto 0-23.
func wrapHour(h int) int {
	h %= 24
	if h < 0 {
		h += 24
	}
	return h
}
