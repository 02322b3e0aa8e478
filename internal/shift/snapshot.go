// Package shift models the live state of the current shift: the raw
// transactions handled so far and the running totals derived from them.
package shift

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/history"
)

// ErrInvalidSnapshot is returned when snapshot totals are negative or not finite.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// Transaction is one handled load as reported by the collection pages.
type Transaction struct {
	Date            time.Time `json:"date" yaml:"date"`
	User            string    `json:"user" yaml:"user"`
	Units           float64   `json:"units" yaml:"units"`
	DestinationArea string    `json:"destination_area,omitempty" yaml:"destination_area"`
	LoadNumber      string    `json:"load_number,omitempty" yaml:"load_number"`
}

// Snapshot is the current shift's running totals as of a point in time.
type Snapshot struct {
	ID               string        `json:"id"`
	Hour             int           `json:"hour"`
	Minute           int           `json:"minute"`
	HoursWorked      float64       `json:"hours_worked"`
	Units            float64       `json:"units"`
	Stops            int           `json:"stops"`
	IdleTime         float64       `json:"idle_time"`
	Velocity         float64       `json:"velocity"`
	Transactions     []Transaction `json:"transactions,omitempty"`
	FirstTransaction *time.Time    `json:"first_transaction,omitempty"`
	LastTransaction  *time.Time    `json:"last_transaction,omitempty"`
	SavedAt          time.Time     `json:"saved_at"`
	Module           string        `json:"module,omitempty"`
}

// Normalize validates the snapshot and derives velocity from units and hours
// when it was left unset.
func (s *Snapshot) Normalize() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"hours worked", s.HoursWorked},
		{"units", s.Units},
		{"stops", float64(s.Stops)},
		{"idle time", s.IdleTime},
		{"velocity", s.Velocity},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || c.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", ErrInvalidSnapshot, c.name, c.value)
		}
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: hour must be within 0-23, got %d", ErrInvalidSnapshot, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: minute must be within 0-59, got %d", ErrInvalidSnapshot, s.Minute)
	}

	if s.Velocity == 0 && s.HoursWorked > 0 {
		s.Velocity = s.Units / s.HoursWorked
	}
	return nil
}

// HourlySamples groups the snapshot's transactions into hourly history samples.
func (s *Snapshot) HourlySamples() []history.Sample {
	records := make([]history.Activity, 0, len(s.Transactions))
	for _, tx := range s.Transactions {
		records = append(records, history.Activity{At: tx.Date, Units: tx.Units})
	}
	return history.FromActivity(records)
}

// IsRecent reports whether the snapshot was saved less than maxAge before now.
func IsRecent(s *Snapshot, now time.Time, maxAge time.Duration) bool {
	if s == nil || s.SavedAt.IsZero() {
		return false
	}
	return now.Sub(s.SavedAt) < maxAge
}
