package shift

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// IdleTotal is the accumulated idle time for one idle-gap threshold.
type IdleTotal struct {
	Total float64 `json:"total" yaml:"total"`
}

// UserStats is the per-user summary produced by the performance pages.
type UserStats struct {
	TotalUnits       float64    `json:"total_units" yaml:"total_units"`
	TotalStops       int        `json:"total_stops" yaml:"total_stops"`
	Idle5Min         *IdleTotal `json:"idle_5min,omitempty" yaml:"idle_5min"`
	Idle3Min         *IdleTotal `json:"idle_3min,omitempty" yaml:"idle_3min"`
	FirstTransaction string     `json:"first_transaction,omitempty" yaml:"first_transaction"`
	LastTransaction  string     `json:"last_transaction,omitempty" yaml:"last_transaction"`
}

// RawTransaction is a transaction as found in an input file, with its date
// still unparsed.
type RawTransaction struct {
	Date            string  `json:"date" yaml:"date"`
	User            string  `json:"user" yaml:"user"`
	Units           float64 `json:"units" yaml:"units"`
	DestinationArea string  `json:"destination_area" yaml:"destination_area"`
	LoadNumber      string  `json:"load_number" yaml:"load_number"`
}

// ProcessedData is the payload handed over by the collection layer after it
// has filtered a day's transactions.
type ProcessedData struct {
	Users                map[string]UserStats `json:"users" yaml:"users"`
	FilteredTransactions []RawTransaction     `json:"filtered_transactions" yaml:"filtered_transactions"`
	FirstTransactionDate string               `json:"first_transaction_date,omitempty" yaml:"first_transaction_date"`
	Module               string               `json:"module,omitempty" yaml:"module"`
}

// ReadProcessedData decodes a processed-data file. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON.
func ReadProcessedData(path string) (*ProcessedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pd ProcessedData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pd); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &pd); err != nil {
			return nil, fmt.Errorf("parsing json: %w", err)
		}
	}
	return &pd, nil
}

// Reduce turns processed data into a validated snapshot as of now. When the
// transactions carry no usable time span, hours worked fall back to the time
// elapsed since shiftStartHour.
//
// Every parsed timestamp is moved into now's location, so transaction hours
// and the snapshot clock share one zone even when the input is UTC.
func Reduce(pd *ProcessedData, now time.Time, shiftStartHour int) (*Snapshot, error) {
	if pd == nil {
		return nil, fmt.Errorf("%w: no processed data", ErrInvalidSnapshot)
	}

	snap := &Snapshot{
		ID:      uuid.NewString(),
		Hour:    now.Hour(),
		Minute:  now.Minute(),
		SavedAt: now,
		Module:  pd.Module,
	}
	if snap.Module == "" {
		snap.Module = "general"
	}

	loc := now.Location()
	var first, last time.Time

	names := make([]string, 0, len(pd.Users))
	for name := range pd.Users {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		u := pd.Users[name]
		snap.Units += u.TotalUnits
		snap.Stops += u.TotalStops

		// The 5-minute idle total wins over the 3-minute one.
		switch {
		case u.Idle5Min != nil && u.Idle5Min.Total != 0:
			snap.IdleTime += u.Idle5Min.Total
		case u.Idle3Min != nil && u.Idle3Min.Total != 0:
			snap.IdleTime += u.Idle3Min.Total
		}

		if t, ok := ParseTime(u.FirstTransaction, loc); ok && (first.IsZero() || t.Before(first)) {
			first = t
		}
		if t, ok := ParseTime(u.LastTransaction, loc); ok && (last.IsZero() || t.After(last)) {
			last = t
		}
	}

	for _, raw := range pd.FilteredTransactions {
		tx := Transaction{
			User:            raw.User,
			Units:           raw.Units,
			DestinationArea: raw.DestinationArea,
			LoadNumber:      raw.LoadNumber,
		}
		if t, ok := ParseTime(raw.Date, loc); ok {
			tx.Date = t
		}
		snap.Transactions = append(snap.Transactions, tx)
	}

	if first.IsZero() {
		if t, ok := ParseTime(pd.FirstTransactionDate, loc); ok {
			first = t
		}
	}
	if first.IsZero() || last.IsZero() {
		var dates []time.Time
		for _, tx := range snap.Transactions {
			if !tx.Date.IsZero() {
				dates = append(dates, tx.Date)
			}
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		if len(dates) > 0 {
			if first.IsZero() {
				first = dates[0]
			}
			if last.IsZero() {
				last = dates[len(dates)-1]
			}
		}
	}

	if !first.IsZero() && !last.IsZero() {
		snap.HoursWorked = last.Sub(first).Hours()
		f, l := first, last
		snap.FirstTransaction = &f
		snap.LastTransaction = &l
	} else {
		snap.HoursWorked = float64(now.Hour()-shiftStartHour) + float64(now.Minute())/60
	}
	snap.HoursWorked = math.Max(0, snap.HoursWorked)

	if snap.HoursWorked > 0 {
		snap.Velocity = snap.Units / snap.HoursWorked
	}

	if err := snap.Normalize(); err != nil {
		return nil, err
	}
	return snap, nil
}

// timeLayouts are the timestamp formats accepted in input files.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime parses a timestamp in any accepted layout and returns it in loc.
// Timestamps without a zone are taken as wall-clock times in loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}
