package analyzer

import (
	"math"
	"sort"
	"time"
)

// MaxOutcomeRecords is how many realized-vs-projected records are kept.
const MaxOutcomeRecords = 100

// ErrorRecord compares a projection with the value that was later observed.
type ErrorRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	Horizon       int       `json:"horizon"`
	Actual        float64   `json:"actual"`
	Projected     float64   `json:"projected"`
	AbsoluteError float64   `json:"absolute_error"`
	RelativeError float64   `json:"relative_error"`
}

// AccuracyReport summarizes projection precision over the kept records.
type AccuracyReport struct {
	Count             int     `json:"count"`
	MeanRelativeError float64 `json:"mean_relative_error"`
	Precision         float64 `json:"precision"`
}

// HorizonAccuracy is an AccuracyReport restricted to one horizon.
type HorizonAccuracy struct {
	Horizon int `json:"horizon"`
	AccuracyReport
}

// Calibration keeps a bounded FIFO log of projection errors.
type Calibration struct {
	records []ErrorRecord
}

// NewCalibration returns an empty tracker.
func NewCalibration() *Calibration {
	return &Calibration{}
}

// Record appends the outcome of a projection and evicts the oldest records
// beyond MaxOutcomeRecords.
func (c *Calibration) Record(now time.Time, horizon int, actual, projected float64) ErrorRecord {
	absErr := finite(math.Abs(actual - projected))
	var relErr float64
	if actual > 0 {
		relErr = finite(absErr / actual)
	}
	rec := ErrorRecord{
		Timestamp:     now,
		Horizon:       horizon,
		Actual:        actual,
		Projected:     projected,
		AbsoluteError: absErr,
		RelativeError: relErr,
	}
	c.records = append(c.records, rec)
	c.trim()
	return rec
}

// Replace loads previously persisted records, keeping only the newest
// MaxOutcomeRecords.
func (c *Calibration) Replace(records []ErrorRecord) {
	c.records = make([]ErrorRecord, len(records))
	copy(c.records, records)
	c.trim()
}

func (c *Calibration) trim() {
	if over := len(c.records) - MaxOutcomeRecords; over > 0 {
		c.records = append([]ErrorRecord(nil), c.records[over:]...)
	}
}

// Records returns a copy of the kept records, oldest first.
func (c *Calibration) Records() []ErrorRecord {
	out := make([]ErrorRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Report computes the precision over every kept record.
func (c *Calibration) Report() AccuracyReport {
	return summarize(c.records)
}

// ReportByHorizon computes one report per horizon, ordered by horizon.
func (c *Calibration) ReportByHorizon() []HorizonAccuracy {
	byHorizon := make(map[int][]ErrorRecord)
	for _, r := range c.records {
		byHorizon[r.Horizon] = append(byHorizon[r.Horizon], r)
	}

	out := make([]HorizonAccuracy, 0, len(byHorizon))
	for h, recs := range byHorizon {
		out = append(out, HorizonAccuracy{Horizon: h, AccuracyReport: summarize(recs)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Horizon < out[j].Horizon })
	return out
}

func summarize(records []ErrorRecord) AccuracyReport {
	if len(records) == 0 {
		return AccuracyReport{}
	}
	var sum float64
	for _, r := range records {
		sum += r.RelativeError
	}
	mean := sum / float64(len(records))
	return AccuracyReport{
		Count:             len(records),
		MeanRelativeError: mean,
		Precision:         (1 - mean) * 100,
	}
}
