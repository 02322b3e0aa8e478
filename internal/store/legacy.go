package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/blackwell-systems/shiftwatch/internal/history"
)

// legacySample is the browser-storage export of one hourly sample.
type legacySample struct {
	Date     string   `json:"fecha"`
	Hour     int      `json:"hora"`
	Velocity float64  `json:"velocidad"`
	Units    *float64 `json:"bultos"`
	Stops    int      `json:"paradas"`
	IdleTime float64  `json:"tiempoMuerto"`
}

// legacyOutcome is the browser-storage export of one calibration record.
type legacyOutcome struct {
	Date          string  `json:"fecha"`
	Horizon       int     `json:"horizonte"`
	Actual        float64 `json:"valorReal"`
	Projected     float64 `json:"valorProyectado"`
	AbsoluteError float64 `json:"errorAbsoluto"`
	RelativeError float64 `json:"errorRelativo"`
}

// DecodeLegacyHistory parses a JSON array of browser-exported samples.
// An unparsable payload yields no samples; entries with a bad date are
// skipped. Both cases are logged.
//
// The exported date is UTC while the hour is the browser's local hour, so
// dates are moved into loc, the zone the hours were recorded in.
func DecodeLegacyHistory(ctx context.Context, data []byte, loc *time.Location, logger *slog.Logger) []history.Sample {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	var raw []legacySample
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.WarnContext(ctx, "discarding unreadable legacy history", "error", err)
		return nil
	}

	out := make([]history.Sample, 0, len(raw))
	for _, r := range raw {
		ts, ok := parseLegacyTime(r.Date)
		if !ok {
			logger.WarnContext(ctx, "skipping legacy sample with bad date", "fecha", r.Date)
			continue
		}
		units := r.Velocity
		if r.Units != nil {
			units = *r.Units
		}
		out = append(out, history.Sample{
			Timestamp: ts.In(loc),
			Hour:      r.Hour,
			Units:     units,
			Stops:     r.Stops,
			IdleTime:  r.IdleTime,
		})
	}
	return out
}

// DecodeLegacyOutcomes parses a JSON array of browser-exported calibration
// records, with the same fallbacks as DecodeLegacyHistory.
func DecodeLegacyOutcomes(ctx context.Context, data []byte, logger *slog.Logger) []analyzer.ErrorRecord {
	if logger == nil {
		logger = slog.Default()
	}
	var raw []legacyOutcome
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.WarnContext(ctx, "discarding unreadable legacy outcome log", "error", err)
		return nil
	}

	out := make([]analyzer.ErrorRecord, 0, len(raw))
	for _, r := range raw {
		ts, ok := parseLegacyTime(r.Date)
		if !ok {
			logger.WarnContext(ctx, "skipping legacy outcome with bad date", "fecha", r.Date)
			continue
		}
		out = append(out, analyzer.ErrorRecord{
			Timestamp:     ts,
			Horizon:       r.Horizon,
			Actual:        r.Actual,
			Projected:     r.Projected,
			AbsoluteError: r.AbsoluteError,
			RelativeError: r.RelativeError,
		})
	}
	return out
}

func parseLegacyTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
