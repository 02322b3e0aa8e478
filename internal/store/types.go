// Package store provides SQLite persistence for shift history, calibration
// outcomes, the live snapshot and saved projection runs.
package store

import "time"

// ProjectionRun is one saved execution of the projection engine.
type ProjectionRun struct {
	ID         int64     `json:"id"`
	TakenAt    time.Time `json:"taken_at"`
	Command    string    `json:"command"`
	Version    string    `json:"version"`
	SnapshotID string    `json:"snapshot_id"`
}

// ProjectionRow is a single horizon of a saved run.
type ProjectionRow struct {
	RunID           int64   `json:"run_id"`
	Horizon         int     `json:"horizon"`
	CumulativeUnits float64 `json:"cumulative_units"`
	Efficiency      float64 `json:"efficiency"`
	Confidence      float64 `json:"confidence"`
	Gap             float64 `json:"gap"`
}
