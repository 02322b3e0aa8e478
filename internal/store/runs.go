package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
)

// SaveProjectionRun records a projection run and its per-horizon results,
// returning the run ID.
func (db *DB) SaveProjectionRun(ctx context.Context, run ProjectionRun, projections []analyzer.Projection) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT INTO projection_runs (taken_at, command, version, snapshot_id) VALUES (?, ?, ?, ?)",
		run.TakenAt.UTC().Format(time.RFC3339), run.Command, run.Version, run.SnapshotID,
	)
	if err != nil {
		return 0, err
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, p := range projections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO projections
			(run_id, horizon, cumulative_units, efficiency, confidence, gap)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, p.Horizon, p.CumulativeUnits, p.Efficiency, p.Confidence, p.Gap,
		); err != nil {
			return 0, fmt.Errorf("inserting projection: %w", err)
		}
	}
	return runID, tx.Commit()
}

// GetLatestRun returns the most recent projection run, or nil if none exist.
func (db *DB) GetLatestRun(ctx context.Context) (*ProjectionRun, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, taken_at, command, version, snapshot_id FROM projection_runs ORDER BY id DESC LIMIT 1",
	)
	return scanRun(row)
}

// GetRunN returns the Nth most recent run (1 = latest, 2 = previous, etc.).
func (db *DB) GetRunN(ctx context.Context, n int) (*ProjectionRun, error) {
	row := db.conn.QueryRowContext(ctx,
		"SELECT id, taken_at, command, version, snapshot_id FROM projection_runs ORDER BY id DESC LIMIT 1 OFFSET ?",
		n-1,
	)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*ProjectionRun, error) {
	var r ProjectionRun
	var takenAt string
	var snapshotID sql.NullString
	err := row.Scan(&r.ID, &takenAt, &r.Command, &r.Version, &snapshotID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.TakenAt, _ = time.Parse(time.RFC3339, takenAt)
	r.SnapshotID = snapshotID.String
	return &r, nil
}

// GetRunProjections returns the projections of a run ordered by horizon.
func (db *DB) GetRunProjections(ctx context.Context, runID int64) ([]ProjectionRow, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT run_id, horizon, cumulative_units, efficiency, confidence, gap
		FROM projections WHERE run_id = ? ORDER BY horizon`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []ProjectionRow
	for rows.Next() {
		var p ProjectionRow
		if err := rows.Scan(&p.RunID, &p.Horizon, &p.CumulativeUnits, &p.Efficiency, &p.Confidence, &p.Gap); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// LatestProjectionFor returns the most recently saved projection for the
// given horizon, or nil if none exists.
func (db *DB) LatestProjectionFor(ctx context.Context, horizon int) (*ProjectionRow, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT run_id, horizon, cumulative_units, efficiency, confidence, gap
		FROM projections WHERE horizon = ? ORDER BY run_id DESC LIMIT 1`,
		horizon,
	)
	var p ProjectionRow
	err := row.Scan(&p.RunID, &p.Horizon, &p.CumulativeUnits, &p.Efficiency, &p.Confidence, &p.Gap)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompareRuns returns the per-horizon efficiency change between two runs.
// Horizons missing from either run are omitted.
func (db *DB) CompareRuns(ctx context.Context, oldRunID, newRunID int64) (map[int]float64, error) {
	oldRows, err := db.GetRunProjections(ctx, oldRunID)
	if err != nil {
		return nil, err
	}
	newRows, err := db.GetRunProjections(ctx, newRunID)
	if err != nil {
		return nil, err
	}
	prev := make(map[int]float64, len(oldRows))
	for _, r := range oldRows {
		prev[r.Horizon] = r.Efficiency
	}
	delta := make(map[int]float64)
	for _, r := range newRows {
		if old, ok := prev[r.Horizon]; ok {
			delta[r.Horizon] = r.Efficiency - old
		}
	}
	return delta, nil
}
