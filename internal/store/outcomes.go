package store

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
)

// LoadOutcomes returns the stored calibration records, oldest first. Rows
// whose timestamp cannot be parsed are skipped.
func (db *DB) LoadOutcomes(ctx context.Context) ([]analyzer.ErrorRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT recorded_at, horizon, actual, projected, absolute_error, relative_error
		FROM outcomes ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []analyzer.ErrorRecord
	for rows.Next() {
		var r analyzer.ErrorRecord
		var recordedAt string
		if err := rows.Scan(&recordedAt, &r.Horizon, &r.Actual, &r.Projected,
			&r.AbsoluteError, &r.RelativeError); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			db.logger.WarnContext(ctx, "skipping outcome with bad timestamp", "recorded_at", recordedAt, "error", err)
			continue
		}
		r.Timestamp = ts
		records = append(records, r)
	}
	return records, rows.Err()
}

// SaveOutcomes replaces the stored calibration records with the given set.
func (db *DB) SaveOutcomes(ctx context.Context, records []analyzer.ErrorRecord) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM outcomes"); err != nil {
		return fmt.Errorf("clearing outcomes: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes
		(recorded_at, horizon, actual, projected, absolute_error, relative_error)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Timestamp.Format(time.RFC3339Nano), r.Horizon, r.Actual, r.Projected,
			r.AbsoluteError, r.RelativeError,
		); err != nil {
			return fmt.Errorf("inserting outcome: %w", err)
		}
	}
	return tx.Commit()
}
