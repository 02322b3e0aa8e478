package store

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/history"
)

// LoadHistory returns every stored sample in chronological order. Rows whose
// timestamp cannot be parsed are skipped.
func (db *DB) LoadHistory(ctx context.Context) ([]history.Sample, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT sampled_at, hour, units, stops, idle_time FROM samples ORDER BY sampled_at, id",
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var samples []history.Sample
	for rows.Next() {
		var s history.Sample
		var sampledAt string
		if err := rows.Scan(&sampledAt, &s.Hour, &s.Units, &s.Stops, &s.IdleTime); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, sampledAt)
		if err != nil {
			db.logger.WarnContext(ctx, "skipping sample with bad timestamp", "sampled_at", sampledAt, "error", err)
			continue
		}
		s.Timestamp = ts
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// SaveHistory replaces the stored samples with the given set.
func (db *DB) SaveHistory(ctx context.Context, samples []history.Sample) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM samples"); err != nil {
		return fmt.Errorf("clearing samples: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO samples (sampled_at, hour, units, stops, idle_time) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, s := range samples {
		if _, err := stmt.ExecContext(ctx,
			s.Timestamp.Format(time.RFC3339Nano), s.Hour, s.Units, s.Stops, s.IdleTime,
		); err != nil {
			return fmt.Errorf("inserting sample: %w", err)
		}
	}
	return tx.Commit()
}
