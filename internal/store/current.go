package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/shift"
)

// SaveSnapshot stores s as the live snapshot, replacing any previous one.
// SavedAt is set to now when it is zero.
func (db *DB) SaveSnapshot(ctx context.Context, s shift.Snapshot, now time.Time) error {
	if s.SavedAt.IsZero() {
		s.SavedAt = now
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO current_snapshot (id, saved_at, payload) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at, payload = excluded.payload`,
		s.SavedAt.Format(time.RFC3339Nano), string(payload),
	)
	return err
}

// LoadSnapshot returns the live snapshot, or nil if none has been saved or
// the stored payload is unreadable.
func (db *DB) LoadSnapshot(ctx context.Context) (*shift.Snapshot, error) {
	var payload string
	err := db.conn.QueryRowContext(ctx, "SELECT payload FROM current_snapshot WHERE id = 1").Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s shift.Snapshot
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		db.logger.WarnContext(ctx, "discarding unreadable snapshot", "error", err)
		return nil, nil
	}
	return &s, nil
}
