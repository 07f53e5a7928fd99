package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Routing is one record handed to one persona.
type Routing struct {
	ID       int64
	RecordID string
	Kind     string
	Target   string
	Action   string
	Event    string
	Artist   string
	Date     string
	Context  string
	RoutedAt int64
}

// Offset returns the stored line offset for a consumer, or 0 if none.
func (db *DB) Offset(name string) (int64, error) {
	var off int64
	err := db.QueryRow("SELECT line_offset FROM consumer_offsets WHERE name = ?", name).Scan(&off)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get offset %s: %w", name, err)
	}
	return off, nil
}

// CommitBatch records routings and advances the consumer offset in one
// transaction, so a crash never routes a line twice or skips one.
// Routings already recorded for the same record and target are ignored.
func (db *DB) CommitBatch(name string, offset int64, routings []Routing) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for _, r := range routings {
		at := r.RoutedAt
		if at == 0 {
			at = now
		}
		if _, err := tx.Exec(`
			INSERT OR IGNORE INTO routings (record_id, kind, target, action, event, artist, date, context, routed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.RecordID, r.Kind, r.Target, r.Action, r.Event, r.Artist, r.Date, r.Context, at); err != nil {
			return fmt.Errorf("insert routing %s/%s: %w", r.RecordID, r.Target, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO consumer_offsets (name, line_offset, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET line_offset = excluded.line_offset, updated_at = excluded.updated_at
	`, name, offset, now); err != nil {
		return fmt.Errorf("save offset %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// ListRoutings returns routings, newest first. An empty target lists all.
func (db *DB) ListRoutings(target string, limit int) ([]Routing, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, record_id, kind, target, action, COALESCE(event, ''), COALESCE(artist, ''),
		       COALESCE(date, ''), COALESCE(context, ''), routed_at
		FROM routings`
	args := []any{}
	if target != "" {
		query += " WHERE target = ?"
		args = append(args, target)
	}
	query += " ORDER BY routed_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list routings: %w", err)
	}
	defer rows.Close()

	var out []Routing
	for rows.Next() {
		var r Routing
		if err := rows.Scan(&r.ID, &r.RecordID, &r.Kind, &r.Target, &r.Action, &r.Event,
			&r.Artist, &r.Date, &r.Context, &r.RoutedAt); err != nil {
			return nil, fmt.Errorf("scan routing: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRoutings returns routing counts per target.
func (db *DB) CountRoutings() (map[string]int, error) {
	rows, err := db.Query("SELECT target, COUNT(*) FROM routings GROUP BY target")
	if err != nil {
		return nil, fmt.Errorf("count routings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var target string
		var n int
		if err := rows.Scan(&target, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[target] = n
	}
	return counts, rows.Err()
}
