package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

// ErrNoSnapshot is returned when nothing is cached for the requested key.
var ErrNoSnapshot = errors.New("no cached snapshot")

// SaveRange caches p under the requested range r, replacing any earlier
// copy. The payload's own range may differ when the backend clips it.
func (s *Store) SaveRange(r calendar.Range, p mirror.RangePayload, fetchedAt time.Time) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode range snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO range_snapshots (range_start, range_end, payload, fetched_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(range_start, range_end) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		r.Start.String(), r.End.String(), string(data), fetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save range snapshot: %w", err)
	}
	return nil
}

// LoadRange returns the cached payload for r, or ErrNoSnapshot.
func (s *Store) LoadRange(r calendar.Range) (*CachedRange, error) {
	var data, fetchedAt string
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM range_snapshots WHERE range_start = ? AND range_end = ?`,
		r.Start.String(), r.End.String(),
	).Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load range snapshot %s: %w", r, err)
	}

	c := &CachedRange{}
	if err := json.Unmarshal([]byte(data), &c.Payload); err != nil {
		return nil, fmt.Errorf("decode range snapshot %s: %w", r, err)
	}
	c.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return c, nil
}

// SaveToday caches the today payload under its date.
func (s *Store) SaveToday(p mirror.TodayPayload, fetchedAt time.Time) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode today snapshot: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO today_snapshots (day, payload, fetched_at) VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		p.Date.String(), string(data), fetchedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save today snapshot: %w", err)
	}
	return nil
}

// LoadToday returns the cached today payload for d, or ErrNoSnapshot.
func (s *Store) LoadToday(d calendar.Date) (*CachedToday, error) {
	var data, fetchedAt string
	err := s.db.QueryRow(
		`SELECT payload, fetched_at FROM today_snapshots WHERE day = ?`, d.String(),
	).Scan(&data, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load today snapshot %s: %w", d, err)
	}

	c := &CachedToday{}
	if err := json.Unmarshal([]byte(data), &c.Payload); err != nil {
		return nil, fmt.Errorf("decode today snapshot %s: %w", d, err)
	}
	c.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
	return c, nil
}

// ListSnapshots returns cached ranges, most recently fetched first.
func (s *Store) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(
		`SELECT range_start, range_end, fetched_at, length(payload) FROM range_snapshots
		 ORDER BY fetched_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var start, end, fetchedAt string
		var info SnapshotInfo
		if err := rows.Scan(&start, &end, &fetchedAt, &info.Bytes); err != nil {
			return nil, err
		}
		r, err := calendar.ParseRange(start, end)
		if err != nil {
			continue
		}
		info.Range = r
		info.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// PruneSnapshots keeps the keep most recently fetched ranges plus any range
// covering today, and drops today snapshots older than a week. It returns
// how many rows went.
func (s *Store) PruneSnapshots(keep int, today calendar.Date) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	day := today.String()
	res, err := s.db.Exec(
		`DELETE FROM range_snapshots
		 WHERE NOT (range_start <= ? AND range_end >= ?)
		   AND id NOT IN (
			SELECT id FROM range_snapshots ORDER BY fetched_at DESC, id DESC LIMIT ?
		)`, day, day, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune range snapshots: %w", err)
	}
	n, _ := res.RowsAffected()

	res, err = s.db.Exec(`DELETE FROM today_snapshots WHERE day < ?`, today.AddDays(-7).String())
	if err != nil {
		return n, fmt.Errorf("prune today snapshots: %w", err)
	}
	m, _ := res.RowsAffected()
	return n + m, nil
}
