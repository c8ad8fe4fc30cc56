package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordFetch appends one request to the fetch history.
func (s *Store) RecordFetch(f Fetch) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO fetches (kind, range_start, range_end, started_at, duration_ms, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.Kind, f.RangeStart, f.RangeEnd, f.StartedAt.UTC().Format(time.RFC3339),
		f.Duration.Milliseconds(), f.Status, f.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("record fetch: %w", err)
	}
	return res.LastInsertId()
}

// LastFetch returns the most recent fetch of kind, or nil when there is
// none. An empty kind matches any.
func (s *Store) LastFetch(kind string) (*Fetch, error) {
	list, err := s.ListFetches(FetchFilter{Kind: kind, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// LastSuccess returns the most recent fetch without an error, or nil.
func (s *Store) LastSuccess() (*Fetch, error) {
	list, err := s.ListFetches(FetchFilter{OnlyOK: true, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *Store) ListFetches(f FetchFilter) ([]Fetch, error) {
	query := `SELECT id, kind, range_start, range_end, started_at, duration_ms, status, error FROM fetches WHERE 1=1`
	var args []any

	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	if f.OnlyOK {
		query += ` AND error = ''`
	}
	if f.From != nil {
		query += ` AND started_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fetches: %w", err)
	}
	defer rows.Close()

	var out []Fetch
	for rows.Next() {
		var e Fetch
		var startedAt string
		var ms sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Kind, &e.RangeStart, &e.RangeEnd, &startedAt, &ms, &e.Status, &e.Error); err != nil {
			return nil, err
		}
		e.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		e.Duration = time.Duration(ms.Int64) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}

// FetchStats counts fetches and failures since from.
func (s *Store) FetchStats(from time.Time) (total, failed int, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN error != '' THEN 1 ELSE 0 END), 0)
		FROM fetches WHERE started_at >= ?`, from.UTC().Format(time.RFC3339),
	).Scan(&total, &failed)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch stats: %w", err)
	}
	return total, failed, nil
}
