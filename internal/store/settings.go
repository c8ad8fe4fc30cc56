package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// Setting keys.
const (
	KeyBackendURL  = "backend_url"
	KeyToken       = "token"
	KeyViewMode    = "view_mode"
	KeyWeekCursor  = "week_cursor"
	KeyMonthCursor = "month_cursor"
	KeyMetric      = "metric"
	KeyCacheKeep   = "cache_keep"
)

// ErrNoSetting is returned by GetSetting for a key that was never written.
var ErrNoSetting = errors.New("setting not found")

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get setting %q: %w", key, ErrNoSetting)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	return s.SetSettings(Setting{Key: key, Value: value})
}

// SetSettings writes all values in one transaction, so a view state or a
// backend URL and its token are never stored half updated.
func (s *Store) SetSettings(values ...Setting) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin settings: %w", err)
	}
	defer tx.Rollback()

	for _, v := range values {
		_, err := tx.Exec(
			`INSERT INTO settings (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			v.Key, v.Value,
		)
		if err != nil {
			return fmt.Errorf("set setting %q: %w", v.Key, err)
		}
	}
	return tx.Commit()
}

// GetAllSettings lists every stored setting by key. The token is returned
// as stored; callers mask it for display.
func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var out []Setting
	for rows.Next() {
		var kv Setting
		if err := rows.Scan(&kv.Key, &kv.Value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out = append(out, kv)
	}
	return out, rows.Err()
}
