package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

// SaveViewState persists the parts of st that survive a restart. The
// emotion selection is not kept.
func (s *Store) SaveViewState(st mirror.ViewState) error {
	err := s.SetSettings(
		Setting{KeyViewMode, st.Mode.String()},
		Setting{KeyWeekCursor, st.WeekCursor.String()},
		Setting{KeyMonthCursor, st.MonthCursor.String()},
		Setting{KeyMetric, st.Metric.Category},
	)
	if err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

// LoadViewState restores the last view. Missing or unreadable values fall
// back to today's defaults, and a cursor in the future is pulled back.
func (s *Store) LoadViewState(today calendar.Date) mirror.ViewState {
	st := mirror.NewViewState(today)

	if v, err := s.GetSetting(KeyViewMode); err == nil {
		if m, ok := mirror.ParseMode(v); ok {
			st.Mode = m
		}
	}
	if v, err := s.GetSetting(KeyWeekCursor); err == nil {
		if d, err := calendar.ParseDate(v); err == nil && !d.After(today) {
			st.WeekCursor = d
		}
	}
	if v, err := s.GetSetting(KeyMonthCursor); err == nil {
		if ym, err := calendar.ParseYearMonth(v); err == nil && ym.Compare(today.YearMonth()) <= 0 {
			st.MonthCursor = ym
		}
	}
	if v, err := s.GetSetting(KeyMetric); err == nil && strings.TrimSpace(v) != "" {
		st.Metric = mirror.CategoryMetric(v)
	}
	return st
}

// Backend returns the stored backend URL and token; either may be empty.
func (s *Store) Backend() (url, token string) {
	url, _ = s.GetSetting(KeyBackendURL)
	token, _ = s.GetSetting(KeyToken)
	return url, token
}

func (s *Store) SetBackend(url, token string) error {
	err := s.SetSettings(
		Setting{KeyBackendURL, strings.TrimSpace(url)},
		Setting{KeyToken, strings.TrimSpace(token)},
	)
	if err != nil {
		return fmt.Errorf("set backend: %w", err)
	}
	return nil
}

// CacheKeep is how many range snapshots to keep.
func (s *Store) CacheKeep() int {
	v, err := s.GetSetting(KeyCacheKeep)
	if err != nil {
		return 60
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 60
	}
	return n
}
