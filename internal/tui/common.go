package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/mirror/internal/backend"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/goals"
	"github.com/sadopc/mirror/internal/mirror"
	"github.com/sadopc/mirror/internal/store"
)

// viewState represents the currently active tab.
type viewState int

const (
	viewToday viewState = iota
	viewWeek
	viewMonth
	viewSettings
)

var viewNames = []string{"Today", "Week", "Month", "Settings"}

// mode maps a tab to the dashboard mode it shows.
func (v viewState) mode() mirror.Mode {
	switch v {
	case viewWeek:
		return mirror.ModeWeek
	case viewMonth:
		return mirror.ModeMonth
	}
	return mirror.ModeToday
}

func viewFor(m mirror.Mode) viewState {
	switch m {
	case mirror.ModeWeek:
		return viewWeek
	case mirror.ModeMonth:
		return viewMonth
	}
	return viewToday
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// rangeDataMsg carries a finished range fetch. seq identifies the request;
// only the latest one is applied.
type rangeDataMsg struct {
	seq    uint64
	result feed.RangeResult
	err    error
}

type todayDataMsg struct {
	seq      uint64
	result   feed.TodayResult
	err      error
	goals    []goals.Goal
	goalsErr error
}

type settingsDataMsg struct {
	url         string
	token       string
	lastFetch   *store.Fetch
	lastSuccess *store.Fetch
	total       int
	failed      int
	snapshots   []store.SnapshotInfo
	cacheKeep   int
	err         error // first store error hit while loading
}

type backendChangedMsg struct{}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// describeError phrases a fetch failure for the status line.
func describeError(err error) string {
	if errors.Is(err, backend.ErrNotConfigured) {
		return "No backend configured. Press 4 to open Settings."
	}
	var fe *backend.FetchError
	if errors.As(err, &fe) && fe.Unauthorized() {
		return "Backend rejected the token. Check it in Settings."
	}
	return fmt.Sprintf("%v. Press r to retry.", err)
}

// formatAgo renders how long ago t was, coarsely.
func formatAgo(now, t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return t.Local().Format("Jan 02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
