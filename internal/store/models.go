package store

import (
	"time"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

type Setting struct {
	Key   string
	Value string
}

// CachedRange is a range payload read back from the snapshot cache.
type CachedRange struct {
	Payload   mirror.RangePayload
	FetchedAt time.Time
}

type CachedToday struct {
	Payload   mirror.TodayPayload
	FetchedAt time.Time
}

// SnapshotInfo describes one cached range without decoding it.
type SnapshotInfo struct {
	Range     calendar.Range
	FetchedAt time.Time
	Bytes     int
}

// Fetch kinds.
const (
	FetchToday = "today"
	FetchRange = "range"
	FetchGoals = "goals"
)

// Fetch is one backend request in the history.
type Fetch struct {
	ID         int64
	Kind       string
	RangeStart string
	RangeEnd   string
	StartedAt  time.Time
	Duration   time.Duration
	Status     int    // HTTP status, 0 when unreachable
	Error      string // empty on success
}

func (f Fetch) OK() bool { return f.Error == "" }

// FetchFilter narrows ListFetches.
type FetchFilter struct {
	Kind   string
	OnlyOK bool
	From   *time.Time
	Limit  int
}
