// Package goals normalizes goal records from the backend into a single
// completion signal.
//
// completed_at is the only canonical signal. Older records may instead
// carry a status string or a boolean flag; those are read once here and
// nowhere else. Progress reaching the target does not complete a goal.
package goals

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Source records which field decided a goal's completion.
type Source string

const (
	SourceNone        Source = ""
	SourceCompletedAt Source = "completed_at"
	SourceStatus      Source = "status"
	SourceIsCompleted Source = "is_completed"
	SourceCompleted   Source = "completed"
)

// Number decodes a JSON number or numeric string. Anything else leaves it
// unset.
type Number struct {
	Value float64
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	var f float64
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = v
	} else if err := json.Unmarshal(b, &f); err != nil || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number{Value: f, Valid: true}
	return nil
}

// RawGoal is a goal as the backend sends it, in any of its historic shapes.
type RawGoal struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	CompletedAt *string `json:"completed_at"`
	Status      *string `json:"status"`
	IsCompleted *bool   `json:"is_completed"`
	Completed   *bool   `json:"completed"`

	ProgressValue Number `json:"progress_value"`
	Progress      Number `json:"progress"`
	CurrentValue  Number `json:"current_value"`

	TargetValue Number `json:"target_value"`
	Target      Number `json:"target"`
	GoalValue   Number `json:"goal_value"`
}

// Progress is how far along a goal is.
type Progress struct {
	Current float64
	Target  float64
}

// Reached reports whether current has met the target. It is informational
// only and does not mark the goal completed.
func (p Progress) Reached() bool {
	return p.Target > 0 && p.Current >= p.Target
}

// Percent is current/target as 0..100.
func (p Progress) Percent() int {
	if p.Target <= 0 {
		return 0
	}
	pct := math.Round(p.Current / p.Target * 100)
	return int(math.Max(0, math.Min(100, pct)))
}

// Goal is the normalized record.
type Goal struct {
	ID          int64
	Title       string
	Category    string
	Completed   bool
	CompletedAt time.Time // zero when completion came from a legacy field
	Source      Source
	Progress    Progress
}

// Normalize resolves raw into a Goal.
func Normalize(raw RawGoal) Goal {
	g := Goal{
		ID:       raw.ID,
		Title:    strings.TrimSpace(raw.Title),
		Category: strings.TrimSpace(raw.Category),
		Progress: Progress{
			Current: first(0, raw.ProgressValue, raw.Progress, raw.CurrentValue),
			Target:  first(1, raw.TargetValue, raw.Target, raw.GoalValue),
		},
	}

	switch {
	case raw.CompletedAt != nil && strings.TrimSpace(*raw.CompletedAt) != "":
		g.Completed = true
		g.Source = SourceCompletedAt
		g.CompletedAt = parseTime(*raw.CompletedAt)
	case raw.Status != nil && strings.EqualFold(strings.TrimSpace(*raw.Status), "completed"):
		g.Completed = true
		g.Source = SourceStatus
	case raw.IsCompleted != nil && *raw.IsCompleted:
		g.Completed = true
		g.Source = SourceIsCompleted
	case raw.Completed != nil && *raw.Completed:
		g.Completed = true
		g.Source = SourceCompleted
	}
	return g
}

// NormalizeAll normalizes a list, keeping order.
func NormalizeAll(raw []RawGoal) []Goal {
	out := make([]Goal, len(raw))
	for i, r := range raw {
		out[i] = Normalize(r)
	}
	return out
}

// Summary counts completed and open goals.
type Summary struct {
	Total     int
	Completed int
	Reached   int // open goals whose progress met the target
}

func Summarize(gs []Goal) Summary {
	s := Summary{Total: len(gs)}
	for _, g := range gs {
		switch {
		case g.Completed:
			s.Completed++
		case g.Progress.Reached():
			s.Reached++
		}
	}
	return s
}

func first(fallback float64, ns ...Number) float64 {
	for _, n := range ns {
		if n.Valid {
			return n.Value
		}
	}
	return fallback
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
