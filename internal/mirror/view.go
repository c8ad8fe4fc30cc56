package mirror

import (
	"fmt"

	"github.com/sadopc/mirror/internal/calendar"
)

// Mode is the dashboard tab.
type Mode int

const (
	ModeToday Mode = iota
	ModeWeek
	ModeMonth
)

var modeNames = []string{"today", "week", "month"}

func (m Mode) String() string {
	if int(m) < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return ModeToday, false
}

// ViewState is everything the user has chosen on the dashboard. It is a
// value: every change returns a new state and the old one stays valid.
type ViewState struct {
	Mode        Mode
	WeekCursor  calendar.Date
	MonthCursor calendar.YearMonth
	Metric      Metric
	Emotion     string
}

func NewViewState(today calendar.Date) ViewState {
	return ViewState{
		Mode:        ModeToday,
		WeekCursor:  today,
		MonthCursor: today.YearMonth(),
	}
}

// Range is the dates the state asks for.
func (s ViewState) Range(today calendar.Date) calendar.Range {
	switch s.Mode {
	case ModeWeek:
		return calendar.WeekRange(s.WeekCursor)
	case ModeMonth:
		return calendar.MonthRange(s.MonthCursor)
	default:
		return calendar.DayRange(today)
	}
}

// WithMode switches tabs and clears the metric and emotion selections.
func (s ViewState) WithMode(m Mode) ViewState {
	s.Mode = m
	s.Metric = TotalPoints()
	s.Emotion = ""
	return s
}

func (s ViewState) WithMetric(m Metric) ViewState {
	s.Metric = m
	return s
}

// ToggleEmotion selects name, or clears the selection when name is already
// selected.
func (s ViewState) ToggleEmotion(name string) ViewState {
	if s.Emotion != "" && SameName(s.Emotion, name) {
		s.Emotion = ""
		return s
	}
	s.Emotion = name
	return s
}

// Prev moves the cursor one period back.
func (s ViewState) Prev() ViewState {
	switch s.Mode {
	case ModeWeek:
		s.WeekCursor = calendar.PrevWeek(s.WeekCursor)
	case ModeMonth:
		s.MonthCursor = calendar.PrevMonth(s.MonthCursor)
	}
	return s
}

// Next moves the cursor one period forward unless that would reach past
// today's week or month.
func (s ViewState) Next(today calendar.Date) (ViewState, bool) {
	var ok bool
	switch s.Mode {
	case ModeWeek:
		s.WeekCursor, ok = calendar.NextWeek(s.WeekCursor, today)
	case ModeMonth:
		s.MonthCursor, ok = calendar.NextMonth(s.MonthCursor, today)
	}
	return s, ok
}

func (s ViewState) CanAdvance(today calendar.Date) bool {
	switch s.Mode {
	case ModeWeek:
		return calendar.CanAdvanceWeek(s.WeekCursor, today)
	case ModeMonth:
		return calendar.CanAdvanceMonth(s.MonthCursor, today)
	}
	return false
}

// NeedsFetch reports whether moving from s to next changes the data that
// has to be fetched, as opposed to only what is derived from it.
func (s ViewState) NeedsFetch(next ViewState, today calendar.Date) bool {
	return s.Mode != next.Mode || s.Range(today) != next.Range(today)
}

// AxisLabel is the x-axis text for d in this mode.
func (s ViewState) AxisLabel(d calendar.Date) string {
	if s.Mode == ModeMonth {
		return fmt.Sprintf("%02d", d.Day)
	}
	return d.Weekday().String()[:3]
}
