package mirror

import (
	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/chart"
)

// Snapshot holds every value derived for one view state and payload. All
// of it comes from the same normalized days.
type Snapshot struct {
	State ViewState
	Range calendar.Range
	Days  []DayRecord

	Categories  Distribution
	Emotions    EmotionStats
	TopCategory *Entry
	TopEmotion  *Entry
	Consistency int
	Totals      Totals
	Streak      Streak

	// Reported values pass through from the backend untouched.
	ReportedTotals Totals
	ReportedStreak Streak

	Metrics   []Metric
	Series    []SeriesPoint
	Line      chart.LineGeometry
	Pie       chart.PieGeometry
	Drilldown []DrillDay
}

// Compute derives a Snapshot. It never mutates payload.
func Compute(state ViewState, payload RangePayload, today calendar.Date, bounds chart.Bounds) Snapshot {
	r := payload.Range
	if r.Start.IsZero() || r.End.IsZero() {
		r = state.Range(today)
	}
	days := Normalize(r, payload.Days)
	agg := Aggregate(days)

	snap := Snapshot{
		State:          state,
		Range:          r,
		Days:           days,
		Categories:     Ranked(agg.Categories),
		Emotions:       RankedEmotions(agg.Emotions),
		Consistency:    agg.Consistency,
		Totals:         agg.Totals,
		Streak:         StreakOf(days, today),
		ReportedTotals: payload.Totals,
		ReportedStreak: payload.Streak,
		Metrics:        Metrics(days),
		Series:         BuildSeries(days, state.Metric),
		Drilldown:      Drilldown(days, state.Emotion),
	}
	if top, ok := TopEntry(agg.Categories); ok {
		snap.TopCategory = &top
	}
	if top, ok := TopEntry(agg.Emotions.Distribution()); ok {
		snap.TopEmotion = &top
	}

	samples := make([]chart.Sample, len(snap.Series))
	for i, p := range snap.Series {
		samples[i] = chart.Sample{Key: p.Date.String(), AxisLabel: state.AxisLabel(p.Date), Value: p.Value}
	}
	snap.Line = chart.ProjectLine(samples, bounds)
	snap.Pie = chart.ProjectPie(Weights(snap.Emotions.Distribution()))
	return snap
}

// Weights converts a distribution into pie input.
func Weights(d Distribution) []chart.Weighted {
	out := make([]chart.Weighted, len(d))
	for i, e := range d {
		out[i] = chart.Weighted{Name: e.Name, Weight: e.Weight}
	}
	return out
}

// SelectSlice maps a pie angle back to the emotion under it and toggles it.
func (s Snapshot) SelectSlice(angle float64) (ViewState, bool) {
	slice, ok := s.Pie.SliceAt(angle)
	if !ok {
		return s.State, false
	}
	return s.State.ToggleEmotion(slice.Name), true
}

// SelectedEmotion returns the stats of the emotion being drilled into.
func (s Snapshot) SelectedEmotion() (EmotionStat, bool) {
	if s.State.Emotion == "" {
		return EmotionStat{}, false
	}
	return s.Emotions.Lookup(s.State.Emotion)
}
