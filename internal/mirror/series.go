package mirror

import "github.com/sadopc/mirror/internal/calendar"

// Metric selects what a series measures. The zero value is total points.
type Metric struct {
	Category string
}

func TotalPoints() Metric { return Metric{} }

func CategoryMetric(name string) Metric { return Metric{Category: name} }

func (m Metric) IsTotal() bool { return m.Category == "" }

func (m Metric) Label() string {
	if m.IsTotal() {
		return "Total points"
	}
	return m.Category
}

// Value reads the metric from one record.
func (m Metric) Value(r DayRecord) float64 {
	if m.IsTotal() {
		return float64(r.PointsTotal)
	}
	v, _ := r.Categories.Get(m.Category)
	if v < 0 {
		return 0
	}
	return v
}

// SeriesPoint is one date's metric value.
type SeriesPoint struct {
	Date  calendar.Date
	Value float64
}

// BuildSeries produces one point per record in record order. Changing the
// metric changes only the values.
func BuildSeries(days []DayRecord, m Metric) []SeriesPoint {
	out := make([]SeriesPoint, len(days))
	for i, d := range days {
		out[i] = SeriesPoint{Date: d.Date, Value: m.Value(d)}
	}
	return out
}

// Metrics lists the selectable metrics for days: total first, then every
// category with points in the range.
func Metrics(days []DayRecord) []Metric {
	cats := AggregateCategories(days)
	out := make([]Metric, 0, len(cats)+1)
	out = append(out, TotalPoints())
	for _, e := range cats {
		out = append(out, CategoryMetric(e.Name))
	}
	return out
}
