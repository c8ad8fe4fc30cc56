package mirror

import (
	"math"
	"strings"

	"github.com/sadopc/mirror/internal/calendar"
)

// Aggregates groups the distribution outputs for one normalized range.
type Aggregates struct {
	Categories  Distribution
	Emotions    EmotionStats
	Consistency int
	Totals      Totals
}

// Aggregate runs every aggregator over days.
func Aggregate(days []DayRecord) Aggregates {
	return Aggregates{
		Categories:  AggregateCategories(days),
		Emotions:    AggregateEmotions(days),
		Consistency: ConsistencyPercent(days),
		Totals:      TotalsOf(days),
	}
}

// AggregateCategories sums category points across days. Only categories
// with a positive total are returned, in first-seen order.
func AggregateCategories(days []DayRecord) Distribution {
	var order []string
	totals := make(map[string]float64)
	for _, d := range days {
		for _, e := range d.Categories {
			name := strings.TrimSpace(e.Name)
			if name == "" || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
				continue
			}
			if _, seen := totals[name]; !seen {
				order = append(order, name)
			}
			totals[name] += e.Weight
		}
	}

	out := make(Distribution, 0, len(order))
	for _, name := range order {
		if totals[name] > 0 {
			out = append(out, Entry{Name: name, Weight: totals[name]})
		}
	}
	return out
}

// EmotionStats is an ordered list of per-emotion statistics.
type EmotionStats []EmotionStat

// Distribution ranks emotions by how often they were recorded.
func (s EmotionStats) Distribution() Distribution {
	out := make(Distribution, 0, len(s))
	for _, st := range s {
		out = append(out, Entry{Name: st.Name, Weight: float64(st.Count)})
	}
	return out
}

// Lookup finds the stat for name, matched case- and diacritic-insensitively.
func (s EmotionStats) Lookup(name string) (EmotionStat, bool) {
	key := FoldKey(name)
	for _, st := range s {
		if FoldKey(st.Name) == key {
			return st, true
		}
	}
	return EmotionStat{}, false
}

// AggregateEmotions counts emotion entries per emotion across days and
// averages the intensities that were recorded. Names are grouped by their
// folded key and keep the spelling seen first.
func AggregateEmotions(days []DayRecord) EmotionStats {
	type acc struct {
		name  string
		count int
		sum   int
		n     int
	}
	var order []string
	byKey := make(map[string]*acc)

	for _, d := range days {
		for _, e := range d.EmotionEntries {
			name := strings.TrimSpace(e.Name)
			if name == "" {
				continue
			}
			key := FoldKey(name)
			a, ok := byKey[key]
			if !ok {
				a = &acc{name: name}
				byKey[key] = a
				order = append(order, key)
			}
			a.count++
			if e.Intensity != nil {
				a.sum += *e.Intensity
				a.n++
			}
		}
	}

	out := make(EmotionStats, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		out = append(out, EmotionStat{
			Name:             a.name,
			Count:            a.count,
			AverageIntensity: mean(a.sum, a.n),
		})
	}
	return out
}

// averageIntensity is the mean of the recorded intensities, nil when none.
func averageIntensity(entries []EmotionEntry) *float64 {
	var sum, n int
	for _, e := range entries {
		if e.Intensity != nil {
			sum += *e.Intensity
			n++
		}
	}
	return mean(sum, n)
}

func mean(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}

// ConsistencyPercent is the rounded share of days with a principal
// completion, 0..100.
func ConsistencyPercent(days []DayRecord) int {
	if len(days) == 0 {
		return 0
	}
	consistent := 0
	for _, d := range days {
		if d.IsConsistent() {
			consistent++
		}
	}
	return int(math.Round(float64(consistent) * 100 / float64(len(days))))
}

// TotalsOf recomputes the totals block from the records themselves.
func TotalsOf(days []DayRecord) Totals {
	var t Totals
	for _, d := range days {
		t.PointsTotal += d.PointsTotal
		t.CompletionsTotal += d.CompletionsCount
		if d.PrincipalCount > 0 {
			t.PrincipalDays++
		}
		if d.RecommendedCount > 0 {
			t.RecommendedDays++
		}
	}
	return t
}

// StreakOf computes consecutive consistent days. Best looks at the whole
// range; Current counts back from today, or from the range end when the
// range is entirely in the past, so future days never break it.
func StreakOf(days []DayRecord, today calendar.Date) Streak {
	var s Streak
	run := 0
	for _, d := range days {
		if d.IsConsistent() {
			run++
			s.Best = max(s.Best, run)
		} else {
			run = 0
		}
	}

	for i := len(days) - 1; i >= 0; i-- {
		if days[i].Date.After(today) {
			continue
		}
		if !days[i].IsConsistent() {
			break
		}
		s.Current++
	}
	return s
}
