// Package mirror turns per-day wellness records into the values shown on the
// mirror dashboard: normalized ranges, distributions, dominant entries,
// metric series, drilldowns and the chart geometry built from them.
//
// Every function in this package is pure. Callers recompute a Snapshot
// whenever the view state or the fetched payload changes.
package mirror

import (
	"math"
	"strings"
	"time"

	"github.com/sadopc/mirror/internal/calendar"
)

// Principal and recommended completions are identified by awarded points.
const (
	PrincipalPoints   = 10
	RecommendedPoints = 20
)

// Session labels used on activities.
const (
	SessionDay   = "day"
	SessionNight = "night"
)

// DayRecord aggregates one calendar date.
type DayRecord struct {
	Date             calendar.Date
	PointsTotal      int
	PointsDay        int
	PointsNight      int
	CompletionsCount int
	PrincipalCount   int
	RecommendedCount int

	Categories     Distribution
	Emotions       []EmotionStat
	EmotionEntries []EmotionEntry
	Activities     []Activity
}

// EmptyDay is the placeholder for a date the backend returned nothing for.
func EmptyDay(d calendar.Date) DayRecord {
	return DayRecord{Date: d}
}

// IsConsistent reports whether the day had at least one principal completion.
func (r DayRecord) IsConsistent() bool { return r.PrincipalCount > 0 }

type EmotionEntry struct {
	Name       string
	Intensity  *int // 1-10, nil when not recorded
	Note       string
	RecordedAt time.Time
}

type Activity struct {
	ExternalID  string
	Name        string
	Category    string
	Session     string
	Points      int
	CompletedAt time.Time
}

// EmotionStat is the frequency and mean intensity of one emotion.
type EmotionStat struct {
	Name             string
	Count            int
	AverageIntensity *float64
}

// Entry is one named weight of a Distribution.
type Entry struct {
	Name   string
	Weight float64
}

// Distribution is an ordered named-weight breakdown. Order is the order the
// names were first seen, which is what tie-breaks rely on.
type Distribution []Entry

// Get returns the weight stored under name.
func (d Distribution) Get(name string) (float64, bool) {
	for _, e := range d {
		if e.Name == name {
			return e.Weight, true
		}
	}
	return 0, false
}

// Total sums the renderable weights.
func (d Distribution) Total() float64 {
	var sum float64
	for _, e := range d.Renderable() {
		sum += e.Weight
	}
	return sum
}

// Renderable drops entries with blank names or non-positive, non-finite
// weights, keeping order.
func (d Distribution) Renderable() Distribution {
	out := make(Distribution, 0, len(d))
	for _, e := range d {
		if !e.valid() {
			continue
		}
		out = append(out, Entry{Name: strings.TrimSpace(e.Name), Weight: e.Weight})
	}
	return out
}

func (e Entry) valid() bool {
	if strings.TrimSpace(e.Name) == "" {
		return false
	}
	if math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
		return false
	}
	return e.Weight > 0
}

// WeightKind tags what an emotion weight measures.
type WeightKind int

const (
	WeightCount WeightKind = iota
	WeightPoints
)

// Unit is the short label shown next to a weight of this kind.
func (k WeightKind) Unit() string {
	if k == WeightPoints {
		return "pts"
	}
	return "times"
}

// EmotionWeight is either Points(n) or Count(n).
type EmotionWeight struct {
	Kind  WeightKind
	Value float64
}

func Points(n float64) EmotionWeight { return EmotionWeight{Kind: WeightPoints, Value: n} }
func Count(n float64) EmotionWeight  { return EmotionWeight{Kind: WeightCount, Value: n} }

// EmotionDistribution is an emotion breakdown whose weights all share one
// kind, resolved once when the payload is decoded.
type EmotionDistribution struct {
	Kind    WeightKind
	Entries []EmotionShare
}

type EmotionShare struct {
	Name             string
	Weight           EmotionWeight
	AverageIntensity *float64
}

// Distribution exposes the weights for ranking and pie projection.
func (d EmotionDistribution) Distribution() Distribution {
	out := make(Distribution, 0, len(d.Entries))
	for _, e := range d.Entries {
		out = append(out, Entry{Name: e.Name, Weight: e.Weight.Value})
	}
	return out
}

func (d EmotionDistribution) IsEmpty() bool { return len(d.Distribution().Renderable()) == 0 }

// Totals mirrors the range totals block.
type Totals struct {
	PointsTotal      int
	CompletionsTotal int
	PrincipalDays    int
	RecommendedDays  int
}

type Streak struct {
	Current int
	Best    int
}

type Session struct {
	ID           int64
	Type         string
	PointsEarned int
}

// RangePayload is a decoded range response.
type RangePayload struct {
	Range         calendar.Range
	Days          []DayRecord
	Totals        Totals
	Streak        Streak
	Categories    Distribution
	Emotions      EmotionDistribution
	EmotionSource string // payload key the emotion distribution came from
}

// TodayPayload is a decoded today response.
type TodayPayload struct {
	Date             calendar.Date
	Sessions         []Session
	Activities       []Activity
	PointsToday      int
	PointsByCategory Distribution
	Emotion          *EmotionEntry
}
