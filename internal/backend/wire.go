package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/mirror"
)

// Wire types match the backend JSON. They are converted into mirror types
// right after decoding and never leave this package.

type wireRangeMeta struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type wireTotals struct {
	PointsTotal      int `json:"points_total"`
	CompletionsTotal int `json:"completions_total"`
	PrincipalDays    int `json:"principal_days"`
	RecommendedDays  int `json:"recommended_days"`
}

type wireStreak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

type wireDistributions struct {
	CategoriesPoints orderedObject `json:"categories_points"`
	Categories       orderedObject `json:"categories"`
	EmotionsPoints   orderedObject `json:"emotions_points"`
	Emotions         orderedObject `json:"emotions"`
	EmotionsCount    orderedObject `json:"emotions_count"`
	EmotionsCounts   orderedObject `json:"emotions_counts"`
}

type wireEmotionEntry struct {
	Name      string  `json:"name"`
	Intensity *int    `json:"intensity"`
	Note      *string `json:"note"`
	CreatedAt *string `json:"created_at"`
}

type wireActivity struct {
	ExternalID   *string `json:"external_id"`
	Name         string  `json:"name"`
	CategoryName string  `json:"category_name"`
	Points       int     `json:"points"`
	SessionType  string  `json:"session_type"`
	CompletedAt  *string `json:"completed_at"`
}

type wireDay struct {
	Date             string             `json:"date"`
	PointsTotal      int                `json:"points_total"`
	PointsDay        int                `json:"points_day"`
	PointsNight      int                `json:"points_night"`
	CompletionsCount int                `json:"completions_count"`
	PrincipalCount   int                `json:"principal_count"`
	RecommendedCount int                `json:"recommended_count"`
	Categories       orderedObject      `json:"categories"`
	Emotions         orderedObject      `json:"emotions"`
	EmotionEntries   []wireEmotionEntry `json:"emotion_entries"`
	Activities       []wireActivity     `json:"activities"`
}

type wireRange struct {
	Range         wireRangeMeta     `json:"range"`
	Days          []wireDay         `json:"days"`
	Totals        wireTotals        `json:"totals"`
	Streak        wireStreak        `json:"streak"`
	Distributions wireDistributions `json:"distributions"`
}

type wireSession struct {
	ID           int64  `json:"id"`
	SessionType  string `json:"session_type"`
	PointsEarned int    `json:"points_earned"`
}

type wireToday struct {
	Date             string            `json:"date"`
	Sessions         []wireSession     `json:"sessions"`
	PointsToday      int               `json:"points_today"`
	PointsByCategory orderedObject     `json:"points_by_category"`
	Activities       []wireActivity    `json:"activities"`
	Emotion          *wireEmotionEntry `json:"emotion"`
}

// Emotion distribution keys, in order of preference.
const (
	keyEmotionsPoints = "emotions_points"
	keyEmotions       = "emotions"
	keyEmotionsCount  = "emotions_count"
	keyEmotionsCounts = "emotions_counts"
)

// distribution converts an ordered object of weights. Entries with blank
// names or weights that are not finite numbers are dropped.
func distribution(obj orderedObject, field string) mirror.Distribution {
	var out mirror.Distribution
	for _, f := range obj {
		name := strings.TrimSpace(f.Key)
		if name == "" {
			continue
		}
		w, ok := numberFrom(f.Value, field)
		if !ok {
			continue
		}
		out = append(out, mirror.Entry{Name: name, Weight: w})
	}
	return out
}

// resolveCategories prefers categories_points and falls back to categories.
func resolveCategories(d wireDistributions) mirror.Distribution {
	if dist := distribution(d.CategoriesPoints, "points"); len(dist.Renderable()) > 0 {
		return dist
	}
	return distribution(d.Categories, "points")
}

// resolveEmotions picks the first emotion distribution that has something
// to show and fixes its weight kind once. It returns the key it used, or ""
// when none had entries.
func resolveEmotions(d wireDistributions) (mirror.EmotionDistribution, string) {
	candidates := []struct {
		key   string
		obj   orderedObject
		kind  mirror.WeightKind
		field string
	}{
		{keyEmotionsPoints, d.EmotionsPoints, mirror.WeightPoints, "points"},
		{keyEmotions, d.Emotions, mirror.WeightCount, "count"},
		{keyEmotionsCount, d.EmotionsCount, mirror.WeightCount, "count"},
		{keyEmotionsCounts, d.EmotionsCounts, mirror.WeightCount, "count"},
	}

	for _, c := range candidates {
		dist := mirror.EmotionDistribution{Kind: c.kind}
		for _, f := range c.obj {
			name := strings.TrimSpace(f.Key)
			if name == "" {
				continue
			}
			v, ok := numberFrom(f.Value, c.field)
			if !ok {
				continue
			}
			w := mirror.Count(v)
			if c.kind == mirror.WeightPoints {
				w = mirror.Points(v)
			}
			dist.Entries = append(dist.Entries, mirror.EmotionShare{
				Name:             name,
				Weight:           w,
				AverageIntensity: floatField(f.Value, "intensity_avg"),
			})
		}
		if !dist.IsEmpty() {
			return dist, c.key
		}
	}
	return mirror.EmotionDistribution{Kind: mirror.WeightCount}, ""
}

func (w wireEmotionEntry) toEntry() mirror.EmotionEntry {
	e := mirror.EmotionEntry{
		Name:      strings.TrimSpace(w.Name),
		Intensity: w.Intensity,
	}
	if w.Note != nil {
		e.Note = *w.Note
	}
	if w.CreatedAt != nil {
		e.RecordedAt = parseTimestamp(*w.CreatedAt)
	}
	return e
}

func (w wireActivity) toActivity() mirror.Activity {
	a := mirror.Activity{
		Name:     w.Name,
		Category: w.CategoryName,
		Session:  strings.ToLower(w.SessionType),
		Points:   w.Points,
	}
	if w.ExternalID != nil {
		a.ExternalID = *w.ExternalID
	}
	if w.CompletedAt != nil {
		a.CompletedAt = parseTimestamp(*w.CompletedAt)
	}
	return a
}

func (w wireDay) toDay() (mirror.DayRecord, error) {
	date, err := calendar.ParseDate(w.Date)
	if err != nil {
		return mirror.DayRecord{}, err
	}
	day := mirror.DayRecord{
		Date:             date,
		PointsTotal:      w.PointsTotal,
		PointsDay:        w.PointsDay,
		PointsNight:      w.PointsNight,
		CompletionsCount: w.CompletionsCount,
		PrincipalCount:   w.PrincipalCount,
		RecommendedCount: w.RecommendedCount,
		Categories:       distribution(w.Categories, "points"),
	}
	for _, f := range w.Emotions {
		name := strings.TrimSpace(f.Key)
		count, ok := numberFrom(f.Value, "count")
		if name == "" || !ok {
			continue
		}
		day.Emotions = append(day.Emotions, mirror.EmotionStat{
			Name:             name,
			Count:            int(count),
			AverageIntensity: floatField(f.Value, "intensity_avg"),
		})
	}
	for _, e := range w.EmotionEntries {
		day.EmotionEntries = append(day.EmotionEntries, e.toEntry())
	}
	for _, a := range w.Activities {
		day.Activities = append(day.Activities, a.toActivity())
	}
	return day, nil
}

// parseTimestamp accepts RFC 3339 and zone-less ISO timestamps, the latter
// read as UTC. Anything else gives the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// decodeRange converts a range response. Days with unparseable dates are
// dropped and reported so the caller can log them.
func decodeRange(raw []byte, requested calendar.Range) (mirror.RangePayload, []string, error) {
	var w wireRange
	if err := json.Unmarshal(raw, &w); err != nil {
		return mirror.RangePayload{}, nil, err
	}

	p := mirror.RangePayload{
		Range: requested,
		Totals: mirror.Totals{
			PointsTotal:      w.Totals.PointsTotal,
			CompletionsTotal: w.Totals.CompletionsTotal,
			PrincipalDays:    w.Totals.PrincipalDays,
			RecommendedDays:  w.Totals.RecommendedDays,
		},
		Streak:     mirror.Streak{Current: w.Streak.Current, Best: w.Streak.Best},
		Categories: resolveCategories(w.Distributions),
	}
	if r, err := calendar.ParseRange(w.Range.Start, w.Range.End); err == nil {
		p.Range = r
	}
	p.Emotions, p.EmotionSource = resolveEmotions(w.Distributions)

	var skipped []string
	for _, wd := range w.Days {
		day, err := wd.toDay()
		if err != nil {
			skipped = append(skipped, wd.Date)
			continue
		}
		p.Days = append(p.Days, day)
	}
	return p, skipped, nil
}

func decodeToday(raw []byte, fallback calendar.Date) (mirror.TodayPayload, error) {
	var w wireToday
	if err := json.Unmarshal(raw, &w); err != nil {
		return mirror.TodayPayload{}, err
	}

	p := mirror.TodayPayload{
		Date:             fallback,
		PointsToday:      w.PointsToday,
		PointsByCategory: distribution(w.PointsByCategory, "points"),
	}
	if d, err := calendar.ParseDate(w.Date); err == nil {
		p.Date = d
	}
	for _, s := range w.Sessions {
		p.Sessions = append(p.Sessions, mirror.Session{
			ID:           s.ID,
			Type:         strings.ToLower(s.SessionType),
			PointsEarned: s.PointsEarned,
		})
	}
	for _, a := range w.Activities {
		p.Activities = append(p.Activities, a.toActivity())
	}
	if w.Emotion != nil && strings.TrimSpace(w.Emotion.Name) != "" {
		e := w.Emotion.toEntry()
		p.Emotion = &e
	}
	return p, nil
}
