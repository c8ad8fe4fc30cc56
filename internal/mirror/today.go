package mirror

import (
	"sort"

	"github.com/sadopc/mirror/internal/calendar"
)

// TodaySummary is the single-day view.
type TodaySummary struct {
	Date        calendar.Date
	Points      int
	Activities  []Activity // by completion time
	Day         []Activity
	Night       []Activity
	Categories  Distribution
	TopCategory *Entry
	Emotion     *EmotionEntry
}

func SummarizeToday(p TodayPayload) TodaySummary {
	chrono := make([]Activity, len(p.Activities))
	copy(chrono, p.Activities)
	sort.SliceStable(chrono, func(i, j int) bool {
		return chrono[i].CompletedAt.Before(chrono[j].CompletedAt)
	})

	s := TodaySummary{
		Date:       p.Date,
		Points:     p.PointsToday,
		Activities: chrono,
		Categories: Ranked(p.PointsByCategory),
		Emotion:    p.Emotion,
	}
	for _, a := range chrono {
		switch a.Session {
		case SessionDay:
			s.Day = append(s.Day, a)
		case SessionNight:
			s.Night = append(s.Night, a)
		}
	}
	if top, ok := TopEntry(p.PointsByCategory); ok {
		s.TopCategory = &top
	}
	return s
}
