package mirror

import (
	"sort"
	"strings"

	"github.com/sadopc/mirror/internal/calendar"
)

// DrillDay groups one date's entries for the selected emotion.
type DrillDay struct {
	Date             calendar.Date
	Entries          []EmotionEntry
	Count            int
	AverageIntensity *float64
}

// Drilldown regroups the entries matching emotion by date, oldest first.
// Dates without a match are left out.
func Drilldown(days []DayRecord, emotion string) []DrillDay {
	if strings.TrimSpace(emotion) == "" {
		return nil
	}
	key := FoldKey(emotion)

	var out []DrillDay
	for _, d := range days {
		var matching []EmotionEntry
		for _, e := range d.EmotionEntries {
			if FoldKey(e.Name) == key {
				matching = append(matching, e)
			}
		}
		if len(matching) == 0 {
			continue
		}
		out = append(out, DrillDay{
			Date:             d.Date,
			Entries:          matching,
			Count:            len(matching),
			AverageIntensity: averageIntensity(matching),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
