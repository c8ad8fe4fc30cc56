package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/mirror/internal/mirror"
)

type jsonExport struct {
	ExportedAt  string         `json:"exported_at"`
	Start       string         `json:"start"`
	End         string         `json:"end"`
	Metric      string         `json:"metric"`
	Consistency int            `json:"consistency_percent"`
	Totals      jsonTotals     `json:"totals"`
	Streak      jsonStreak     `json:"streak"`
	TopCategory *jsonWeight    `json:"top_category"`
	TopEmotion  *jsonWeight    `json:"top_emotion"`
	Categories  []jsonWeight   `json:"categories"`
	Emotions    []jsonEmotion  `json:"emotions"`
	Days        []jsonDay      `json:"days"`
	Drilldown   []jsonDrillDay `json:"drilldown,omitempty"`
}

type jsonTotals struct {
	PointsTotal      int `json:"points_total"`
	CompletionsTotal int `json:"completions_total"`
	PrincipalDays    int `json:"principal_days"`
	RecommendedDays  int `json:"recommended_days"`
}

type jsonStreak struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

type jsonWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

type jsonEmotion struct {
	Name         string   `json:"name"`
	Count        int      `json:"count"`
	IntensityAvg *float64 `json:"intensity_avg"`
}

type jsonDay struct {
	Date             string       `json:"date"`
	PointsTotal      int          `json:"points_total"`
	PointsDay        int          `json:"points_day"`
	PointsNight      int          `json:"points_night"`
	CompletionsCount int          `json:"completions_count"`
	PrincipalCount   int          `json:"principal_count"`
	RecommendedCount int          `json:"recommended_count"`
	Value            float64      `json:"value"`
	Categories       []jsonWeight `json:"categories"`
}

type jsonDrillDay struct {
	Date         string   `json:"date"`
	Count        int      `json:"count"`
	IntensityAvg *float64 `json:"intensity_avg"`
}

// WriteJSON writes snap as indented JSON. Distributions are arrays so their
// order survives.
func WriteJSON(w io.Writer, snap mirror.Snapshot) error {
	export := jsonExport{
		ExportedAt:  time.Now().UTC().Format(time.RFC3339),
		Start:       snap.Range.Start.String(),
		End:         snap.Range.End.String(),
		Metric:      snap.State.Metric.Label(),
		Consistency: snap.Consistency,
		Totals: jsonTotals{
			PointsTotal:      snap.Totals.PointsTotal,
			CompletionsTotal: snap.Totals.CompletionsTotal,
			PrincipalDays:    snap.Totals.PrincipalDays,
			RecommendedDays:  snap.Totals.RecommendedDays,
		},
		Streak:     jsonStreak{Current: snap.Streak.Current, Best: snap.Streak.Best},
		Categories: weights(snap.Categories),
		Emotions:   []jsonEmotion{},
		Days:       make([]jsonDay, 0, len(snap.Days)),
	}
	if snap.TopCategory != nil {
		export.TopCategory = &jsonWeight{Name: snap.TopCategory.Name, Weight: snap.TopCategory.Weight}
	}
	if snap.TopEmotion != nil {
		export.TopEmotion = &jsonWeight{Name: snap.TopEmotion.Name, Weight: snap.TopEmotion.Weight}
	}
	for _, e := range snap.Emotions {
		export.Emotions = append(export.Emotions, jsonEmotion{Name: e.Name, Count: e.Count, IntensityAvg: e.AverageIntensity})
	}
	for i, d := range snap.Days {
		export.Days = append(export.Days, jsonDay{
			Date:             d.Date.String(),
			PointsTotal:      d.PointsTotal,
			PointsDay:        d.PointsDay,
			PointsNight:      d.PointsNight,
			CompletionsCount: d.CompletionsCount,
			PrincipalCount:   d.PrincipalCount,
			RecommendedCount: d.RecommendedCount,
			Value:            snap.Series[i].Value,
			Categories:       weights(d.Categories.Renderable()),
		})
	}
	for _, dd := range snap.Drilldown {
		export.Drilldown = append(export.Drilldown, jsonDrillDay{Date: dd.Date.String(), Count: dd.Count, IntensityAvg: dd.AverageIntensity})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func ToJSON(snap mirror.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, snap); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return f.Close()
}

func weights(d mirror.Distribution) []jsonWeight {
	out := make([]jsonWeight, 0, len(d))
	for _, e := range d {
		out = append(out, jsonWeight{Name: e.Name, Weight: e.Weight})
	}
	return out
}
