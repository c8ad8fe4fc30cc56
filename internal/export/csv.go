package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/mirror"
)

// WriteCSV writes one row per day of snap, followed by one column per
// category in the range.
func WriteCSV(out io.Writer, snap mirror.Snapshot) error {
	w := csv.NewWriter(out)

	header := []string{"Date", "Points", "Day", "Night", "Completions", "Principal", "Recommended", "Consistent", "Emotions", snap.State.Metric.Label()}
	for _, c := range snap.Categories {
		header = append(header, c.Name)
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, d := range snap.Days {
		row := []string{
			d.Date.String(),
			strconv.Itoa(d.PointsTotal),
			strconv.Itoa(d.PointsDay),
			strconv.Itoa(d.PointsNight),
			strconv.Itoa(d.CompletionsCount),
			strconv.Itoa(d.PrincipalCount),
			strconv.Itoa(d.RecommendedCount),
			strconv.FormatBool(d.IsConsistent()),
			strconv.Itoa(len(d.EmotionEntries)),
			chart.FormatValue(snap.Series[i].Value),
		}
		for _, c := range snap.Categories {
			v, _ := d.Categories.Get(c.Name)
			row = append(row, chart.FormatValue(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func ToCSV(snap mirror.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, snap); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
