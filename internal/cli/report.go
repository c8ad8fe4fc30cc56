package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/mirror"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a weekly or monthly report",
	Example: `  mirror report
  mirror report --week 2024-06-12 --metric Físico
  mirror report --month 2024-05 --emotion Tristeza
  mirror report --review`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("week", "", "Any date of the week to report (YYYY-MM-DD)")
	reportCmd.Flags().String("month", "", "Month to report (YYYY-MM)")
	reportCmd.Flags().String("metric", "", "Category to chart instead of total points")
	reportCmd.Flags().String("emotion", "", "Emotion to drill into")
	reportCmd.Flags().Bool("review", false, "Print the compact review as the backend summarizes it")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	now := today()
	st, err := viewFromFlags(cmd, now)
	if err != nil {
		return err
	}

	e, err := openCommandEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.feed.Range(cmd.Context(), st.Range(now))
	if err != nil {
		return describeFetchError(err)
	}
	e.feed.Prune(now)

	p := newPrinter(cmd)
	if review, _ := cmd.Flags().GetBool("review"); review {
		writeReview(p, res)
		return nil
	}

	metric, _ := cmd.Flags().GetString("metric")
	emotion, _ := cmd.Flags().GetString("emotion")
	snap, err := snapshotFor(st, res.Payload, now, metric, emotion)
	if err != nil {
		return err
	}
	writeReport(p, snap, res)
	return nil
}

// snapshotFor computes the snapshot and applies the metric and emotion
// selections, matching names without regard to case or accents.
func snapshotFor(st mirror.ViewState, p mirror.RangePayload, today calendar.Date, metric, emotion string) (mirror.Snapshot, error) {
	snap := mirror.Compute(st, p, today, chart.DefaultBounds())
	if metric = strings.TrimSpace(metric); metric != "" {
		found := false
		var names []string
		for _, m := range snap.Metrics {
			names = append(names, m.Label())
			if !m.IsTotal() && mirror.SameName(m.Category, metric) {
				st = st.WithMetric(m)
				found = true
			}
		}
		if !found {
			return snap, fmt.Errorf("unknown metric %q (available: %s)", metric, strings.Join(names, ", "))
		}
	}
	if emotion = strings.TrimSpace(emotion); emotion != "" {
		st = st.ToggleEmotion(emotion)
	}
	return mirror.Compute(st, p, today, chart.DefaultBounds()), nil
}

func writeReport(p printer, snap mirror.Snapshot, res feed.RangeResult) {
	title := "Week"
	if snap.State.Mode == mirror.ModeMonth {
		title = "Month"
	}
	p.header(fmt.Sprintf("%s %s to %s", title, snap.Range.Start, snap.Range.End))
	if res.Offline {
		p.warn(fmt.Sprintf("offline: showing data fetched %s", res.FetchedAt.Local().Format("2006-01-02 15:04")))
	}

	p.field("Points", fmt.Sprintf("%d", snap.Totals.PointsTotal))
	p.field("Completions", fmt.Sprintf("%d", snap.Totals.CompletionsTotal))
	p.field("Consistency", fmt.Sprintf("%d%% (%d of %d days)", snap.Consistency, snap.Totals.PrincipalDays, len(snap.Days)))
	p.field("Streak", fmt.Sprintf("%d (best %d)", snap.Streak.Current, snap.Streak.Best))
	p.field("Top category", describeTop(snap.TopCategory, "pts"))
	p.field("Top emotion", describeTop(snap.TopEmotion, "times"))

	p.header(snap.State.Metric.Label())
	var top float64
	for _, sp := range snap.Series {
		top = max(top, sp.Value)
	}
	for _, sp := range snap.Series {
		p.line("  %s %-3s %6s %s", sp.Date, snap.State.AxisLabel(sp.Date), chart.FormatValue(sp.Value), bar(sp.Value, top, 30))
	}

	if len(snap.Categories) > 0 {
		p.header("Categories")
		writeDistribution(p, snap.Categories)
	}
	if len(snap.Emotions) > 0 {
		p.header("Emotions")
		for i, s := range snap.Pie.Slices {
			avg := ""
			if st, ok := snap.Emotions.Lookup(s.Name); ok && st.AverageIntensity != nil {
				avg = fmt.Sprintf("  avg %.1f", *st.AverageIntensity)
			}
			p.line("  %d. %-20s %4s times %3.0f%%%s", i+1, s.Name, chart.FormatValue(s.Weight), s.Fraction*100, avg)
		}
	}

	if sel, ok := snap.SelectedEmotion(); ok {
		p.header("Drilldown: " + sel.Name)
		for _, d := range snap.Drilldown {
			p.line("  %s  %d entries", d.Date, d.Count)
			for _, en := range d.Entries {
				p.line("      %s", describeEntry(en))
			}
		}
	} else if snap.State.Emotion != "" {
		p.warn(fmt.Sprintf("no entries for emotion %q in this range", snap.State.Emotion))
	}
}

func writeReview(p printer, res feed.RangeResult) {
	rv := mirror.ReviewOf(res.Payload)
	p.header(fmt.Sprintf("Review %s to %s", res.Payload.Range.Start, res.Payload.Range.End))
	if res.Offline {
		p.warn("offline: showing cached data")
	}
	p.field("Points", fmt.Sprintf("%d", rv.Totals.PointsTotal))
	p.field("Principal days", fmt.Sprintf("%d", rv.Totals.PrincipalDays))
	p.field("Streak", fmt.Sprintf("%d (best %d)", rv.Streak.Current, rv.Streak.Best))
	p.field("Category", describeTop(rv.Category, "pts"))
	p.field("Emotion", describeTop(rv.Emotion, rv.EmotionUnit))
}

func writeDistribution(p printer, d mirror.Distribution) {
	total := d.Total()
	for _, e := range d {
		pct := 0.0
		if total > 0 {
			pct = e.Weight / total * 100
		}
		p.line("  %-20s %6s %3.0f%% %s", e.Name, chart.FormatValue(e.Weight), pct, bar(e.Weight, d[0].Weight, 20))
	}
}

func describeTop(e *mirror.Entry, unit string) string {
	if e == nil {
		return "none"
	}
	return fmt.Sprintf("%s (%s %s)", e.Name, chart.FormatValue(e.Weight), unit)
}
