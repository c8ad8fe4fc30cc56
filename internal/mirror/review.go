package mirror

// Review is the compact weekly summary: dominant category and emotion as
// the backend reports them, with totals and streak passed through.
type Review struct {
	Category    *Entry
	Emotion     *Entry
	EmotionUnit string
	Totals      Totals
	Streak      Streak
	Series      []SeriesPoint
}

// ReviewOf prefers the payload's own distributions and falls back to
// aggregating its days when a distribution is missing.
func ReviewOf(p RangePayload) Review {
	days := p.Days
	if !p.Range.Start.IsZero() {
		days = Normalize(p.Range, p.Days)
	}
	rv := Review{
		Totals: p.Totals,
		Streak: p.Streak,
		Series: BuildSeries(days, TotalPoints()),
	}

	cats := p.Categories
	if len(cats.Renderable()) == 0 {
		cats = AggregateCategories(days)
	}
	if top, ok := TopEntry(cats); ok {
		rv.Category = &top
	}

	emotions := p.Emotions
	if emotions.IsEmpty() {
		emotions = EmotionDistribution{Kind: WeightCount}
		for _, st := range AggregateEmotions(days) {
			emotions.Entries = append(emotions.Entries, EmotionShare{
				Name:             st.Name,
				Weight:           Count(float64(st.Count)),
				AverageIntensity: st.AverageIntensity,
			})
		}
	}
	if top, ok := TopEntry(emotions.Distribution()); ok {
		rv.Emotion = &top
	}
	rv.EmotionUnit = emotions.Kind.Unit()
	return rv
}
