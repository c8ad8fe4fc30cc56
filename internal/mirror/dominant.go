package mirror

import "sort"

// TopEntry returns the highest-weighted entry of dist. Blank names and
// non-positive or non-finite weights are ignored. Equal weights resolve to
// the entry that appears first in dist. ok is false when nothing is left.
func TopEntry(dist Distribution) (top Entry, ok bool) {
	ranked := Ranked(dist)
	if len(ranked) == 0 {
		return Entry{}, false
	}
	return ranked[0], true
}

// Ranked returns the renderable entries of dist sorted by weight
// descending. The sort is stable, so ties keep their input order.
func Ranked(dist Distribution) Distribution {
	out := dist.Renderable()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight > out[j].Weight
	})
	return out
}

// RankedEmotions orders emotion stats by count the same way Ranked does.
func RankedEmotions(stats EmotionStats) EmotionStats {
	out := make(EmotionStats, 0, len(stats))
	for _, st := range stats {
		if st.Count > 0 && (Entry{Name: st.Name, Weight: 1}).valid() {
			out = append(out, st)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
