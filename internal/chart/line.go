// Package chart projects values into plot coordinates. It knows nothing about
// where the values came from; callers hand it samples and weights.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Label offsets relative to a point, in canvas units.
const (
	labelAbove      = 34
	labelAboveDense = 26
	labelBelow      = 36
	labelBelowDense = 30
	labelTopInset   = 16
	labelBotInset   = 12

	// DefaultDenseThreshold is the point count above which a line is dense.
	DefaultDenseThreshold = 14
	denseAxisEvery        = 3
)

// Bounds is the declared canvas and its padding.
type Bounds struct {
	Width, Height     float64
	PadLeft, PadRight float64
	PadTop, PadBottom float64

	// DenseThreshold overrides DefaultDenseThreshold when positive.
	DenseThreshold int
}

// DefaultBounds is the dashboard line chart canvas.
func DefaultBounds() Bounds {
	return Bounds{
		Width: 1000, Height: 340,
		PadLeft: 55, PadRight: 20,
		PadTop: 28, PadBottom: 70,
	}
}

func (b Bounds) plotWidth() float64  { return b.Width - b.PadLeft - b.PadRight }
func (b Bounds) plotHeight() float64 { return b.Height - b.PadTop - b.PadBottom }

func (b Bounds) denseThreshold() int {
	if b.DenseThreshold > 0 {
		return b.DenseThreshold
	}
	return DefaultDenseThreshold
}

// Sample is one value to plot. Key identifies it (a date, usually) and
// AxisLabel is the text under the x axis.
type Sample struct {
	Key       string
	AxisLabel string
	Value     float64
}

// PlottedPoint is a Sample placed on the canvas.
type PlottedPoint struct {
	Key       string
	AxisLabel string
	Value     float64
	X, Y      float64

	Label     string
	LabelY    float64
	ShowLabel bool
	ShowAxis  bool
}

// LineGeometry is the projected line chart.
type LineGeometry struct {
	Bounds Bounds
	Points []PlottedPoint
	Min    float64
	Max    float64
	Dense  bool
}

// ProjectLine places samples on a shared linear scale. The scale always
// includes 0 and 1 so all-zero and single-point series still get a
// non-degenerate range. Dense mode only affects labels.
func ProjectLine(samples []Sample, b Bounds) LineGeometry {
	g := LineGeometry{Bounds: b, Min: 0, Max: 1, Dense: len(samples) > b.denseThreshold()}
	if len(samples) == 0 {
		return g
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		v := s.Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		values[i] = v
		g.Max = math.Max(g.Max, v)
		g.Min = math.Min(g.Min, v)
	}

	step := b.plotWidth() / float64(max(len(samples)-1, 1))
	span := math.Max(g.Max-g.Min, 1)

	g.Points = make([]PlottedPoint, len(samples))
	for i, s := range samples {
		v := values[i]
		y := b.PadTop + (1-(v-g.Min)/span)*b.plotHeight()
		p := PlottedPoint{
			Key:       s.Key,
			AxisLabel: s.AxisLabel,
			Value:     v,
			X:         b.PadLeft + float64(i)*step,
			Y:         y,
			Label:     FormatValue(v),
			LabelY:    labelY(y, b, g.Dense),
			ShowLabel: !g.Dense || v != 0,
			ShowAxis:  !g.Dense || i%denseAxisEvery == 0 || i == len(samples)-1,
		}
		g.Points[i] = p
	}
	return g
}

// labelY puts the value label above the point unless that would cross the
// top padding, then below it; either way clamped inside the plot.
func labelY(y float64, b Bounds, dense bool) float64 {
	above, below := y-labelAbove, y+labelBelow
	if dense {
		above, below = y-labelAboveDense, y+labelBelowDense
	}
	lo := b.PadTop + labelTopInset
	hi := b.Height - b.PadBottom - labelBotInset
	if hi < lo {
		hi = lo
	}
	target := above
	if above < lo {
		target = below
	}
	return math.Max(lo, math.Min(hi, target))
}

// Baseline is the y of the x axis.
func (g LineGeometry) Baseline() float64 { return g.Bounds.Height - g.Bounds.PadBottom }

// GridLines returns the y of the horizontal guides at 25%, 50% and 75%.
func (g LineGeometry) GridLines() []float64 {
	out := make([]float64, 0, 3)
	for _, t := range []float64{0.25, 0.5, 0.75} {
		out = append(out, g.Bounds.PadTop+t*g.Bounds.plotHeight())
	}
	return out
}

// Path is the SVG path data joining the points.
func (g LineGeometry) Path() string {
	var sb strings.Builder
	for i, p := range g.Points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s %.2f %.2f", cmd, p.X, p.Y)
	}
	return sb.String()
}

// PointAt returns the index of the point nearest to x.
func (g LineGeometry) PointAt(x float64) (int, bool) {
	if len(g.Points) == 0 {
		return 0, false
	}
	best, bestDist := 0, math.Inf(1)
	for i, p := range g.Points {
		if d := math.Abs(p.X - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, true
}

// FormatValue prints whole numbers without decimals.
func FormatValue(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
