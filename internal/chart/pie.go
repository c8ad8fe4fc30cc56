package chart

import (
	"fmt"
	"math"
	"strings"
)

const fullTurn = 2 * math.Pi

// Weighted is one named weight to slice.
type Weighted struct {
	Name   string
	Weight float64
}

// Slice spans [Start, End) radians, measured clockwise from 12 o'clock.
type Slice struct {
	Name     string
	Weight   float64
	Fraction float64
	Start    float64
	End      float64
}

func (s Slice) Span() float64 { return s.End - s.Start }

type PieGeometry struct {
	Slices []Slice
	Total  float64 // raw sum; +Inf when huge weights overflow
}

// ProjectPie slices items in the given order. Items with blank names or
// non-positive, non-finite weights are skipped. The last slice always ends
// at exactly 2π.
func ProjectPie(items []Weighted) PieGeometry {
	var kept []Weighted
	var total, top float64
	for _, it := range items {
		if strings.TrimSpace(it.Name) == "" || math.IsNaN(it.Weight) || math.IsInf(it.Weight, 0) || it.Weight <= 0 {
			continue
		}
		kept = append(kept, it)
		total += it.Weight
		top = math.Max(top, it.Weight)
	}
	g := PieGeometry{Total: total}
	if len(kept) == 0 {
		return g
	}

	// Fractions come from weights relative to the largest one, so the sum
	// stays finite even when the raw total overflows.
	var scaled float64
	for _, it := range kept {
		scaled += it.Weight / top
	}

	g.Slices = make([]Slice, len(kept))
	acc := 0.0
	for i, it := range kept {
		frac := it.Weight / top / scaled
		start := acc * fullTurn
		acc += frac
		end := acc * fullTurn
		if i == len(kept)-1 {
			end = fullTurn
		}
		g.Slices[i] = Slice{Name: it.Name, Weight: it.Weight, Fraction: frac, Start: start, End: end}
	}
	return g
}

// SliceAt returns the slice under angle (radians clockwise from 12 o'clock,
// any winding).
func (g PieGeometry) SliceAt(angle float64) (Slice, bool) {
	if len(g.Slices) == 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return Slice{}, false
	}
	a := math.Mod(angle, fullTurn)
	if a < 0 {
		a += fullTurn
	}
	for _, s := range g.Slices {
		if a >= s.Start && a < s.End {
			return s, true
		}
	}
	return g.Slices[len(g.Slices)-1], true
}

// SliceAtPoint maps a screen offset from the centre (y grows downwards) to
// the slice under it.
func (g PieGeometry) SliceAtPoint(dx, dy float64) (Slice, bool) {
	if dx == 0 && dy == 0 {
		return Slice{}, false
	}
	return g.SliceAt(math.Atan2(dx, -dy))
}

// ArcPath is the SVG path of slice i on a circle of radius r at (cx, cy).
func (g PieGeometry) ArcPath(i int, cx, cy, r float64) string {
	s := g.Slices[i]
	if len(g.Slices) == 1 {
		// A lone slice is the whole disc; one arc cannot close on itself.
		return fmt.Sprintf("M %.2f %.2f m %.2f 0 a %.2f %.2f 0 1 0 %.2f 0 a %.2f %.2f 0 1 0 %.2f 0 Z",
			cx, cy, -r, r, r, 2*r, r, r, -2*r)
	}
	x0, y0 := polar(cx, cy, r, s.Start)
	x1, y1 := polar(cx, cy, r, s.End)
	large := 0
	if s.Fraction > 0.5 {
		large = 1
	}
	return fmt.Sprintf("M %.2f %.2f L %.2f %.2f A %.2f %.2f 0 %d 1 %.2f %.2f Z",
		cx, cy, x0, y0, r, r, large, x1, y1)
}

// polar converts a clockwise-from-12 angle to screen coordinates.
func polar(cx, cy, r, angle float64) (float64, float64) {
	a := angle - math.Pi/2
	return cx + r*math.Cos(a), cy + r*math.Sin(a)
}
