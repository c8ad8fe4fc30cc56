package chart

import (
	"math"
	"strings"
	"testing"
)

const eps = 1e-9

func samples(values ...float64) []Sample {
	out := make([]Sample, len(values))
	for i, v := range values {
		out[i] = Sample{Key: string(rune('a' + i)), Value: v}
	}
	return out
}

func inBounds(t *testing.T, g LineGeometry) {
	t.Helper()
	b := g.Bounds
	for _, p := range g.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Fatalf("non-finite point %+v", p)
		}
		if p.X < b.PadLeft-eps || p.X > b.Width-b.PadRight+eps {
			t.Fatalf("x out of bounds: %+v", p)
		}
		if p.Y < b.PadTop-eps || p.Y > b.Height-b.PadBottom+eps {
			t.Fatalf("y out of bounds: %+v", p)
		}
		if p.LabelY < b.PadTop+labelTopInset-eps || p.LabelY > b.Height-b.PadBottom-labelBotInset+eps {
			t.Fatalf("label out of bounds: %+v", p)
		}
	}
}

// ============================================================
// Line
// ============================================================

func TestProjectLineSinglePoint(t *testing.T) {
	g := ProjectLine(samples(5), DefaultBounds())
	if len(g.Points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(g.Points))
	}
	inBounds(t, g)
	if g.Points[0].X != 55 {
		t.Fatalf("expected x at left padding, got %v", g.Points[0].X)
	}
	if g.Points[0].Y != 28 {
		t.Fatalf("max value should sit on the top padding, got %v", g.Points[0].Y)
	}
}

func TestProjectLineAllZero(t *testing.T) {
	g := ProjectLine(samples(0, 0, 0, 0), DefaultBounds())
	inBounds(t, g)
	if g.Max != 1 || g.Min != 0 {
		t.Fatalf("expected fallback scale 0..1, got %v..%v", g.Min, g.Max)
	}
	for _, p := range g.Points {
		if p.Y != g.Baseline() {
			t.Fatalf("zero should sit on the baseline, got %v", p.Y)
		}
	}
}

func TestProjectLineFormula(t *testing.T) {
	b := DefaultBounds()
	g := ProjectLine(samples(0, 10, 5), b)
	inBounds(t, g)

	step := (b.Width - b.PadLeft - b.PadRight) / 2
	for i, p := range g.Points {
		if math.Abs(p.X-(b.PadLeft+float64(i)*step)) > eps {
			t.Fatalf("point %d x=%v", i, p.X)
		}
	}
	wantMid := b.PadTop + 0.5*(b.Height-b.PadTop-b.PadBottom)
	if math.Abs(g.Points[2].Y-wantMid) > eps {
		t.Fatalf("expected y=%v, got %v", wantMid, g.Points[2].Y)
	}
	if !(g.Points[1].Y < g.Points[2].Y && g.Points[2].Y < g.Points[0].Y) {
		t.Fatal("larger values should plot higher")
	}
}

func TestLabelFlipsBelowNearTop(t *testing.T) {
	g := ProjectLine(samples(0, 10), DefaultBounds())
	top := g.Points[1]
	if top.LabelY <= top.Y {
		t.Fatalf("label at the top edge should move below the point: y=%v label=%v", top.Y, top.LabelY)
	}
	bottom := g.Points[0]
	if bottom.LabelY >= bottom.Y {
		t.Fatalf("label near the baseline should stay above: y=%v label=%v", bottom.Y, bottom.LabelY)
	}
}

func TestDenseModeOnlyChangesLabels(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		if i%4 == 0 {
			values[i] = float64(i)
		}
	}
	b := DefaultBounds()
	dense := ProjectLine(samples(values...), b)
	if !dense.Dense {
		t.Fatal("30 points should be dense")
	}
	inBounds(t, dense)

	b.DenseThreshold = 100
	sparse := ProjectLine(samples(values...), b)
	if sparse.Dense {
		t.Fatal("threshold override ignored")
	}
	for i := range dense.Points {
		if dense.Points[i].X != sparse.Points[i].X || dense.Points[i].Y != sparse.Points[i].Y {
			t.Fatalf("density moved point %d", i)
		}
		if dense.Points[i].Value == 0 && dense.Points[i].ShowLabel {
			t.Fatalf("dense zero label %d should be hidden", i)
		}
		if !sparse.Points[i].ShowLabel || !sparse.Points[i].ShowAxis {
			t.Fatalf("sparse point %d should show labels", i)
		}
	}
	if !dense.Points[len(dense.Points)-1].ShowAxis {
		t.Fatal("last axis label should always show")
	}
}

func TestProjectLineNonFinite(t *testing.T) {
	g := ProjectLine(samples(math.NaN(), math.Inf(1), 3), DefaultBounds())
	inBounds(t, g)
}

func TestPathAndGrid(t *testing.T) {
	g := ProjectLine(samples(1, 2), DefaultBounds())
	path := g.Path()
	if !strings.HasPrefix(path, "M 55.00 ") || !strings.Contains(path, " L 980.00 ") {
		t.Fatalf("unexpected path %q", path)
	}
	if len(g.GridLines()) != 3 {
		t.Fatal("expected 3 grid lines")
	}
}

func TestPointAt(t *testing.T) {
	g := ProjectLine(samples(1, 2, 3), DefaultBounds())
	i, ok := g.PointAt(970)
	if !ok || i != 2 {
		t.Fatalf("got %d %v", i, ok)
	}
}

func TestFormatValue(t *testing.T) {
	if FormatValue(12) != "12" || FormatValue(2.5) != "2.5" {
		t.Fatalf("got %s %s", FormatValue(12), FormatValue(2.5))
	}
}

// ============================================================
// Pie
// ============================================================

func TestProjectPieSpans(t *testing.T) {
	g := ProjectPie([]Weighted{{"A", 1}, {"B", 1}, {"C", 2}})
	if len(g.Slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(g.Slices))
	}
	if g.Slices[0].Span() != 2*math.Pi*0.25 {
		t.Fatalf("A span = %v", g.Slices[0].Span())
	}
	if g.Slices[len(g.Slices)-1].End != 2*math.Pi {
		t.Fatalf("last slice ends at %v", g.Slices[2].End)
	}
	var sum float64
	for i, s := range g.Slices {
		sum += s.Span()
		if i > 0 && s.Start != g.Slices[i-1].End {
			t.Fatalf("gap between slices %d and %d", i-1, i)
		}
	}
	if math.Abs(sum-2*math.Pi) > eps {
		t.Fatalf("spans sum to %v", sum)
	}
	if g.Slices[0].Start != 0 {
		t.Fatal("first slice should start at 12 o'clock")
	}
}

func TestProjectPieManySlicesCloses(t *testing.T) {
	var items []Weighted
	for i := 0; i < 7; i++ {
		items = append(items, Weighted{Name: string(rune('a' + i)), Weight: 1})
	}
	g := ProjectPie(items)
	if g.Slices[6].End != 2*math.Pi {
		t.Fatalf("last slice ends at %v", g.Slices[6].End)
	}
}

func TestProjectPieSkipsMalformed(t *testing.T) {
	g := ProjectPie([]Weighted{{"", 3}, {"A", 0}, {"B", math.NaN()}, {"C", -1}, {"D", 2}})
	if len(g.Slices) != 1 || g.Slices[0].Name != "D" {
		t.Fatalf("got %+v", g.Slices)
	}
	if ProjectPie(nil).Slices != nil {
		t.Fatal("empty pie should have no slices")
	}
}

func TestProjectPieHugeWeights(t *testing.T) {
	g := ProjectPie([]Weighted{{"A", 1e308}, {"B", 1e308}})
	if len(g.Slices) != 2 {
		t.Fatalf("expected 2 slices, got %d", len(g.Slices))
	}
	for _, s := range g.Slices {
		if math.Abs(s.Fraction-0.5) > eps {
			t.Fatalf("%s fraction = %v", s.Name, s.Fraction)
		}
	}
	if math.Abs(g.Slices[0].End-math.Pi) > eps {
		t.Fatalf("A should end at half a turn, got %v", g.Slices[0].End)
	}
	if s, _ := g.SliceAt(math.Pi / 2); s.Name != "A" {
		t.Fatalf("quarter turn hit %q", s.Name)
	}
}

func TestSliceAt(t *testing.T) {
	g := ProjectPie([]Weighted{{"A", 1}, {"B", 1}, {"C", 2}})
	cases := []struct {
		angle float64
		want  string
	}{
		{0, "A"},
		{math.Pi / 4, "A"},
		{math.Pi * 0.75, "B"},
		{math.Pi * 1.5, "C"},
		{-math.Pi / 4, "C"},
		{2*math.Pi + 0.1, "A"},
	}
	for _, c := range cases {
		s, ok := g.SliceAt(c.angle)
		if !ok || s.Name != c.want {
			t.Fatalf("SliceAt(%v) = %q, want %q", c.angle, s.Name, c.want)
		}
	}
}

func TestSliceAtPoint(t *testing.T) {
	g := ProjectPie([]Weighted{{"A", 1}, {"B", 1}, {"C", 2}})
	// Just right of 12 o'clock is A; straight down is C; straight left is C.
	if s, _ := g.SliceAtPoint(1, -10); s.Name != "A" {
		t.Fatalf("got %q", s.Name)
	}
	if s, _ := g.SliceAtPoint(10, 1); s.Name != "B" {
		t.Fatalf("got %q", s.Name)
	}
	if s, _ := g.SliceAtPoint(-10, 0); s.Name != "C" {
		t.Fatalf("got %q", s.Name)
	}
	if _, ok := g.SliceAtPoint(0, 0); ok {
		t.Fatal("centre should not select a slice")
	}
}

func TestArcPath(t *testing.T) {
	g := ProjectPie([]Weighted{{"A", 1}, {"B", 3}})
	p := g.ArcPath(1, 150, 150, 110)
	if !strings.HasPrefix(p, "M 150.00 150.00 L ") || !strings.Contains(p, " 0 1 1 ") {
		t.Fatalf("unexpected path %q", p)
	}
	whole := ProjectPie([]Weighted{{"A", 1}}).ArcPath(0, 150, 150, 110)
	if strings.Count(whole, " a ") != 2 {
		t.Fatalf("single slice should draw a full disc, got %q", whole)
	}
}
