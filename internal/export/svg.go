package export

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/mirror"
)

// Slice colours, assigned in slice order and repeated when exhausted.
var Palette = []string{
	"#6C63FF", "#FF6584", "#43B581", "#FAA61A",
	"#00B0F4", "#F47FFF", "#E67E22", "#95A5A6",
}

const (
	pieSize   = 340
	pieRadius = 130
	legendX   = pieSize + 10
)

// WriteSVG draws the line chart of snap followed by its emotion pie as one
// standalone SVG document.
func WriteSVG(out io.Writer, snap mirror.Snapshot) error {
	w := bufio.NewWriter(out)
	line := snap.Line
	b := line.Bounds
	height := b.Height + pieSize

	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" font-family="sans-serif" font-size="12">`+"\n",
		num(b.Width), num(height))
	fmt.Fprintf(w, `<title>%s %s</title>`+"\n", esc(snap.State.Metric.Label()), esc(snap.Range.String()))

	writeLine(w, line)
	fmt.Fprintf(w, `<g transform="translate(0 %s)">`+"\n", num(b.Height))
	writePie(w, snap.Pie)
	w.WriteString("</g>\n</svg>\n")
	return w.Flush()
}

func writeLine(w *bufio.Writer, g chart.LineGeometry) {
	b := g.Bounds
	w.WriteString(`<g class="line-chart">` + "\n")
	for _, y := range g.GridLines() {
		fmt.Fprintf(w, `<line class="grid" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#ddd"/>`+"\n",
			num(b.PadLeft), num(y), num(b.Width-b.PadRight), num(y))
	}
	fmt.Fprintf(w, `<line class="axis" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#888"/>`+"\n",
		num(b.PadLeft), num(g.Baseline()), num(b.Width-b.PadRight), num(g.Baseline()))

	if len(g.Points) > 0 {
		fmt.Fprintf(w, `<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n", g.Path(), Palette[0])
	}
	for _, p := range g.Points {
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="4" fill="%s"><title>%s: %s</title></circle>`+"\n",
			num(p.X), num(p.Y), Palette[0], esc(p.Key), esc(p.Label))
		if p.ShowLabel {
			fmt.Fprintf(w, `<text class="value" x="%s" y="%s" text-anchor="middle">%s</text>`+"\n",
				num(p.X), num(p.LabelY), esc(p.Label))
		}
		if p.ShowAxis {
			fmt.Fprintf(w, `<text class="axis-label" x="%s" y="%s" text-anchor="middle" fill="#666">%s</text>`+"\n",
				num(p.X), num(g.Baseline()+20), esc(p.AxisLabel))
		}
	}
	w.WriteString("</g>\n")
}

func writePie(w *bufio.Writer, g chart.PieGeometry) {
	cx, cy := float64(pieSize)/2, float64(pieSize)/2
	w.WriteString(`<g class="pie">` + "\n")
	if len(g.Slices) == 0 {
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%d" fill="none" stroke="#ddd"/>`+"\n", num(cx), num(cy), pieRadius)
	}
	for i, s := range g.Slices {
		colour := Palette[i%len(Palette)]
		fmt.Fprintf(w, `<path d="%s" fill="%s"><title>%s</title></path>`+"\n",
			g.ArcPath(i, cx, cy, pieRadius), colour, esc(s.Name))
		y := 30 + i*20
		fmt.Fprintf(w, `<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`+"\n", legendX, y-10, colour)
		fmt.Fprintf(w, `<text x="%d" y="%d">%s %s (%.0f%%)</text>`+"\n",
			legendX+18, y, esc(s.Name), chart.FormatValue(s.Weight), s.Fraction*100)
	}
	w.WriteString("</g>\n")
}

func ToSVG(snap mirror.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg file: %w", err)
	}
	defer f.Close()

	if err := WriteSVG(f, snap); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return f.Close()
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func esc(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
