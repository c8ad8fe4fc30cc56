package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/mirror/internal/backend"
	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/mirror"
)

// reportsModel is the week and month view. Both share one model; the mode
// lives in state.
type reportsModel struct {
	feed  *feed.Feed
	seq   *backend.Sequencer
	log   *log.Logger
	today func() calendar.Date

	width  int
	height int

	state     mirror.ViewState
	payload   mirror.RangePayload
	snap      mirror.Snapshot
	loaded    bool
	loading   bool
	offline   bool
	fetchedAt time.Time
	err       error

	emotionCursor int
	categories    barchart.Model
}

func newReportsModel(f *feed.Feed, logger *log.Logger, today func() calendar.Date, st mirror.ViewState) reportsModel {
	return reportsModel{
		feed:       f,
		seq:        &backend.Sequencer{},
		log:        logger,
		today:      today,
		state:      st,
		categories: barchart.New(60, 8),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
	r.recompute()
}

// setMode switches between week and month. It returns a fetch when the
// range changed.
func (r reportsModel) setMode(m mirror.Mode) (reportsModel, tea.Cmd) {
	if r.state.Mode == m {
		if r.loaded {
			return r, nil
		}
		// First load keeps the restored metric.
		return r.apply(r.state)
	}
	return r.apply(r.state.WithMode(m))
}

// apply moves to next, fetching when the range differs and recomputing
// otherwise.
func (r reportsModel) apply(next mirror.ViewState) (reportsModel, tea.Cmd) {
	fetch := !r.loaded || r.state.NeedsFetch(next, r.today())
	r.state = next
	if fetch {
		cmd := r.refresh()
		return r, cmd
	}
	r.recompute()
	return r, nil
}

func (r *reportsModel) refresh() tea.Cmd {
	seq := r.seq.Next()
	rng := r.state.Range(r.today())
	r.loading = true
	f := r.feed
	return func() tea.Msg {
		res, err := f.Range(context.Background(), rng)
		return rangeDataMsg{seq: seq, result: res, err: err}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case rangeDataMsg:
		if !r.seq.IsLatest(msg.seq) {
			r.log.Debug("dropping stale range response", "seq", msg.seq, "latest", r.seq.Current())
			return r, nil
		}
		r.loading = false
		if msg.err != nil {
			r.err = msg.err
			r.loaded = true
			r.payload = mirror.RangePayload{Range: r.state.Range(r.today())}
			r.offline = false
			r.recompute()
			return r, func() tea.Msg { return statusMsg{text: describeError(msg.err), isError: true} }
		}
		r.err = msg.result.Err
		r.payload = msg.result.Payload
		r.offline = msg.result.Offline
		r.fetchedAt = msg.result.FetchedAt
		r.loaded = true
		r.recompute()
		if r.offline {
			return r, func() tea.Msg {
				return statusMsg{text: "Offline, showing cached data. " + describeError(msg.result.Err), isError: true}
			}
		}
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Prev):
			return r.apply(r.state.Prev())
		case key.Matches(msg, keys.Next):
			next, ok := r.state.Next(r.today())
			if !ok {
				return r, func() tea.Msg { return statusMsg{text: "Already at the current " + r.state.Mode.String()} }
			}
			return r.apply(next)
		case key.Matches(msg, keys.Metric):
			return r.apply(r.state.WithMetric(nextMetric(r.snap.Metrics, r.state.Metric)))
		case key.Matches(msg, keys.Up):
			if r.emotionCursor > 0 {
				r.emotionCursor--
			}
		case key.Matches(msg, keys.Down):
			if r.emotionCursor < len(r.snap.Pie.Slices)-1 {
				r.emotionCursor++
			}
		case key.Matches(msg, keys.Enter):
			if r.emotionCursor < len(r.snap.Pie.Slices) {
				return r.apply(r.state.ToggleEmotion(r.snap.Pie.Slices[r.emotionCursor].Name))
			}
		case key.Matches(msg, keys.Clear), key.Matches(msg, keys.Back):
			if r.state.Emotion != "" {
				return r.apply(r.state.ToggleEmotion(r.state.Emotion))
			}
		case key.Matches(msg, keys.Retry):
			cmd := r.refresh()
			return r, cmd
		}
	}
	return r, nil
}

// nextMetric cycles through metrics, wrapping back to total points.
func nextMetric(metrics []mirror.Metric, cur mirror.Metric) mirror.Metric {
	for i, m := range metrics {
		if m == cur {
			return metrics[(i+1)%len(metrics)]
		}
	}
	return mirror.TotalPoints()
}

// recompute derives the snapshot and the category chart from the current
// state and payload.
func (r *reportsModel) recompute() {
	if !r.loaded {
		return
	}
	r.snap = mirror.Compute(r.state, r.payload, r.today(), chart.DefaultBounds())
	if r.emotionCursor >= len(r.snap.Pie.Slices) {
		r.emotionCursor = max(len(r.snap.Pie.Slices)-1, 0)
	}
	r.buildCategoryChart()
}

func (r *reportsModel) buildCategoryChart() {
	w := max(r.width/2-6, 20)
	r.categories = barchart.New(w, 8)

	var bars []barchart.BarData
	for i, e := range r.snap.Categories {
		bars = append(bars, barchart.BarData{
			Label: truncate(e.Name, 8),
			Values: []barchart.BarValue{{
				Name:  e.Name,
				Value: e.Weight,
				Style: sliceStyle(i),
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	r.categories.PushAll(bars)
	r.categories.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4
	if w < 30 {
		return "Terminal too small"
	}
	if !r.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading " + r.state.Range(r.today()).String() + "…"))
	}

	header := r.renderHeader()
	line := r.renderLine(w - 4)
	summary := r.renderSummary()

	half := w/2 - 2
	left := panelStyle.Width(half).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Categories"), r.renderCategories()))
	right := panelStyle.Width(half).Render(r.renderEmotions(half - 4))
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	parts := []string{header, summary, "", line, bottom}
	if dd := r.renderDrilldown(w - 4); dd != "" {
		parts = append(parts, dd)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r reportsModel) renderHeader() string {
	title := "Week"
	if r.state.Mode == mirror.ModeMonth {
		title = r.snap.Range.Start.Time().Format("January 2006")
	}
	rng := mutedStyle.Render(fmt.Sprintf("%s to %s", r.snap.Range.Start, r.snap.Range.End))

	var flags []string
	if r.loading {
		flags = append(flags, mutedStyle.Render("loading…"))
	}
	if r.offline {
		flags = append(flags, offlineBadgeStyle.Render("offline · fetched "+formatAgo(time.Now(), r.fetchedAt)))
	} else if r.err != nil {
		flags = append(flags, errorBadgeStyle.Render("fetch failed · r to retry"))
	}
	nav := "←"
	if r.state.CanAdvance(r.today()) {
		nav += " →"
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(" "+title), "  ", rng, "  ", mutedStyle.Render(nav), "  ", strings.Join(flags, "  "))
}

func (r reportsModel) renderSummary() string {
	s := r.snap
	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left, mutedStyle.Render(label), cellValueStyle.Render(value))
	}
	top := func(e *mirror.Entry) string {
		if e == nil {
			return "none"
		}
		return truncate(e.Name, 16)
	}
	cells := []string{
		cell("Points", fmt.Sprintf("%d", s.Totals.PointsTotal)),
		cell("Completions", fmt.Sprintf("%d", s.Totals.CompletionsTotal)),
		cell("Consistency", fmt.Sprintf("%d%%", s.Consistency)),
		cell("Streak", fmt.Sprintf("%d / %d", s.Streak.Current, s.Streak.Best)),
		cell("Top category", top(s.TopCategory)),
		cell("Top emotion", top(s.TopEmotion)),
	}
	for i := range cells {
		cells[i] = cellStyle.Render(cells[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// renderLine plots the metric series with braille lines and puts the axis
// labels chosen by the geometry underneath.
func (r reportsModel) renderLine(w int) string {
	title := titleStyle.Render(r.state.Metric.Label()) + mutedStyle.Render("  m: change metric")
	pts := r.snap.Line.Points
	if len(pts) == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No data")))
	}

	h := 10
	if r.height > 40 {
		h = 14
	}
	maxX := float64(max(len(pts)-1, 1))
	lc := linechart.New(w, h, 0, maxX, r.snap.Line.Min, r.snap.Line.Max)
	lc.DrawXYAxisAndLabel()
	for i := 1; i < len(pts); i++ {
		lc.DrawBrailleLine(
			canvas.Float64Point{X: float64(i - 1), Y: pts[i-1].Value},
			canvas.Float64Point{X: float64(i), Y: pts[i].Value},
		)
	}
	if len(pts) == 1 {
		p := canvas.Float64Point{X: 0, Y: pts[0].Value}
		lc.DrawBrailleLine(p, p)
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lc.View(), r.axisLabels(w)))
}

func (r reportsModel) axisLabels(w int) string {
	pts := r.snap.Line.Points
	row := []rune(strings.Repeat(" ", w))
	step := float64(w-1) / math.Max(float64(len(pts)-1), 1)
	for i, p := range pts {
		if !p.ShowAxis {
			continue
		}
		x := int(math.Round(float64(i) * step))
		for j, c := range p.AxisLabel {
			if x+j < len(row) {
				row[x+j] = c
			}
		}
	}
	return mutedStyle.Render(string(row))
}

func (r reportsModel) renderCategories() string {
	if len(r.snap.Categories) == 0 {
		return mutedStyle.Render("No completions in this range")
	}
	var rows []string
	rows = append(rows, r.categories.View())
	for i, e := range r.snap.Categories {
		dot := sliceStyle(i).Render("●")
		rows = append(rows, fmt.Sprintf("%s %-18s %s", dot, truncate(e.Name, 18), chart.FormatValue(e.Weight)))
	}
	return strings.Join(rows, "\n")
}

// renderEmotions draws the emotion pie as a proportion bar plus a legend.
// Each bar cell takes the colour of the slice under its angle.
func (r reportsModel) renderEmotions(w int) string {
	title := titleStyle.Render("Emotions")
	pie := r.snap.Pie
	if len(pie.Slices) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No emotions recorded"))
	}

	index := make(map[string]int, len(pie.Slices))
	for i, s := range pie.Slices {
		index[s.Name] = i
	}
	var bar strings.Builder
	for x := 0; x < w; x++ {
		angle := (float64(x) + 0.5) / float64(w) * 2 * math.Pi
		s, ok := pie.SliceAt(angle)
		if !ok {
			bar.WriteString(" ")
			continue
		}
		bar.WriteString(sliceStyle(index[s.Name]).Render("█"))
	}

	rows := []string{title, bar.String(), ""}
	for i, s := range pie.Slices {
		cursor := "  "
		style := normalItemStyle
		if i == r.emotionCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := " "
		if r.state.Emotion != "" && mirror.SameName(r.state.Emotion, s.Name) {
			mark = "✓"
		}
		dot := sliceStyle(i).Render("●")
		rows = append(rows, style.Render(fmt.Sprintf("%s%s ", cursor, mark))+dot+
			style.Render(fmt.Sprintf(" %-16s %3.0f%%", truncate(s.Name, 16), s.Fraction*100)))
	}
	rows = append(rows, "", mutedStyle.Render("enter: drill down  c: clear"))
	return strings.Join(rows, "\n")
}

func (r reportsModel) renderDrilldown(w int) string {
	if r.state.Emotion == "" {
		return ""
	}
	sel, ok := r.snap.SelectedEmotion()
	if !ok {
		return panelStyle.Render(mutedStyle.Render(fmt.Sprintf("No %q entries in this range", r.state.Emotion)))
	}

	head := titleStyle.Render(sel.Name) + mutedStyle.Render(fmt.Sprintf("  %d times", sel.Count))
	if sel.AverageIntensity != nil {
		head += mutedStyle.Render(fmt.Sprintf(", average intensity %.1f", *sel.AverageIntensity))
	}
	rows := []string{head}
	for _, d := range r.snap.Drilldown {
		rows = append(rows, highlightStyle.Render(fmt.Sprintf("%s %s", r.state.AxisLabel(d.Date), d.Date)))
		for _, e := range d.Entries {
			line := "  · "
			if e.Intensity != nil {
				line += fmt.Sprintf("%d/10 ", *e.Intensity)
			}
			if !e.RecordedAt.IsZero() {
				line += e.RecordedAt.Local().Format("15:04 ")
			}
			line += e.Note
			rows = append(rows, truncate(line, w))
		}
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
