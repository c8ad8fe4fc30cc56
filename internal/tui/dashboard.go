package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/mirror/internal/backend"
	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/chart"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/goals"
	"github.com/sadopc/mirror/internal/mirror"
)

// dashboardModel is the today view.
type dashboardModel struct {
	feed  *feed.Feed
	seq   *backend.Sequencer
	log   *log.Logger
	today func() calendar.Date

	width  int
	height int

	summary   mirror.TodaySummary
	goals     []goals.Goal
	haveGoals bool
	loaded    bool
	loading   bool
	offline   bool
	fetchedAt time.Time
	err       error
}

func newDashboardModel(f *feed.Feed, logger *log.Logger, today func() calendar.Date) dashboardModel {
	return dashboardModel{
		feed:  f,
		seq:   &backend.Sequencer{},
		log:   logger,
		today: today,
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
}

func (d *dashboardModel) refresh() tea.Cmd {
	seq := d.seq.Next()
	day := d.today()
	d.loading = true
	f := d.feed
	return func() tea.Msg {
		ctx := context.Background()
		res, err := f.Today(ctx, day)
		msg := todayDataMsg{seq: seq, result: res, err: err}
		if err == nil && !res.Offline {
			msg.goals, msg.goalsErr = f.Goals(ctx)
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		if !d.seq.IsLatest(msg.seq) {
			d.log.Debug("dropping stale today response", "seq", msg.seq)
			return d, nil
		}
		d.loading = false
		d.loaded = true
		if msg.err != nil {
			d.err = msg.err
			d.summary = mirror.SummarizeToday(mirror.TodayPayload{Date: d.today()})
			return d, func() tea.Msg { return statusMsg{text: describeError(msg.err), isError: true} }
		}
		d.err = msg.result.Err
		d.offline = msg.result.Offline
		d.fetchedAt = msg.result.FetchedAt
		d.summary = mirror.SummarizeToday(msg.result.Payload)
		d.haveGoals = msg.goalsErr == nil && !d.offline
		if d.haveGoals {
			d.goals = msg.goals
		} else if msg.goalsErr != nil {
			d.log.Debug("goals unavailable", "err", msg.goalsErr)
		}
		if d.offline {
			return d, func() tea.Msg {
				return statusMsg{text: "Offline, showing cached data. " + describeError(msg.result.Err), isError: true}
			}
		}
		return d, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Retry) {
			cmd := d.refresh()
			return d, cmd
		}
	}
	return d, nil
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4
	if !d.loaded {
		return panelStyle.Width(w).Render(mutedStyle.Render("Loading today…"))
	}

	top := d.renderPointsPanel(w)
	half := w/2 - 2
	sessions := lipgloss.JoinHorizontal(lipgloss.Top,
		d.renderSession("Day", colorDay, d.summary.Day, half),
		d.renderSession("Night", colorNight, d.summary.Night, half),
	)
	parts := []string{top, sessions, d.renderCategoriesPanel(w)}
	if d.haveGoals && len(d.goals) > 0 {
		parts = append(parts, d.renderGoalsPanel(w))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (d dashboardModel) renderPointsPanel(w int) string {
	s := d.summary
	title := titleStyle.Render("Today") + "  " + mutedStyle.Render(s.Date.Time().Format("Monday, Jan 02"))
	points := pointsStyle.Render(fmt.Sprintf("%d", s.Points)) + mutedStyle.Render(" points")

	emotion := mutedStyle.Render("No emotion recorded yet")
	if s.Emotion != nil {
		emotion = "Feeling " + highlightStyle.Render(s.Emotion.Name)
		if s.Emotion.Intensity != nil {
			emotion += mutedStyle.Render(fmt.Sprintf(" (%d/10)", *s.Emotion.Intensity))
		}
		if s.Emotion.Note != "" {
			emotion += mutedStyle.Render(": " + truncate(s.Emotion.Note, w-30))
		}
	}

	status := ""
	switch {
	case d.loading:
		status = mutedStyle.Render("refreshing…")
	case d.offline:
		status = offlineBadgeStyle.Render("offline · fetched " + formatAgo(time.Now(), d.fetchedAt))
	case d.err != nil:
		status = errorBadgeStyle.Render("fetch failed · r to retry")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, "", points, emotion, status)
	style := panelStyle
	if s.Points > 0 {
		style = activePanelStyle
	}
	return style.Width(w).Render(content)
}

func (d dashboardModel) renderSession(name string, colour lipgloss.Color, acts []mirror.Activity, w int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colour).Render(name)
	if len(acts) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("Nothing yet")))
	}
	rows := []string{title}
	for _, a := range acts {
		at := "     "
		if !a.CompletedAt.IsZero() {
			at = a.CompletedAt.Local().Format("15:04")
		}
		rows = append(rows, fmt.Sprintf("%s %s %s",
			successStyle.Render("✓"), mutedStyle.Render(at),
			truncate(a.Name, w-18)+mutedStyle.Render(fmt.Sprintf(" +%d", a.Points))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderCategoriesPanel(w int) string {
	title := titleStyle.Render("Points by category")
	cats := d.summary.Categories.Renderable()
	if len(cats) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No points yet")))
	}
	barWidth := max(w-40, 10)
	rows := []string{title}
	for i, e := range cats {
		n := int(e.Weight / cats[0].Weight * float64(barWidth))
		bar := sliceStyle(i).Render(strings.Repeat("█", max(n, 1)))
		rows = append(rows, fmt.Sprintf("  %-18s %5s %s", truncate(e.Name, 18), chart.FormatValue(e.Weight), bar))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderGoalsPanel(w int) string {
	sum := goals.Summarize(d.goals)
	title := titleStyle.Render("Goals") + mutedStyle.Render(fmt.Sprintf("  %d of %d completed", sum.Completed, sum.Total))
	rows := []string{title}
	for _, g := range d.goals {
		mark := mutedStyle.Render("○")
		switch {
		case g.Completed:
			mark = successStyle.Render("●")
		case g.Progress.Reached():
			mark = warningStyle.Render("◐")
		}
		rows = append(rows, fmt.Sprintf("  %s %-30s %s", mark, truncate(g.Title, 30),
			mutedStyle.Render(fmt.Sprintf("%3d%%", g.Progress.Percent()))))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
