package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/export"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/mirror"
	"github.com/sadopc/mirror/internal/store"
)

const tickInterval = 30 * time.Second

var exportFormats = []struct {
	name string
	ext  string
	save func(mirror.Snapshot, string) error
}{
	{"CSV", "csv", export.ToCSV},
	{"JSON", "json", export.ToJSON},
	{"SVG", "svg", export.ToSVG},
}

// App is the root Bubble Tea model.
type App struct {
	store *store.Store
	feed  *feed.Feed
	log   *log.Logger
	loc   *time.Location

	width  int
	height int

	activeView    viewState
	mode          mirror.Mode // last dashboard mode shown, kept while in settings
	day           calendar.Date
	showHelp      bool
	exportPicking bool
	exportCursor  int

	dashboard dashboardModel
	reports   reportsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusIsErr bool
}

func NewApp(s *store.Store, f *feed.Feed, logger *log.Logger, loc *time.Location) App {
	h := help.New()
	h.ShowAll = false

	today := func() calendar.Date { return calendar.Today(loc) }
	day := today()
	st := s.LoadViewState(day)

	return App{
		store:      s,
		feed:       f,
		log:        logger,
		loc:        loc,
		activeView: viewFor(st.Mode),
		mode:       st.Mode,
		day:        day,
		dashboard:  newDashboardModel(f, logger, today),
		reports:    newReportsModel(f, logger, today, st),
		settings:   newSettingsModel(s, f, today),
		help:       h,
	}
}

// Run starts the dashboard and blocks until the user quits.
func Run(s *store.Store, f *feed.Feed, logger *log.Logger, loc *time.Location) error {
	app := NewApp(s, f, logger, loc)
	final, err := tea.NewProgram(app, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	if a, ok := final.(App); ok {
		a.saveView()
	}
	return nil
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.openView(),
		a.settings.refresh(),
		a.pruneCache(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// openView loads the active view.
func (a *App) openView() tea.Cmd {
	switch a.activeView {
	case viewToday:
		return a.dashboard.refresh()
	case viewWeek, viewMonth:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.setMode(a.activeView.mode())
		return cmd
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) switchView(v viewState) (App, tea.Cmd) {
	a.activeView = v
	if v != viewSettings {
		a.mode = v.mode()
	}
	cmd := a.openView()
	a.saveView()
	return a, cmd
}

// saveView persists the cursors, metric and mode. Failures are logged and
// otherwise ignored.
func (a App) saveView() {
	st := a.reports.state
	st.Mode = a.mode
	if err := a.store.SaveViewState(st); err != nil {
		a.log.Warn("saving view state", "err", err)
	}
}

func (a App) pruneCache() tea.Cmd {
	s, day := a.store, a.day
	logger := a.log
	return func() tea.Msg {
		n, err := s.PruneSnapshots(s.CacheKeep(), day)
		if err != nil {
			logger.Warn("pruning snapshots", "err", err)
		} else if n > 0 {
			logger.Debug("pruned snapshots", "removed", n)
		}
		return nil
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.dashboard.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A form captures every key, including the tab shortcuts.
		if a.activeView == viewSettings && a.settings.formActive {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.activeView != viewWeek && a.activeView != viewMonth {
				a.setStatus("Export is available on the week and month views", false)
				return a, nil
			}
			if !a.reports.loaded {
				a.setStatus("Nothing to export yet", false)
				return a, nil
			}
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.saveView()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewToday)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewWeek)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewMonth)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		// Date rollover moves the today view and the current period on.
		day := calendar.Today(a.loc)
		if day == a.day {
			return a, tickCmd()
		}
		a.log.Debug("date changed", "from", a.day, "to", day)
		a.day = day
		cmds := []tea.Cmd{tickCmd(), a.dashboard.refresh()}
		if a.reports.loaded {
			cmds = append(cmds, a.reports.refresh())
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case backendChangedMsg:
		a.setStatus("Backend saved", false)
		// Both models refetch so neither shows data from the old backend.
		cmds := []tea.Cmd{a.dashboard.refresh(), a.settings.refresh()}
		if a.reports.loaded {
			cmds = append(cmds, a.reports.refresh())
		}
		return a, tea.Batch(cmds...)

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case todayDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, tea.Batch(cmd, a.settings.refresh())

	case rangeDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, tea.Batch(cmd, a.settings.refresh())

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.statusIsErr = isErr
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewToday:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewWeek, viewMonth:
		before := a.reports.state
		a.reports, cmd = a.reports.update(msg)
		if a.reports.state.WeekCursor != before.WeekCursor ||
			a.reports.state.MonthCursor != before.MonthCursor ||
			a.reports.state.Metric != before.Metric {
			a.saveView()
		}
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewToday:
		content = a.dashboard.view()
	case viewWeek, viewMonth:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(a.height-headerHeight-footerHeight, 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("mirror")
	if !a.feed.Configured() {
		title += warningStyle.Render(" (offline)")
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.statusIsErr {
			style = errorStyle
		}
		status = style.Render(" " + truncate(a.status, a.width/2))
	}

	left := footerStyle.Render(helpView)
	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(status)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	rng := a.reports.snap.Range
	title := titleStyle.Render("Export") + mutedStyle.Render("  "+rng.String())
	rows := []string{title, ""}
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f.name))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		a.exportPicking = false
	}
	return a, nil
}

// exportPath is where a snapshot export lands: the home directory, or the
// working directory when there is none.
func exportPath(rng calendar.Range, ext string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, fmt.Sprintf("mirror-%s-%s.%s", rng.Start, rng.End, ext))
}

func (a App) doExport(format int) tea.Cmd {
	snap := a.reports.snap
	f := exportFormats[format]
	logger := a.log
	return func() tea.Msg {
		path := exportPath(snap.Range, f.ext)
		if err := f.save(snap, path); err != nil {
			logger.Error("export failed", "format", f.ext, "err", err)
			return statusMsg{text: fmt.Sprintf("%s error: %v", f.name, err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}
