package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/calendar"
	"github.com/sadopc/mirror/internal/config"
	"github.com/sadopc/mirror/internal/feed"
	"github.com/sadopc/mirror/internal/store"
)

type settingsModel struct {
	store *store.Store
	feed  *feed.Feed
	today func() calendar.Date

	width  int
	height int

	data       settingsDataMsg
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	backendURL *string
	token      *string
	cacheKeep  *string
}

func newSettingsModel(s *store.Store, f *feed.Feed, today func() calendar.Date) settingsModel {
	u, tok, keep := "", "", ""
	return settingsModel{
		store:      s,
		feed:       f,
		today:      today,
		backendURL: &u,
		token:      &tok,
		cacheKeep:  &keep,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		msg := settingsDataMsg{url: s.feed.BaseURL(), cacheKeep: s.store.CacheKeep()}
		_, msg.token = s.store.Backend()
		keep := func(err error) {
			if msg.err == nil {
				msg.err = err
			}
		}
		var err error
		msg.lastFetch, err = s.store.LastFetch("")
		keep(err)
		msg.lastSuccess, err = s.store.LastSuccess()
		keep(err)
		msg.total, msg.failed, err = s.store.FetchStats(time.Now().Add(-24 * time.Hour))
		keep(err)
		msg.snapshots, err = s.store.ListSnapshots()
		keep(err)
		return msg
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.data = msg
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter):
			return s.showForm()
		case key.Matches(msg, keys.Prune):
			return s, s.prune()
		case key.Matches(msg, keys.Retry):
			return s, s.refresh()
		}
	}
	return s, nil
}

func (s settingsModel) prune() tea.Cmd {
	return func() tea.Msg {
		n, err := s.store.PruneSnapshots(s.store.CacheKeep(), s.today())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Prune error: %v", err), isError: true}
		}
		return statusMsg{text: fmt.Sprintf("Removed %d cached snapshots", n)}
	}
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.backendURL = s.data.url
	*s.token = s.data.token
	*s.cacheKeep = strconv.Itoa(s.store.CacheKeep())

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Backend URL").
				Placeholder("https://api.example.com").
				Value(s.backendURL).
				Validate(validateURL),
			huh.NewInput().Title("Token").
				EchoMode(huh.EchoModePassword).
				Value(s.token),
		).Title("Backend"),
		huh.NewGroup(
			huh.NewInput().Title("Cached ranges to keep").
				Value(s.cacheKeep).
				Validate(validateCount),
		).Title("Cache"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateURL(v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	u, err := url.ParseRequestURI(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http or https URL")
	}
	return nil
}

func validateCount(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number")
	}
	return nil
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.save()
	}

	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	u, tok, keep := *s.backendURL, *s.token, strings.TrimSpace(*s.cacheKeep)
	return func() tea.Msg {
		if err := s.store.SetSetting(store.KeyCacheKeep, keep); err != nil {
			return statusMsg{text: fmt.Sprintf("Save error: %v", err), isError: true}
		}
		if err := s.feed.Reconfigure(u, tok); err != nil {
			return statusMsg{text: fmt.Sprintf("Backend error: %v", err), isError: true}
		}
		return backendChangedMsg{}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	field := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(22).Render(label), value)
	}
	unset := mutedStyle.Render("not set")
	orUnset := func(v string) string {
		if v == "" {
			return unset
		}
		return highlightStyle.Render(v)
	}

	d := s.data
	now := time.Now()
	rows := []string{title, ""}
	if d.err != nil {
		rows = append(rows, errorBadgeStyle.Render(truncate("store error: "+d.err.Error(), w-6)), "")
	}
	rows = append(rows, field("Backend", orUnset(d.url)))
	rows = append(rows, field("Token", orUnset(config.MaskToken(d.token))))
	rows = append(rows, "")

	last := unset
	if d.lastSuccess != nil {
		last = highlightStyle.Render(formatAgo(now, d.lastSuccess.StartedAt))
	}
	rows = append(rows, field("Last sync", last))
	if d.lastFetch != nil && !d.lastFetch.OK() {
		rows = append(rows, field("Last error", errorStyle.Render(truncate(d.lastFetch.Error, w-30))))
	}
	stats := fmt.Sprintf("%d requests", d.total)
	if d.failed > 0 {
		stats += warningStyle.Render(fmt.Sprintf(", %d failed", d.failed))
	}
	rows = append(rows, field("Last 24 hours", stats))
	rows = append(rows, field("Cached ranges", fmt.Sprintf("%d (keeping %d)", len(d.snapshots), d.cacheKeep)))
	for i, info := range d.snapshots {
		if i == 5 {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    … %d more", len(d.snapshots)-5)))
			break
		}
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %s  %s", info.Range, formatAgo(now, info.FetchedAt))))
	}

	rows = append(rows, "", mutedStyle.Render("enter: edit  p: prune cache  r: reload"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
