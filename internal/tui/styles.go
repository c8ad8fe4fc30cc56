package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/mirror/internal/export"
)

// Palette. Day and night follow the session colours of the web client.
var (
	colorPrimary   = lipgloss.Color("#8B7CF6")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#34D399")
	colorWarning   = lipgloss.Color("#FBBF24")
	colorError     = lipgloss.Color("#F87171")
	colorFg        = lipgloss.Color("#E5E7EB")
	colorSubtle    = lipgloss.Color("#374151")
	colorHighlight = lipgloss.Color("#93C5FD")
	colorDay       = lipgloss.Color("#FAA61A")
	colorNight     = lipgloss.Color("#00B0F4")
)

// sliceColor shares the export palette so the terminal and SVG charts
// agree.
func sliceColor(i int) lipgloss.Color {
	return lipgloss.Color(export.Palette[i%len(export.Palette)])
}

func sliceStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(sliceColor(i))
}

var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorPrimary).
			Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)
	// activePanelStyle marks a panel with something in it worth looking at.
	activePanelStyle = panelStyle.BorderForeground(colorPrimary)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	pointsStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	successStyle   = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle   = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle     = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Summary cells on the week and month views.
	cellStyle      = lipgloss.NewStyle().PaddingLeft(1).PaddingRight(3)
	cellValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHighlight)

	// Badges in view headers.
	offlineBadgeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(colorWarning).Padding(0, 1)
	errorBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#111827")).Background(colorError).Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorFg)
)
