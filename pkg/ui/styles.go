package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#22d3ee")
	colorWarn   = lipgloss.Color("#fbbf24")
	colorErr    = lipgloss.Color("#ef4444")
	colorMuted  = lipgloss.Color("#64748b")
	colorText   = lipgloss.Color("#e2e8f0")
	colorPanel  = lipgloss.Color("#1e293b")

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPanel).
			Padding(0, 1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorPanel).
			Bold(true)

	statusMutedStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(colorPanel)

	flashStyle = lipgloss.NewStyle().
			Foreground(colorWarn).
			Background(colorPanel).
			Bold(true)

	errorBannerStyle = lipgloss.NewStyle().
				Foreground(colorErr).
				Bold(true).
				Padding(1, 2)

	emptyStateStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(1, 2)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Padding(1, 2)

	detailTitleStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)

	searchPromptStyle = lipgloss.NewStyle().
				Foreground(colorWarn).
				Background(colorPanel).
				Bold(true)
)
