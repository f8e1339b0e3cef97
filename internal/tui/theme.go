package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText     lipgloss.Color = "#cdd6f4"
	colorMuted    lipgloss.Color = "#a6adc8"
	colorBorder   lipgloss.Color = "#585b70"
	colorAccent   lipgloss.Color = "#89b4fa"
	colorSuccess  lipgloss.Color = "#a6e3a1"
	colorError    lipgloss.Color = "#f38ba8"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	authorStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	userTextStyle  = lipgloss.NewStyle().Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	selectedMarker = lipgloss.NewStyle().Foreground(colorAccent).Render("▸ ")

	infoBubble    = lipgloss.NewStyle().Foreground(colorText).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 1)
	warningBubble = infoBubble.BorderForeground(colorError)
	successBubble = infoBubble.BorderForeground(colorSuccess)

	inputStyle       = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(colorBorder)
	statusBarStyle   = lipgloss.NewStyle().Foreground(colorText)
	statusErrStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	footerKeyStyle   = lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Background(colorMantle)
	footerDescStyle  = lipgloss.NewStyle().Foreground(colorMuted).Background(colorMantle)
	footerSpaceStyle = lipgloss.NewStyle().Background(colorMantle)
)
