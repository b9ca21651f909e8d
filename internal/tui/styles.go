package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorAccent    = lipgloss.Color("#C084FC")
	colorMuted     = lipgloss.Color("#636E72")
	colorText      = lipgloss.Color("#FFFFFF")
	colorError     = lipgloss.Color("#FF4757")
	colorFavorite  = lipgloss.Color("#FFE66D")
	colorStatusBar = lipgloss.Color("236")
)

var (
	appTitleStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorPrimary).
			Bold(true).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1)

	activeTabStyle = tabStyle.
			Foreground(colorAccent).
			Bold(true).
			Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	selectedCardStyle = cardStyle.
				BorderForeground(colorAccent)

	cardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
	favoriteStyle  = lipgloss.NewStyle().Foreground(colorFavorite)
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	labelStyle     = lipgloss.NewStyle().Foreground(colorMuted).Width(10)

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorPrimary)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	focusedInputStyle = inputStyle.BorderForeground(colorAccent)

	dropdownStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	errorBoxStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorStatusBar).
			Padding(0, 1)

	statusMutedStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Background(colorStatusBar)

	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	enabledStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
)
