// ABOUTME: lipgloss styles for the interactive notes screen.
// ABOUTME: Colors are ANSI-256 codes so they degrade on basic terminals.

package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorGrey      = "241"
	colorMagenta   = "170"
	colorLightBlue = "69"
	colorRed       = "196"
	colorYellow    = "214"
)

var (
	captionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMagenta)).Bold(true).Padding(1, 2, 0, 2)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey)).Padding(0, 2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)).Padding(0, 2)
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)).Padding(0, 2)
	bodyStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorLightBlue)).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(colorMagenta)).Bold(true)
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey))
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(colorGrey)).Italic(true)
)
