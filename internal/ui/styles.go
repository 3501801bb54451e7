package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	primaryColor = lipgloss.Color("#7C3AED") // Purple
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Yellow
	errorColor   = lipgloss.Color("#EF4444") // Red
	accentColor  = lipgloss.Color("#06B6D4") // Cyan
	mutedColor   = lipgloss.Color("#6B7280") // Gray

	// Header styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2).
			MarginBottom(1)

	logoStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// Status styles
	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Component styles
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)

	highlightStyle = lipgloss.NewStyle().
			Background(primaryColor).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

// Status names understood by StatusIndicator. The install outcomes share
// their names with install.Status.
const (
	StatusPending      = "pending"
	StatusRunning      = "running"
	StatusInstalled    = "installed"
	StatusFailed       = "failed"
	StatusNotInstalled = "notInstalled"
	StatusInfo         = "info"
	StatusWarning      = "warning"
)

// StatusIndicator renders the glyph for a status.
func StatusIndicator(status string) string {
	indicators := map[string]string{
		StatusInstalled:    successStyle.Render("✔"),
		StatusFailed:       errorStyle.Render("✘"),
		StatusNotInstalled: warningStyle.Render("➜"),
		StatusWarning:      warningStyle.Render("⚠"),
		StatusInfo:         infoStyle.Render("ℹ"),
		StatusRunning:      infoStyle.Render("⏳"),
		StatusPending:      mutedStyle.Render("⋯"),
	}

	if indicator, ok := indicators[status]; ok {
		return indicator
	}
	return mutedStyle.Render("•")
}

// adaptiveCardStyle fits a card to the terminal width.
func adaptiveCardStyle(width int) lipgloss.Style {
	if width <= 6 {
		return cardStyle
	}
	return cardStyle.Width(width - 4)
}
