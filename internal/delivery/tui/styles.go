// Package tui is the terminal front end: a search box with live
// suggestions, the match table, a markdown explanation and an add-row form.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	brandBlue = lipgloss.Color("#005A9C")
	textDark  = lipgloss.Color("#1c1c1c")
	mutedGrey = lipgloss.Color("#8a8a8a")
	errorRed  = lipgloss.Color("#e53935")
)

// Styles lipgloss styles used by the model
type Styles struct {
	Title      lipgloss.Style
	Input      lipgloss.Style
	Suggestion lipgloss.Style
	Selected   lipgloss.Style
	Header     lipgloss.Style
	Table      lipgloss.Style
	Status     lipgloss.Style
	Error      lipgloss.Style
	Help       lipgloss.Style
	Button     lipgloss.Style
}

// DefaultStyles the blue-on-white scheme of the breakdown tool
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(brandBlue).
			Padding(0, 1),
		Input: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(brandBlue).
			Padding(0, 1),
		Suggestion: lipgloss.NewStyle().PaddingLeft(2),
		Selected: lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(lipgloss.Color("#ffffff")).
			Background(brandBlue),
		Header: lipgloss.NewStyle().Bold(true).Foreground(brandBlue),
		Table: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(brandBlue).
			Foreground(textDark).
			Padding(0, 1),
		Status: lipgloss.NewStyle().Foreground(mutedGrey).Italic(true),
		Error:  lipgloss.NewStyle().Foreground(errorRed),
		Help:   lipgloss.NewStyle().Foreground(mutedGrey),
		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(brandBlue).
			Padding(0, 2),
	}
}
