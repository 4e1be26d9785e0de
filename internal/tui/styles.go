package tui

import (
	"charm.land/lipgloss/v2"

	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
)

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Title      lipgloss.Style
	PaneTitle  lipgloss.Style
	Selected   lipgloss.Style
	Cursor     lipgloss.Style
	Dim        lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style
	Separator  lipgloss.Style
	FormLabel  lipgloss.Style
	StatusBar  lipgloss.Style
	Pending    lipgloss.Style
	Processing lipgloss.Style
	Completed  lipgloss.Style
	Failed     lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		PaneTitle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Cursor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Dim:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Notice:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("244")),
		Separator:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		FormLabel:  lipgloss.NewStyle().Bold(true),
		StatusBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Pending:    lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Processing: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Completed:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		Failed:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// RenderStatus returns the colored display form of an ingestion status.
// Unknown statuses render verbatim without styling.
func (s Styles) RenderStatus(status knowledge.FileStatus) string {
	switch status {
	case knowledge.StatusPending:
		return s.Pending.Render(string(status))
	case knowledge.StatusProcessing:
		return s.Processing.Render(string(status))
	case knowledge.StatusCompleted:
		return s.Completed.Render(string(status))
	case knowledge.StatusError:
		return s.Failed.Render(string(status))
	}
	return string(status)
}
