package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/git-epic/internal/domain"
)

// Colors defines the palette used for command output.
var Colors = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
}{
	Primary: lipgloss.Color("#6C5CE7"), // Purple
	Muted:   lipgloss.Color("#636E72"), // Gray
	Error:   lipgloss.Color("#D63031"), // Red
	Success: lipgloss.Color("#00B894"), // Green
	Warning: lipgloss.Color("#FDCB6E"), // Yellow
}

// Styles holds the lipgloss styles for command output.
var Styles = struct {
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Open    lipgloss.Style
	Closed  lipgloss.Style
	Dirty   lipgloss.Style
}{
	Header:  lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary),
	Muted:   lipgloss.NewStyle().Foreground(Colors.Muted),
	Success: lipgloss.NewStyle().Foreground(Colors.Success),
	Warning: lipgloss.NewStyle().Foreground(Colors.Warning),
	Error:   lipgloss.NewStyle().Bold(true).Foreground(Colors.Error),
	Open:    lipgloss.NewStyle().Foreground(Colors.Success),
	Closed:  lipgloss.NewStyle().Foreground(Colors.Muted),
	Dirty:   lipgloss.NewStyle().Foreground(Colors.Warning),
}

// stateStyle returns the style for an issue state.
func stateStyle(s domain.IssueState) lipgloss.Style {
	if s == domain.StateClosed {
		return Styles.Closed
	}
	return Styles.Open
}
