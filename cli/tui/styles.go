// Package tui provides Bubble Tea TUI components for the seam CLI.
//
// TUI rules:
//   - TUI is opt-in only (--tui flag)
//   - TUI is read-only only (inspect views)
//   - TUI uses same data payloads as non-TUI rendering
//   - No TUI-exclusive data allowed
package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	primaryColor   = lipgloss.Color("#0D9488") // teal
	successColor   = lipgloss.Color("#22C55E") // green
	warningColor   = lipgloss.Color("#EAB308") // yellow
	errorColor     = lipgloss.Color("#DC2626") // red
	mutedColor     = lipgloss.Color("#71717A") // gray
	highlightColor = lipgloss.Color("#2563EB") // blue
	textColor      = lipgloss.Color("#FAFAFA")
)

// Styles for TUI components.
var (
	// TitleStyle for view headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// LabelStyle and ValueStyle form the label/value rows of summary views.
	LabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Width(16)
	ValueStyle = lipgloss.NewStyle().
			Foreground(textColor)

	// Outcome accents.
	SuccessStyle = lipgloss.NewStyle().Foreground(successColor)
	WarningStyle = lipgloss.NewStyle().Foreground(warningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(errorColor)

	// BoxStyle for bordered containers.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	// HelpStyle for keybinding hints.
	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	// SelectedRowStyle for the cursor row in record lists.
	SelectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(highlightColor)

	// TableHeaderStyle for record list column headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(mutedColor)

	// Stat boxes show one disposition tally each.
	StatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(0, 2).
			Width(20).
			Align(lipgloss.Center)
	StatLabelStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Align(lipgloss.Center)
	StatValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Align(lipgloss.Center)
)

// StateStyle maps an outcome or disposition string to its accent style.
func StateStyle(state string) lipgloss.Style {
	switch state {
	case "success", "complete", "received":
		return SuccessStyle
	case "incomplete", "truncated", "duplicate_segment", "ignored":
		return WarningStyle
	case "checksum_mismatch", "protocol_failure", "rejected", "no_code":
		return ErrorStyle
	default:
		return ValueStyle
	}
}
