package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/seam/cli/reader"
)

// InspectModel is a Bubble Tea model for the journal summary view.
type InspectModel struct {
	viewType string
	data     any
	width    int
	height   int
	quitting bool
}

// NewInspectModel creates a new inspect model.
func NewInspectModel(viewType string, data any) InspectModel {
	return InspectModel{
		viewType: viewType,
		data:     data,
	}
}

// Init implements tea.Model.
func (m InspectModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m InspectModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.viewType {
	case "inspect_journal":
		content = m.renderInspectJournal()
	default:
		content = fmt.Sprintf("Unknown view type: %s", m.viewType)
	}

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return content + "\n" + help
}

func (m InspectModel) renderInspectJournal() string {
	data, ok := m.data.(*reader.InspectJournalResponse)
	if !ok {
		return "Invalid data type for inspect_journal"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Journal Summary"))
	b.WriteString("\n\n")

	records := fmt.Sprintf("%d", data.Records)
	if data.Truncated {
		records += " " + WarningStyle.Render("(truncated)")
	}

	rows := [][]string{
		{"Journal", data.Journal},
		{"Version", data.Version},
		{"Captures Dir", data.Dir},
		{"Started At", data.StartedAt},
		{"Compressed", fmt.Sprintf("%t", data.Compressed)},
		{"Records", records},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render(row[0]+":"),
			ValueStyle.Render(row[1])))
	}

	b.WriteString("\n")
	boxes := []string{
		m.renderStatBox("Meta", data.Frames.MetaFragments, highlightColor),
		m.renderStatBox("Data", data.Frames.DataSegments, successColor),
		m.renderStatBox("Rejected", data.Frames.Rejected, errorColor),
		m.renderStatBox("No Code", data.Frames.NoCode, warningColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n")

	if data.Transfer != nil {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Transfer"))
		b.WriteString("\n")

		state := "incomplete"
		if data.Transfer.Complete {
			state = "complete"
		}
		checksum := "absent"
		if data.HasChecksum {
			checksum = "received"
		}

		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Segments:"),
			ValueStyle.Render(fmt.Sprintf("%d of %d",
				data.Transfer.SegmentsSeen, data.Transfer.SegmentCount))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("ID Width:"),
			ValueStyle.Render(fmt.Sprintf("%d", data.Transfer.IDWidth))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Hash Length:"),
			ValueStyle.Render(fmt.Sprintf("%d", data.Transfer.HashLength))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Missing:"),
			ValueStyle.Render(formatMissing(data.Transfer.MissingIDs))))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("State:"),
			StateStyle(state).Render(state)))
		b.WriteString(fmt.Sprintf("%s %s\n",
			LabelStyle.Render("Checksum:"),
			StateStyle(checksum).Render(checksum)))
	}

	return BoxStyle.Render(b.String())
}

func (m InspectModel) renderStatBox(label string, value int64, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// formatMissing renders a missing-id list, capped so a sparse journal
// does not flood the view.
func formatMissing(ids []uint64) string {
	if len(ids) == 0 {
		return "none"
	}

	parts := make([]string, 0, 8)
	for i, id := range ids {
		if i == 8 {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return fmt.Sprintf("%d (%s)", len(ids), strings.Join(parts, ", "))
}

// keyMap defines key bindings.
type keyMap struct {
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunInspectTUI runs the inspect TUI.
func RunInspectTUI(viewType string, data any) error {
	model := NewInspectModel(viewType, data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderInspectStatic renders inspect data without full TUI (for fallback).
func RenderInspectStatic(viewType string, data any) string {
	model := NewInspectModel(viewType, data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
