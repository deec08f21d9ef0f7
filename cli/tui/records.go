package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/justapithecus/seam/cli/reader"
)

// RecordsModel is a Bubble Tea model for browsing journal records.
type RecordsModel struct {
	items    []reader.RecordItem
	cursor   int
	offset   int
	width    int
	height   int
	quitting bool
}

// NewRecordsModel creates a new records model.
func NewRecordsModel(data any) RecordsModel {
	items, _ := data.([]reader.RecordItem)
	return RecordsModel{items: items}
}

// Init implements tea.Model.
func (m RecordsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			if vis := m.visibleRows(); m.cursor >= m.offset+vis {
				m.offset = m.cursor - vis + 1
			}
			return m, nil
		}
	}

	return m, nil
}

// visibleRows returns how many record rows fit the current window.
// Title, column header, and help line take the rest.
func (m RecordsModel) visibleRows() int {
	rows := m.height - 6
	if rows < 5 {
		rows = 5
	}
	return rows
}

// View implements tea.Model.
func (m RecordsModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Journal Records (%d)", len(m.items))))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(ValueStyle.Render("(no records)"))
	} else {
		header := fmt.Sprintf("  %-6s %-22s %-17s %-4s %-8s %8s",
			"INDEX", "NAME", "DISPOSITION", "TAG", "SEGMENT", "SIZE")
		b.WriteString(TableHeaderStyle.Render(header))
		b.WriteString("\n")

		end := m.offset + m.visibleRows()
		if end > len(m.items) {
			end = len(m.items)
		}
		for i := m.offset; i < end; i++ {
			item := m.items[i]

			segment := "-"
			if item.SegmentID != nil {
				segment = fmt.Sprintf("%d", *item.SegmentID)
			}
			tag := item.Tag
			if tag == "" {
				tag = "-"
			}

			row := fmt.Sprintf("%-6d %-22s %-17s %-4s %-8s %8d",
				item.Index, truncate(item.Name, 22), item.Disposition,
				tag, segment, item.PayloadSize)
			if i == m.cursor {
				b.WriteString(SelectedRowStyle.Render("> " + row))
			} else {
				b.WriteString("  " + StateStyle(item.Disposition).Render(row))
			}
			b.WriteString("\n")
		}
	}

	help := HelpStyle.Render("Up/Down to move, q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// RunRecordsTUI runs the record browser TUI.
func RunRecordsTUI(data any) error {
	model := NewRecordsModel(data)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderRecordsStatic renders the record list without full TUI (for fallback).
func RenderRecordsStatic(data any) string {
	model := NewRecordsModel(data)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
