package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// pinListModel is the bubbletea model for interactive pin selection.
type pinListModel struct {
	items    []staleness
	cursor   int
	selected *staleness
	height   int
	offset   int
}

func newPinListModel(items []staleness) pinListModel {
	return pinListModel{items: items, height: 15}
}

func (m pinListModel) Init() tea.Cmd {
	return nil
}

func (m pinListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.selected = &m.items[m.cursor]
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pinListModel) View() string {
	s := listDimStyle.Render("Select a pin to bump (enter to confirm, q to quit)") + "\n\n"

	end := min(m.offset+m.height, len(m.items))
	for i := m.offset; i < end; i++ {
		item := m.items[i]
		line := fmt.Sprintf("%s %s %s", item.Pin.Spec(), iconArrow, item.Latest)
		if i == m.cursor {
			s += listSelectedStyle.Render("> "+line) + "\n"
		} else {
			s += listNormalStyle.Render("  "+line) + "\n"
		}
	}

	if len(m.items) > m.height {
		s += "\n" + listDimStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.items)))
	}
	return s
}

// pickPin runs the interactive picker and returns the chosen entry, or
// nil when the user quits without selecting.
func pickPin(items []staleness) (*staleness, error) {
	model, err := tea.NewProgram(newPinListModel(items)).Run()
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	final, ok := model.(pinListModel)
	if !ok {
		return nil, nil
	}
	return final.selected, nil
}
