package ui

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// PickItem is one selectable row. Disabled rows are rendered dimmed and
// cannot be chosen (used for invalid profiles so the reason stays visible).
type PickItem struct {
	Name     string
	Detail   string
	Disabled bool
}

// Pick shows an interactive selector and returns the chosen item's name.
func Pick(title string, items []PickItem) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("nothing to pick from")
	}

	m := pickerModel{title: title, items: items}
	for m.cursor < len(items) && items[m.cursor].Disabled {
		m.cursor++
	}

	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	fm, ok := finalModel.(pickerModel)
	if !ok || !fm.chosen {
		return "", fmt.Errorf("cancelled")
	}
	return fm.items[fm.cursor].Name, nil
}

type pickerModel struct {
	title    string
	items    []PickItem
	cursor   int
	chosen   bool
	quitting bool
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.quitting = true
			return m, tea.Quit
		case "up", "k":
			m.cursor = m.move(-1)
		case "down", "j":
			m.cursor = m.move(1)
		case "enter":
			if !m.items[m.cursor].Disabled {
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// move steps the cursor over disabled rows, staying put at the edges.
func (m pickerModel) move(delta int) int {
	for i := m.cursor + delta; i >= 0 && i < len(m.items); i += delta {
		if !m.items[i].Disabled {
			return i
		}
	}
	return m.cursor
}

func (m pickerModel) View() string {
	if m.chosen || m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n" + titleStyle.Render(m.title) + "\n\n")
	for i, item := range m.items {
		line := item.Name
		if item.Detail != "" {
			line += "  " + dimStyle.Render(item.Detail)
		}
		switch {
		case item.Disabled:
			b.WriteString(itemStyle.Render(dimStyle.Render(line)))
		case i == m.cursor:
			b.WriteString(selectedStyle.Render("> " + line))
		default:
			b.WriteString(itemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n" + dimStyle.Render("↑/↓ move · enter select · esc cancel") + "\n")
	return b.String()
}
