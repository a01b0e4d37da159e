package streaks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KKM43/Habbit-AI-App/internal/streak"
)

var (
	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(20)

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Width(12)

	bestStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Underline(true)
)

// Row pairs a habit name with its computed streaks.
type Row struct {
	Name   string
	Result streak.Result
}

type Model struct {
	viewport viewport.Model
	rows     []Row
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.rows) == 0 {
		return "\n  No habits to show."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetRows(rows []Row) {
	m.rows = rows
	m.render()
}

func (m *Model) render() {
	if len(m.rows) == 0 {
		m.viewport.SetContent("No habits to show.")
		return
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-20s%-12s%-12s", "Habit", "Current", "Best")) + "\n")

	for _, row := range m.rows {
		name := row.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		b.WriteString(nameStyle.Render(name))
		b.WriteString(currentStyle.Render(fmt.Sprintf("%d", row.Result.Current)))
		b.WriteString(bestStyle.Render(fmt.Sprintf("%d", row.Result.Best)))
		b.WriteString("\n")
	}

	m.viewport.SetContent(b.String())
}
