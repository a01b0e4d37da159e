package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true).
			Width(20)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	missedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	frozenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	legendStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Row is one habit's history line in the grid.
type Row struct {
	Name   string
	Record models.CompletionRecord
}

// Model renders a habits x days completion grid inside a viewport.
type Model struct {
	viewport viewport.Model
	rows     []Row
	dates    []string
	width    int
	height   int
}

func New(width, height int) Model {
	vp := viewport.New(width, height)
	return Model{
		viewport: vp,
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
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

// SetData replaces the grid contents. Dates are oldest first.
func (m *Model) SetData(rows []Row, dates []string) {
	m.rows = rows
	m.dates = dates
	m.render()
}

func mark(record models.CompletionRecord, day string) string {
	entry, ok := record[day]
	if !ok {
		return emptyStyle.Render("·")
	}
	switch entry.Status {
	case constants.StatusDone:
		return doneStyle.Render("x")
	case constants.StatusSkipped:
		return emptyStyle.Render("s")
	case constants.StatusMissed:
		return missedStyle.Render("!")
	default:
		if entry.Frozen {
			return frozenStyle.Render("*")
		}
		return emptyStyle.Render("·")
	}
}

func (m *Model) render() {
	if len(m.rows) == 0 {
		m.viewport.SetContent("No habits to show.")
		return
	}

	var b strings.Builder

	header := strings.Repeat(" ", 20)
	for _, d := range m.dates {
		if t, err := time.Parse(constants.DateFormat, d); err == nil {
			header += fmt.Sprintf(" %2d", t.Day())
		} else {
			header += "  ?"
		}
	}
	b.WriteString(headerStyle.Render(header) + "\n")

	for _, row := range m.rows {
		name := row.Name
		if len(name) > 20 {
			name = name[:17] + "..."
		}
		b.WriteString(nameStyle.Render(name))
		for _, d := range m.dates {
			b.WriteString("  " + mark(row.Record, d))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n" + legendStyle.Render("x done   s skipped   ! missed   * frozen   · none"))

	m.viewport.SetContent(b.String())
}
