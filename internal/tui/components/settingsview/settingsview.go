package settingsview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type EditSettingsMsg struct{}

type KeyMap struct {
	Edit key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	keys     KeyMap
	settings storage.Settings
}

func New(settings storage.Settings, width, height int) Model {
	m := Model{
		viewport: viewport.New(width, height),
		keys:     DefaultKeyMap(),
		settings: settings,
	}
	m.render()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, m.keys.Edit) {
			return m, func() tea.Msg { return EditSettingsMsg{} }
		}
	}
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.render()
}

func (m *Model) SetSettings(settings storage.Settings) {
	m.settings = settings
	m.render()
}

func (m *Model) render() {
	var b strings.Builder

	enabled := "no"
	if m.settings.NotificationsEnabled {
		enabled = "yes"
	}
	b.WriteString(labelStyle.Render("Notifications") + valueStyle.Render(enabled) + "\n")
	b.WriteString(labelStyle.Render("Default reminder time") + valueStyle.Render(m.settings.DefaultReminderTime) + "\n")
	b.WriteString(labelStyle.Render("Log window (days)") + valueStyle.Render(fmt.Sprintf("%d", m.settings.DefaultLogDays)) + "\n")
	b.WriteString(labelStyle.Render("Freezes per month") + valueStyle.Render(fmt.Sprintf("%d", m.settings.FreezesPerMonth)) + "\n")
	tz := m.settings.Timezone
	if tz == "" {
		tz = "(system)"
	}
	b.WriteString(labelStyle.Render("Timezone") + valueStyle.Render(tz) + "\n")
	b.WriteString("\n" + hintStyle.Render("Press 'e' to edit"))

	m.viewport.SetContent(b.String())
}
