package tui

import (
	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string

	switch m.state {
	case StateToday:
		content = docStyle.Render(m.habitList.View())
	case StateLog:
		content = docStyle.Render(m.calModel.View())
	case StateStreaks:
		content = docStyle.Render(m.streaksModel.View())
	case StateSettings:
		content = docStyle.Render(m.settingsModel.View())
	case StateAddHabit, StateEditSettings:
		content = m.viewForm()
	case StateConfirmArchive:
		content = m.viewConfirm(warningStyle.Render("Archive this habit? Its history is kept."))
	case StateConfirmDelete:
		content = m.viewConfirm(dangerStyle.Render("Delete this habit? (soft delete, restorable)"))
	case StateConfirmRestore:
		content = m.viewConfirm(warningStyle.Render("Restore this deleted habit?"))
	}

	var status string
	if m.statusMsg != "" {
		status = statusStyle.Render(m.statusMsg)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		status,
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	var tabs []string
	tabTitles := []string{"Today", "Log", "Streaks", "Settings"}
	for i, title := range tabTitles {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewForm() string {
	form := m.form.View()
	if m.formError != "" {
		form = lipgloss.JoinVertical(lipgloss.Left, dangerStyle.Render(m.formError), form)
	}
	return form
}

func (m Model) viewConfirm(prompt string) string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			prompt,
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
