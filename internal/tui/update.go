package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/logger"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/habitlist"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/settingsview"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// Handle Add Habit State
	if m.state == StateAddHabit {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.formError = ""
			m.state = StateToday
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			habit := models.Habit{
				ID:             uuid.New().String(),
				Name:           strings.TrimSpace(m.habitForm.Name),
				ReminderHour:   constants.DefaultReminderHour,
				ReminderMinute: constants.DefaultReminderMinute,
				CreatedAt:      m.clk.Now(),
			}
			remind := strings.TrimSpace(m.habitForm.Remind)
			if remind != "" {
				if err := habit.SetReminderTime(remind); err != nil {
					m.formError = err.Error()
					m.form.State = huh.StateNormal
					return m, tea.Batch(cmds...)
				}
				habit.RemindersEnabled = true
			}

			if _, err := m.store.GetHabitByName(habit.Name); err == nil {
				m.formError = fmt.Sprintf("A habit named %q already exists", habit.Name)
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}

			if err := m.store.AddHabit(habit); err != nil {
				m.formError = fmt.Sprintf("Failed to add habit: %v", err)
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}
			m.syncReminder(habit)
			m.formError = ""
			m.refreshHabits()
			m.state = StateToday
		case huh.StateAborted:
			m.formError = ""
			m.state = StateToday
		}
		return m, tea.Batch(cmds...)
	}

	// Handle Edit Settings State
	if m.state == StateEditSettings {
		if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
			m.formError = ""
			m.state = StateSettings
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f
		}
		cmds = append(cmds, cmd)

		switch m.form.State {
		case huh.StateCompleted:
			settings, _ := m.store.GetSettings()
			settings.NotificationsEnabled = m.settingsForm.NotificationsEnabled
			settings.DefaultReminderTime = m.settingsForm.DefaultReminderTime

			logDays, err := strconv.Atoi(strings.TrimSpace(m.settingsForm.DefaultLogDays))
			if err != nil || logDays < 1 {
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}
			settings.DefaultLogDays = logDays

			freezes, err := strconv.Atoi(strings.TrimSpace(m.settingsForm.FreezesPerMonth))
			if err != nil || freezes < 0 {
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}
			settings.FreezesPerMonth = freezes
			settings.Timezone = strings.TrimSpace(m.settingsForm.Timezone)

			if err := m.store.SaveSettings(settings); err != nil {
				m.formError = fmt.Sprintf("Failed to save settings: %v", err)
				m.form.State = huh.StateNormal
				return m, tea.Batch(cmds...)
			}

			m.settingsModel.SetSettings(settings)
			m.formError = ""
			m.refreshHabits()
			m.state = StateSettings
		case huh.StateAborted:
			m.formError = ""
			m.state = StateSettings
		}
		return m, tea.Batch(cmds...)
	}

	// Handle confirmation states
	if m.state == StateConfirmArchive || m.state == StateConfirmDelete || m.state == StateConfirmRestore {
		if msg, ok := msg.(tea.KeyMsg); ok {
			switch msg.String() {
			case "y":
				switch m.state {
				case StateConfirmArchive:
					m.archiveHabit(m.habitToArchiveID)
					m.habitToArchiveID = ""
				case StateConfirmDelete:
					m.deleteHabit(m.habitToDeleteID)
					m.habitToDeleteID = ""
				case StateConfirmRestore:
					m.restoreHabit(m.habitToRestoreID)
					m.habitToRestoreID = ""
				}
				m.refreshHabits()
				m.state = StateToday
			case "n", "q", "esc":
				m.habitToArchiveID = ""
				m.habitToDeleteID = ""
				m.habitToRestoreID = ""
				m.state = StateToday
			}
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := msg.Height - 6
		if contentHeight < 1 {
			contentHeight = 1
		}
		m.habitList.SetSize(msg.Width-4, contentHeight)
		m.calModel.SetSize(msg.Width-4, contentHeight)
		m.streaksModel.SetSize(msg.Width-4, contentHeight)
		m.settingsModel.SetSize(msg.Width-4, contentHeight)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			// The today list owns its own keys while filtering
			if m.state != StateToday {
				m.quitting = true
				return m, tea.Quit
			}
		case "tab":
			m.statusMsg = ""
			m.state = nextView(m.state)
			return m, nil
		case "shift+tab":
			m.statusMsg = ""
			m.state = prevView(m.state)
			return m, nil
		case "?":
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{}
		m.form = newHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = StateAddHabit
		return m, m.form.Init()

	case habitlist.MarkHabitMsg:
		m.markHabit(msg.ID, msg.Status)
		m.refreshHabits()
		return m, nil

	case habitlist.UnmarkHabitMsg:
		m.unmarkHabit(msg.ID)
		m.refreshHabits()
		return m, nil

	case habitlist.FreezeHabitMsg:
		m.freezeHabit(msg.ID)
		m.refreshHabits()
		return m, nil

	case habitlist.ArchiveHabitMsg:
		m.habitToArchiveID = msg.ID
		m.state = StateConfirmArchive
		return m, nil

	case habitlist.DeleteHabitMsg:
		m.habitToDeleteID = msg.ID
		m.state = StateConfirmDelete
		return m, nil

	case habitlist.RestoreHabitMsg:
		m.habitToRestoreID = msg.ID
		m.state = StateConfirmRestore
		return m, nil

	case settingsview.EditSettingsMsg:
		settings, err := m.store.GetSettings()
		if err != nil {
			m.statusMsg = "Failed to load settings: " + err.Error()
			return m, nil
		}
		m.settingsForm = &SettingsFormModel{
			NotificationsEnabled: settings.NotificationsEnabled,
			DefaultReminderTime:  settings.DefaultReminderTime,
			DefaultLogDays:       strconv.Itoa(settings.DefaultLogDays),
			FreezesPerMonth:      strconv.Itoa(settings.FreezesPerMonth),
			Timezone:             settings.Timezone,
		}
		m.form = newSettingsForm(m.settingsForm)
		m.previousState = m.state
		m.state = StateEditSettings
		return m, m.form.Init()
	}

	// Delegate to the active view
	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateLog:
		m.calModel, cmd = m.calModel.Update(msg)
	case StateStreaks:
		m.streaksModel, cmd = m.streaksModel.Update(msg)
	case StateSettings:
		m.settingsModel, cmd = m.settingsModel.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func nextView(s SessionState) SessionState {
	switch s {
	case StateToday:
		return StateLog
	case StateLog:
		return StateStreaks
	case StateStreaks:
		return StateSettings
	case StateSettings:
		return StateToday
	}
	return s
}

func prevView(s SessionState) SessionState {
	switch s {
	case StateToday:
		return StateSettings
	case StateLog:
		return StateToday
	case StateStreaks:
		return StateLog
	case StateSettings:
		return StateStreaks
	}
	return s
}

func (m *Model) markHabit(id string, status constants.EntryStatus) {
	now := m.clk.Now()
	today := now.Format(constants.DateFormat)

	entry, err := m.store.GetHabitEntry(id, today)
	if err == nil {
		entry.Status = status
		entry.Frozen = false
		entry.Note = strings.TrimSpace(entry.Note)
		entry.UpdatedAt = now
		if err := m.store.UpdateHabitEntry(entry); err != nil {
			m.statusMsg = "Failed to update entry: " + err.Error()
		}
		return
	}

	newEntry := models.HabitEntry{
		ID:        uuid.New().String(),
		HabitID:   id,
		Day:       today,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := newEntry.Validate(); err != nil {
		m.statusMsg = "Invalid entry: " + err.Error()
		return
	}
	if err := m.store.AddHabitEntry(newEntry); err != nil {
		m.statusMsg = "Failed to add entry: " + err.Error()
	}
}

func (m *Model) unmarkHabit(id string) {
	today := m.clk.Now().Format(constants.DateFormat)
	entry, err := m.store.GetHabitEntry(id, today)
	if err != nil {
		return
	}
	if err := m.store.DeleteHabitEntry(entry.ID); err != nil {
		m.statusMsg = "Failed to unmark: " + err.Error()
	}
}

func (m *Model) freezeHabit(id string) {
	now := m.clk.Now()
	today := now.Format(constants.DateFormat)
	monthKey := now.Format(constants.FreezeMonthFormat)

	allowance := constants.DefaultFreezesPerMonth
	if settings, err := m.store.GetSettings(); err == nil {
		allowance = settings.FreezesPerMonth
	}

	state, err := m.store.GetFreezeState(monthKey)
	if err != nil {
		m.statusMsg = "Failed to read freeze state: " + err.Error()
		return
	}
	if state.Remaining(allowance) == 0 {
		m.statusMsg = fmt.Sprintf("No freezes left for %s (%d/%d used)", monthKey, state.Used, allowance)
		return
	}

	entry, err := m.store.GetHabitEntry(id, today)
	if err == nil {
		if entry.Frozen {
			m.statusMsg = "Already frozen today"
			return
		}
		if entry.Status == constants.StatusDone {
			m.statusMsg = "Already done today, no freeze needed"
			return
		}
		entry.Frozen = true
		entry.UpdatedAt = now
		if err := m.store.UpdateHabitEntry(entry); err != nil {
			m.statusMsg = "Failed to freeze: " + err.Error()
			return
		}
	} else {
		newEntry := models.HabitEntry{
			ID:        uuid.New().String(),
			HabitID:   id,
			Day:       today,
			Frozen:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := m.store.AddHabitEntry(newEntry); err != nil {
			m.statusMsg = "Failed to freeze: " + err.Error()
			return
		}
	}

	state.Used++
	if err := m.store.SaveFreezeState(state); err != nil {
		m.statusMsg = "Failed to record freeze usage: " + err.Error()
		return
	}
	m.statusMsg = fmt.Sprintf("Frozen. %d freeze(s) left for %s", state.Remaining(allowance), monthKey)
}

func (m *Model) archiveHabit(id string) {
	if err := m.store.ArchiveHabit(id); err != nil {
		m.statusMsg = "Failed to archive: " + err.Error()
		return
	}
	m.cancelReminder(id)
}

func (m *Model) deleteHabit(id string) {
	m.cancelReminder(id)
	if err := m.store.DeleteHabit(id); err != nil {
		m.statusMsg = "Failed to delete: " + err.Error()
	}
}

func (m *Model) restoreHabit(id string) {
	if err := m.store.RestoreHabit(id); err != nil {
		m.statusMsg = "Failed to restore: " + err.Error()
		return
	}
	if habit, err := m.store.GetHabit(id); err == nil {
		m.syncReminder(habit)
	}
}

// syncReminder mirrors the CLI behavior: scheduling failures are logged, not
// surfaced, so a flaky notification channel never blocks a habit save.
func (m *Model) syncReminder(habit models.Habit) {
	if m.reminders == nil {
		return
	}
	if !habit.RemindersEnabled {
		m.cancelReminder(habit.ID)
		return
	}
	if _, err := m.reminders.Schedule(habit.ReminderSpec()); err != nil {
		logger.Warn("Failed to schedule reminder", "habit", habit.Name, "error", err)
	}
}

func (m *Model) cancelReminder(habitID string) {
	if m.reminders == nil {
		return
	}
	if err := m.reminders.Cancel(habitID); err != nil {
		logger.Warn("Failed to cancel reminder", "habit", habitID, "error", err)
	}
}
