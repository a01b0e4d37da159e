package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/reminder"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
	"github.com/KKM43/Habbit-AI-App/internal/streak"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/calendar"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/habitlist"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/settingsview"
	"github.com/KKM43/Habbit-AI-App/internal/tui/components/streaks"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateLog
	StateStreaks
	StateSettings
	StateAddHabit
	StateEditSettings
	StateConfirmArchive
	StateConfirmDelete
	StateConfirmRestore
)

type HabitFormModel struct {
	Name   string
	Remind string
}

type SettingsFormModel struct {
	NotificationsEnabled bool
	DefaultReminderTime  string
	DefaultLogDays       string
	FreezesPerMonth      string
	Timezone             string
}

type Model struct {
	store         storage.Provider
	reminders     *reminder.Scheduler
	clk           clock.Clock
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	habitList     habitlist.Model
	calModel      calendar.Model
	streaksModel  streaks.Model
	settingsModel settingsview.Model
	form          *huh.Form
	habitForm     *HabitFormModel
	settingsForm  *SettingsFormModel

	habitToArchiveID string
	habitToDeleteID  string
	habitToRestoreID string

	formError string
	statusMsg string
	quitting  bool
	width     int
	height    int
}

func NewModel(store storage.Provider, reminders *reminder.Scheduler, clk clock.Clock) Model {
	if clk == nil {
		clk = clock.Real{}
	}

	settings, err := store.GetSettings()
	if err != nil {
		settings = storage.Settings{
			DefaultLogDays:  constants.DefaultLogDays,
			FreezesPerMonth: constants.DefaultFreezesPerMonth,
		}
	}

	m := Model{
		store:         store,
		reminders:     reminders,
		clk:           clk,
		state:         StateToday,
		keys:          DefaultKeyMap(),
		help:          help.New(),
		habitList:     habitlist.New(nil, 0, 0),
		calModel:      calendar.New(0, 0),
		streaksModel:  streaks.New(0, 0),
		settingsModel: settingsview.New(settings, 0, 0),
	}
	m.refreshHabits()

	return m
}

// refreshHabits reloads every habit view from storage: the today list, the
// log grid and the streak table all derive from the same fetch.
func (m *Model) refreshHabits() {
	now := m.clk.Now()
	today := now.Format(constants.DateFormat)

	habits, err := m.store.GetAllHabits(false, true)
	if err != nil {
		m.statusMsg = "Failed to load habits: " + err.Error()
		return
	}

	settings, err := m.store.GetSettings()
	logDays := constants.DefaultLogDays
	if err == nil && settings.DefaultLogDays > 0 {
		logDays = settings.DefaultLogDays
	}
	dates := streak.DatesInRange(logDays, now)

	items := make([]habitlist.Item, 0, len(habits))
	var calRows []calendar.Row
	var streakRows []streaks.Row
	for i := range habits {
		h := habits[i]
		isDeleted := h.DeletedAt != nil

		var record models.CompletionRecord
		if !isDeleted {
			record, err = m.store.GetCompletionRecord(h.ID, h.CreatedAt.Format(constants.DateFormat), today)
			if err != nil {
				record = models.CompletionRecord{}
			}
		}

		item := habitlist.Item{
			Habit:     h,
			IsDeleted: isDeleted,
		}
		if !isDeleted {
			item.Streak = streak.Compute(record, now)
			if entry, err := m.store.GetHabitEntry(h.ID, today); err == nil {
				item.Entry = &entry
			}
		}
		items = append(items, item)

		if !isDeleted && h.ArchivedAt == nil {
			calRows = append(calRows, calendar.Row{Name: h.Name, Record: record})
			streakRows = append(streakRows, streaks.Row{Name: h.Name, Result: item.Streak})
		}
	}

	m.habitList.SetItems(items)
	m.calModel.SetData(calRows, dates)
	m.streaksModel.SetRows(streakRows)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Enter}
	return [][]key.Binding{global, navigation}
}

func (m Model) Init() tea.Cmd {
	return nil
}
