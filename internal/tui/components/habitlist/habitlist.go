package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/streak"
)

type AddHabitMsg struct{}

type MarkHabitMsg struct {
	ID     string
	Status constants.EntryStatus
}

type UnmarkHabitMsg struct {
	ID string
}

type FreezeHabitMsg struct {
	ID string
}

type ArchiveHabitMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

type RestoreHabitMsg struct {
	ID string
}

type Item struct {
	Habit     models.Habit
	Entry     *models.HabitEntry
	Streak    streak.Result
	IsDeleted bool
}

func (i Item) marker() string {
	if i.Entry == nil {
		return "○"
	}
	switch i.Entry.Status {
	case constants.StatusDone:
		return "✓"
	case constants.StatusSkipped:
		return "–"
	case constants.StatusMissed:
		return "✗"
	default:
		if i.Entry.Frozen {
			return "❄"
		}
		return "○"
	}
}

func (i Item) Title() string {
	title := i.Habit.Name
	if i.IsDeleted {
		return "[DELETED] " + title
	}
	if i.Habit.ArchivedAt != nil {
		return "[ARCHIVED] " + title
	}
	return i.marker() + " " + title
}

func (i Item) Description() string {
	if i.IsDeleted {
		return "can restore with 'r'"
	}
	if i.Habit.ArchivedAt != nil {
		return "archived"
	}
	desc := fmt.Sprintf("streak %d (best %d)", i.Streak.Current, i.Streak.Best)
	if i.Habit.RemindersEnabled {
		desc += " · reminder " + i.Habit.ReminderTime()
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Mark    key.Binding
	Skip    key.Binding
	Miss    key.Binding
	Unmark  key.Binding
	Freeze  key.Binding
	Archive key.Binding
	Delete  key.Binding
	Restore key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Mark: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark done"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
		Miss: key.NewBinding(
			key.WithKeys("!"),
			key.WithHelp("!", "missed"),
		),
		Unmark: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unmark"),
		),
		Freeze: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "freeze"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Restore: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restore"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(items []Item, width, height int) Model {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}

	l := list.New(listItems, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Mark, keys.Skip, keys.Unmark, keys.Freeze}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Mark, keys.Skip, keys.Miss, keys.Unmark, keys.Freeze, keys.Archive, keys.Delete, keys.Restore}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

func (m *Model) SetItems(items []Item) {
	listItems := make([]list.Item, len(items))
	for i, it := range items {
		listItems[i] = it
	}
	m.list.SetItems(listItems)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Mark):
			if i, ok := m.active(); ok {
				return m, func() tea.Msg { return MarkHabitMsg{ID: i.Habit.ID, Status: constants.StatusDone} }
			}
		case key.Matches(msg, m.keys.Skip):
			if i, ok := m.active(); ok {
				return m, func() tea.Msg { return MarkHabitMsg{ID: i.Habit.ID, Status: constants.StatusSkipped} }
			}
		case key.Matches(msg, m.keys.Miss):
			if i, ok := m.active(); ok {
				return m, func() tea.Msg { return MarkHabitMsg{ID: i.Habit.ID, Status: constants.StatusMissed} }
			}
		case key.Matches(msg, m.keys.Unmark):
			if i, ok := m.active(); ok && i.Entry != nil {
				return m, func() tea.Msg { return UnmarkHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Freeze):
			if i, ok := m.active(); ok {
				return m, func() tea.Msg { return FreezeHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.active(); ok {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok && !i.IsDeleted {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Restore):
			if i, ok := m.list.SelectedItem().(Item); ok && i.IsDeleted {
				return m, func() tea.Msg { return RestoreHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// active returns the selected item when it can accept day markings.
func (m Model) active() (Item, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok || i.IsDeleted || i.Habit.ArchivedAt != nil {
		return Item{}, false
	}
	return i, true
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
