package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/streak"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit an existing habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Mark    HabitMarkCmd    `cmd:"" help:"Mark a habit done, skipped, or missed for a day."`
	Today   HabitTodayCmd   `cmd:"" help:"Show today's habit status."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Streaks HabitStreaksCmd `cmd:"" help:"Show current and best streaks."`
	Freeze  HabitFreezeCmd  `cmd:"" help:"Spend a streak freeze on a day."`
	Archive HabitArchiveCmd `cmd:"" help:"Archive a habit."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Remind string `help:"Daily reminder time as HH:MM." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Check if habit with same name already exists
	_, err := ctx.Store.GetHabitByName(c.Name)
	if err == nil {
		return fmt.Errorf("habit with name %q already exists", c.Name)
	}

	habit := models.Habit{
		ID:             uuid.New().String(),
		Name:           c.Name,
		ReminderHour:   constants.DefaultReminderHour,
		ReminderMinute: constants.DefaultReminderMinute,
		CreatedAt:      ctx.Clock.Now(),
	}

	if c.Remind != "" {
		if err := habit.SetReminderTime(c.Remind); err != nil {
			return err
		}
		habit.RemindersEnabled = true
	}

	if err := habit.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		return err
	}

	ctx.SyncReminder(habit)

	fmt.Printf("Added habit: %s\n", c.Name)
	if habit.RemindersEnabled {
		fmt.Printf("Daily reminder at %s\n", habit.ReminderTime())
	}
	return nil
}

type HabitEditCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Rename string `help:"New habit name." default:""`
	Remind string `help:"Daily reminder time as HH:MM." default:""`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if c.Rename != "" {
		if _, err := ctx.Store.GetHabitByName(c.Rename); err == nil {
			return fmt.Errorf("habit with name %q already exists", c.Rename)
		}
		habit.Name = c.Rename
	}
	if c.Remind != "" {
		if err := habit.SetReminderTime(c.Remind); err != nil {
			return err
		}
		habit.RemindersEnabled = true
	}

	if err := habit.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	ctx.SyncReminder(habit)

	fmt.Printf("Updated habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, habit := range habits {
		status := ""
		if habit.DeletedAt != nil {
			status = " [DELETED]"
		} else if habit.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		remind := ""
		if habit.RemindersEnabled {
			remind = fmt.Sprintf(" (reminder %s)", habit.ReminderTime())
		}
		fmt.Printf("%s%s%s\n", habit.Name, remind, status)
	}

	return nil
}

type HabitMarkCmd struct {
	Name   string `arg:"" help:"Habit name."`
	Status string `help:"Entry status: done, skipped, or missed." enum:"done,skipped,missed" default:"done"`
	Date   string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
	Note   string `help:"Optional note for this entry." default:""`
}

func (c *HabitMarkCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	status := constants.EntryStatus(c.Status)
	now := ctx.Clock.Now()

	existing, err := ctx.Store.GetHabitEntry(habit.ID, day)
	if err == nil {
		if existing.Status == status && !existing.Frozen {
			// Marking the same status again toggles the entry off
			if err := ctx.Store.DeleteHabitEntry(existing.ID); err != nil {
				return err
			}
			fmt.Printf("Unmarked habit %q for %s\n", c.Name, day)
			return nil
		}

		existing.Status = status
		existing.Frozen = false
		if c.Note != "" {
			existing.Note = c.Note
		}
		existing.UpdatedAt = now
		if err := ctx.Store.UpdateHabitEntry(existing); err != nil {
			return err
		}
		fmt.Printf("Marked habit %q as %s for %s\n", c.Name, status, day)
		return nil
	}

	entry := models.HabitEntry{
		ID:        uuid.New().String(),
		HabitID:   habit.ID,
		Day:       day,
		Status:    status,
		Note:      c.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddHabitEntry(entry); err != nil {
		return err
	}

	fmt.Printf("Marked habit %q as %s for %s\n", c.Name, status, day)
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Today()
	entries, err := ctx.Store.GetHabitEntriesForDay(today)
	if err != nil {
		return err
	}

	entryMap := make(map[string]models.HabitEntry)
	for _, entry := range entries {
		entryMap[entry.HabitID] = entry
	}

	fmt.Printf("Habits for %s:\n\n", today)
	recorded := 0
	for _, habit := range habits {
		status := "[ ]"
		if entry, ok := entryMap[habit.ID]; ok {
			status = statusMarker(entry)
			recorded++
		}
		fmt.Printf("%s %s\n", status, habit.Name)
	}

	fmt.Printf("\nRecorded: %d/%d\n", recorded, len(habits))
	return nil
}

func statusMarker(entry models.HabitEntry) string {
	if entry.Frozen && entry.Status == "" {
		return "[*]"
	}
	switch entry.Status {
	case constants.StatusDone:
		return "[x]"
	case constants.StatusSkipped:
		return "[s]"
	case constants.StatusMissed:
		return "[!]"
	default:
		return "[ ]"
	}
}

func logMarker(entry models.DayEntry, present bool) string {
	if !present {
		return "  .   "
	}
	if entry.Frozen && entry.Status == "" {
		return "  *   "
	}
	switch entry.Status {
	case constants.StatusDone:
		return "  x   "
	case constants.StatusSkipped:
		return "  s   "
	case constants.StatusMissed:
		return "  !   "
	default:
		return "  .   "
	}
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *HabitLogCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	var selectedHabits []models.Habit
	if c.Habit != "" {
		for _, h := range habits {
			if h.Name == c.Habit {
				selectedHabits = []models.Habit{h}
				break
			}
		}
		if len(selectedHabits) == 0 {
			return fmt.Errorf("habit %q not found", c.Habit)
		}
	} else {
		selectedHabits = habits
	}

	today := ctx.Clock.Now()
	days := streak.DatesInRange(c.Days, today)
	if len(days) == 0 {
		return fmt.Errorf("invalid day count: %d", c.Days)
	}

	fmt.Printf("Habit log (last %d days):\n\n", c.Days)

	maxNameLen := 20
	fmt.Print("Habit               ")
	for _, dayStr := range days {
		day, _ := time.Parse(constants.DateFormat, dayStr)
		fmt.Printf(" %5s", day.Format("01/02"))
	}
	fmt.Println()

	fmt.Print(strings.Repeat("-", maxNameLen))
	for range days {
		fmt.Print("------")
	}
	fmt.Println()

	for _, habit := range selectedHabits {
		name := habit.Name
		if len(name) > maxNameLen {
			name = name[:maxNameLen-3] + "..."
		} else {
			name = name + strings.Repeat(" ", maxNameLen-len(name))
		}
		fmt.Print(name)

		record, err := ctx.Store.GetCompletionRecord(habit.ID, days[0], days[len(days)-1])
		if err != nil {
			return err
		}

		for _, dayStr := range days {
			entry, ok := record[dayStr]
			fmt.Print(logMarker(entry, ok))
		}
		fmt.Println()
	}

	fmt.Println("\nx done   s skipped   ! missed   * frozen")
	return nil
}

type HabitStreaksCmd struct {
	Habit string `help:"Show streaks for specific habit only."`
}

func (c *HabitStreaksCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return err
	}

	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	today := ctx.Clock.Now()
	for _, habit := range habits {
		if c.Habit != "" && habit.Name != c.Habit {
			continue
		}

		record, err := ctx.Store.GetCompletionRecord(
			habit.ID,
			habit.CreatedAt.Format(constants.DateFormat),
			today.Format(constants.DateFormat),
		)
		if err != nil {
			return err
		}

		result := streak.Compute(record, today)
		fmt.Printf("%-20s current: %3d   best: %3d\n", habit.Name, result.Current, result.Best)
	}

	return nil
}

type HabitFreezeCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitFreezeCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	day, err := ctx.ParseDay(c.Date)
	if err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	allowance := settings.FreezesPerMonth
	if allowance <= 0 {
		allowance = constants.DefaultFreezesPerMonth
	}

	monthKey := ctx.MonthKey()
	state, err := ctx.Store.GetFreezeState(monthKey)
	if err != nil {
		return err
	}
	if state.Remaining(allowance) == 0 {
		return fmt.Errorf("no freezes left for %s (%d/%d used)", monthKey, state.Used, allowance)
	}

	now := ctx.Clock.Now()
	existing, err := ctx.Store.GetHabitEntry(habit.ID, day)
	if err == nil {
		if existing.Frozen {
			return fmt.Errorf("habit %q is already frozen for %s", c.Name, day)
		}
		if existing.Status == constants.StatusDone {
			return fmt.Errorf("habit %q is already done for %s, no freeze needed", c.Name, day)
		}
		existing.Frozen = true
		existing.UpdatedAt = now
		if err := ctx.Store.UpdateHabitEntry(existing); err != nil {
			return err
		}
	} else {
		entry := models.HabitEntry{
			ID:        uuid.New().String(),
			HabitID:   habit.ID,
			Day:       day,
			Frozen:    true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := ctx.Store.AddHabitEntry(entry); err != nil {
			return err
		}
	}

	state.Used++
	if err := ctx.Store.SaveFreezeState(state); err != nil {
		return err
	}

	fmt.Printf("Froze habit %q for %s (%d/%d freezes used this month)\n",
		c.Name, day, state.Used, allowance)
	return nil
}

type HabitArchiveCmd struct {
	Name      string `arg:"" help:"Habit name to archive."`
	Unarchive bool   `help:"Unarchive the habit instead."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if c.Unarchive {
		if err := ctx.Store.UnarchiveHabit(habit.ID); err != nil {
			return err
		}
		ctx.SyncReminder(habit)
		fmt.Printf("Unarchived habit: %s\n", c.Name)
	} else {
		if err := ctx.Store.ArchiveHabit(habit.ID); err != nil {
			return err
		}
		// Archived habits stop reminding
		if ctx.Reminders != nil {
			if err := ctx.Reminders.Cancel(habit.ID); err != nil {
				return err
			}
		}
		fmt.Printf("Archived habit: %s\n", c.Name)
	}

	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	// Drop any pending reminder before the habit goes away
	if ctx.Reminders != nil {
		if err := ctx.Reminders.Cancel(habit.ID); err != nil {
			return err
		}
	}

	if err := ctx.Store.DeleteHabit(habit.ID); err != nil {
		return err
	}

	fmt.Printf("Deleted habit: %s\n", c.Name)
	fmt.Println("(This is a soft delete. Use 'habbit habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Get habit including deleted ones
	habits, err := ctx.Store.GetAllHabits(true, true)
	if err != nil {
		return err
	}

	var habit *models.Habit
	for i := range habits {
		if habits[i].Name == c.Name && habits[i].DeletedAt != nil {
			habit = &habits[i]
			break
		}
	}

	if habit == nil {
		return fmt.Errorf("deleted habit %q not found", c.Name)
	}

	if err := ctx.Store.RestoreHabit(habit.ID); err != nil {
		return err
	}

	ctx.SyncReminder(*habit)

	fmt.Printf("Restored habit: %s\n", c.Name)
	return nil
}
