package cli

import (
	"fmt"
)

type RemindCmd struct {
	Set RemindSetCmd `cmd:"" help:"Set a habit's daily reminder time."`
	Off RemindOffCmd `cmd:"" help:"Turn off a habit's reminder."`
}

type RemindSetCmd struct {
	Name string `arg:"" help:"Habit name."`
	Time string `arg:"" help:"Reminder time as HH:MM."`
}

func (c *RemindSetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	if err := habit.SetReminderTime(c.Time); err != nil {
		return err
	}
	habit.RemindersEnabled = true

	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	// Reschedule synchronously so the user sees scheduling failures here
	if ctx.Reminders != nil {
		if _, err := ctx.Reminders.Schedule(habit.ReminderSpec()); err != nil {
			return err
		}
	}

	fmt.Printf("Reminder for %q set to %s daily\n", c.Name, habit.ReminderTime())
	return nil
}

type RemindOffCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *RemindOffCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	habit, err := ctx.Store.GetHabitByName(c.Name)
	if err != nil {
		return fmt.Errorf("habit %q not found", c.Name)
	}

	habit.RemindersEnabled = false
	if err := ctx.Store.UpdateHabit(habit); err != nil {
		return err
	}

	if ctx.Reminders != nil {
		if err := ctx.Reminders.Cancel(habit.ID); err != nil {
			return err
		}
	}

	fmt.Printf("Reminder for %q turned off\n", c.Name)
	return nil
}
