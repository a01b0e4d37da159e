package cli

import (
	"fmt"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/logger"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/reminder"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

type Context struct {
	Store     storage.Provider
	Reminders *reminder.Scheduler
	Clock     clock.Clock

	loc *time.Location
}

// Location returns the timezone configured in settings, falling back to the
// system local zone when unset or unresolvable. Resolved once per process.
func (c *Context) Location() *time.Location {
	if c.loc != nil {
		return c.loc
	}
	c.loc = time.Local
	if settings, err := c.Store.GetSettings(); err == nil && settings.Timezone != "" {
		if loc, err := time.LoadLocation(settings.Timezone); err == nil {
			c.loc = loc
		} else {
			logger.Warn("Invalid timezone in settings, using system local", "timezone", settings.Timezone, "error", err)
		}
	}
	return c.loc
}

// Today returns the current day as YYYY-MM-DD in the configured timezone.
func (c *Context) Today() string {
	return c.Clock.Now().In(c.Location()).Format(constants.DateFormat)
}

// MonthKey returns the current month as YYYY-MM, the key the freeze
// allowance is tracked under.
func (c *Context) MonthKey() string {
	return c.Clock.Now().In(c.Location()).Format(constants.FreezeMonthFormat)
}

// SyncReminder reconciles the habit's reminder binding with its current
// settings. Scheduling failures are logged, not surfaced, so a flaky
// notification channel never blocks a habit save.
func (c *Context) SyncReminder(habit models.Habit) {
	if c.Reminders == nil {
		return
	}

	if !habit.RemindersEnabled {
		if err := c.Reminders.Cancel(habit.ID); err != nil {
			logger.Warn("Failed to cancel reminder", "habit", habit.Name, "error", err)
		}
		return
	}

	if _, err := c.Reminders.Schedule(habit.ReminderSpec()); err != nil {
		logger.Warn("Failed to schedule reminder", "habit", habit.Name, "error", err)
	}
}

// ParseDay validates a YYYY-MM-DD day string, defaulting to today when empty.
func (c *Context) ParseDay(day string) (string, error) {
	if day == "" {
		return c.Today(), nil
	}
	if _, err := time.Parse(constants.DateFormat, day); err != nil {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD)", day)
	}
	return day, nil
}
