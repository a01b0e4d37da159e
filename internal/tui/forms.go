package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
)

// newHabitForm creates the form shown when adding a habit.
func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Leave empty for no reminder").
				Value(&fm.Remind).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					if _, err := time.Parse(constants.TimeFormat, s); err != nil {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// newSettingsForm creates the settings editor form.
func newSettingsForm(fm *SettingsFormModel) *huh.Form {
	positiveInt := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 1 {
			return fmt.Errorf("must be a positive number")
		}
		return nil
	}
	nonNegativeInt := func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || n < 0 {
			return fmt.Errorf("must be zero or a positive number")
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Notifications Enabled").
				Value(&fm.NotificationsEnabled),
			huh.NewInput().
				Title("Default Reminder Time (HH:MM)").
				Value(&fm.DefaultReminderTime).
				Validate(func(s string) error {
					if _, err := time.Parse(constants.TimeFormat, s); err != nil {
						return fmt.Errorf("invalid time format, use HH:MM")
					}
					return nil
				}),
			huh.NewInput().
				Title("Log Window (days)").
				Value(&fm.DefaultLogDays).
				Validate(positiveInt),
			huh.NewInput().
				Title("Freezes Per Month").
				Value(&fm.FreezesPerMonth).
				Validate(nonNegativeInt),
			huh.NewInput().
				Title("Timezone (blank for system)").
				Value(&fm.Timezone).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return nil
					}
					if _, err := time.LoadLocation(s); err != nil {
						return fmt.Errorf("unknown timezone")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
