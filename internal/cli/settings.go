package cli

import (
	"fmt"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled *bool   `help:"Enable or disable notifications."`
	DefaultReminderTime  *string `help:"Default reminder time for new habits (HH:MM)."`
	DefaultLogDays       *int    `help:"Number of days shown by the log grid."`
	FreezesPerMonth      *int    `help:"Streak freezes allowed per calendar month."`
	Timezone             *string `help:"IANA timezone for day boundaries (empty uses the system zone)."`
}

func (c *SettingsCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Default Reminder Time: %s\n", settings.DefaultReminderTime)
		fmt.Printf("  Default Log Days:      %d\n", settings.DefaultLogDays)
		fmt.Printf("  Freezes Per Month:     %d\n", settings.FreezesPerMonth)
		tz := settings.Timezone
		if tz == "" {
			tz = "(system)"
		}
		fmt.Printf("  Timezone:              %s\n", tz)
		return nil
	}

	updated := false
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.DefaultReminderTime != nil {
		if _, err := time.Parse(constants.TimeFormat, *c.DefaultReminderTime); err != nil {
			return fmt.Errorf("invalid reminder time (expected HH:MM): %w", err)
		}
		settings.DefaultReminderTime = *c.DefaultReminderTime
		updated = true
	}
	if c.DefaultLogDays != nil {
		if *c.DefaultLogDays < 1 {
			return fmt.Errorf("default log days must be at least 1")
		}
		settings.DefaultLogDays = *c.DefaultLogDays
		updated = true
	}
	if c.FreezesPerMonth != nil {
		if *c.FreezesPerMonth < 0 {
			return fmt.Errorf("freezes per month cannot be negative")
		}
		settings.FreezesPerMonth = *c.FreezesPerMonth
		updated = true
	}
	if c.Timezone != nil {
		if *c.Timezone != "" {
			if _, err := time.LoadLocation(*c.Timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", *c.Timezone, err)
			}
		}
		settings.Timezone = *c.Timezone
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		fmt.Println("Settings updated successfully.")
	} else {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
