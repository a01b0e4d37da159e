package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	RemindersEnabled bool       `json:"reminders_enabled"`
	ReminderHour     int        `json:"reminder_hour"`
	ReminderMinute   int        `json:"reminder_minute"`
	CreatedAt        time.Time  `json:"created_at"`
	ArchivedAt       *time.Time `json:"archived_at,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

func (h *Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return fmt.Errorf("habit name cannot be empty")
	}
	if h.RemindersEnabled {
		if h.ReminderHour < 0 || h.ReminderHour > 23 {
			return fmt.Errorf("reminder hour must be between 0 and 23, got %d", h.ReminderHour)
		}
		if h.ReminderMinute < 0 || h.ReminderMinute > 59 {
			return fmt.Errorf("reminder minute must be between 0 and 59, got %d", h.ReminderMinute)
		}
	}
	return nil
}

// ReminderTime returns the habit's reminder time in HH:MM form.
func (h *Habit) ReminderTime() string {
	return fmt.Sprintf("%02d:%02d", h.ReminderHour, h.ReminderMinute)
}

// ReminderSpec builds the scheduling spec for this habit's daily reminder.
func (h *Habit) ReminderSpec() ReminderSpec {
	return ReminderSpec{
		HabitID:   h.ID,
		HabitName: h.Name,
		Hour:      h.ReminderHour,
		Minute:    h.ReminderMinute,
	}
}

// SetReminderTime parses an HH:MM string into the habit's reminder fields.
func (h *Habit) SetReminderTime(timeStr string) error {
	t, err := time.Parse(constants.TimeFormat, timeStr)
	if err != nil {
		return fmt.Errorf("invalid time format (expected HH:MM): %w", err)
	}
	h.ReminderHour = t.Hour()
	h.ReminderMinute = t.Minute()
	return nil
}
