package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingHabitID   = errors.New("models: reminder habit id is required")
	ErrHourOutOfRange   = errors.New("models: reminder hour out of range")
	ErrMinuteOutOfRange = errors.New("models: reminder minute out of range")
)

// ReminderSpec describes the desired daily fire time for a habit's reminder.
// The scheduler derives the next absolute fire instant from it.
type ReminderSpec struct {
	HabitID   string
	HabitName string
	Hour      int // 0-23
	Minute    int // 0-59
}

func (s ReminderSpec) Validate() error {
	if s.HabitID == "" {
		return ErrMissingHabitID
	}
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("%w: %d", ErrHourOutOfRange, s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: %d", ErrMinuteOutOfRange, s.Minute)
	}
	return nil
}

// ReminderBinding is the durable one-to-one association between a habit and
// its currently scheduled notification handle. At most one binding exists
// per habit at any time.
type ReminderBinding struct {
	HabitID     string    `json:"habit_id"`
	Handle      string    `json:"handle"`
	ScheduledAt time.Time `json:"scheduled_at"`
}
