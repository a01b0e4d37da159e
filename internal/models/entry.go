package models

import (
	"fmt"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
)

// HabitEntry represents a single day's record of a habit
type HabitEntry struct {
	ID        string                `json:"id"`
	HabitID   string                `json:"habit_id"`
	Day       string                `json:"day"` // YYYY-MM-DD format
	Status    constants.EntryStatus `json:"status"`
	Frozen    bool                  `json:"frozen"`
	Note      string                `json:"note"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
	DeletedAt *time.Time            `json:"deleted_at,omitempty"`
}

func (e *HabitEntry) Validate() error {
	if e.HabitID == "" {
		return fmt.Errorf("habit entry habit_id cannot be empty")
	}
	if _, err := time.Parse(constants.DateFormat, e.Day); err != nil {
		return fmt.Errorf("invalid day format (expected YYYY-MM-DD): %w", err)
	}
	switch e.Status {
	case constants.StatusDone, constants.StatusMissed, constants.StatusSkipped:
	case "":
		// A frozen day may carry no status at all
		if !e.Frozen {
			return fmt.Errorf("habit entry status cannot be empty")
		}
	default:
		return fmt.Errorf("invalid habit entry status: %q", e.Status)
	}
	return nil
}

// DayEntry is the per-day view of an entry as consumed by the streak engine:
// status plus the orthogonal frozen flag and the recording timestamp.
type DayEntry struct {
	Status     constants.EntryStatus `json:"status"`
	Frozen     bool                  `json:"frozen"`
	RecordedAt time.Time             `json:"recorded_at"`
}

// CompletionRecord maps calendar dates (YYYY-MM-DD) to that day's entry for
// one habit. Lexical order of keys equals calendar order.
type CompletionRecord map[string]DayEntry

// DayEntry converts a stored habit entry to its streak-engine view.
func (e *HabitEntry) DayEntry() DayEntry {
	return DayEntry{
		Status:     e.Status,
		Frozen:     e.Frozen,
		RecordedAt: e.CreatedAt,
	}
}
