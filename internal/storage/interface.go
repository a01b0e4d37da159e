package storage

import "github.com/KKM43/Habbit-AI-App/internal/models"

// Settings holds the user-tunable application settings persisted as
// key/value pairs in the settings table.
type Settings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DefaultReminderTime  string `json:"default_reminder_time"`
	DefaultLogDays       int    `json:"default_log_days"`
	FreezesPerMonth      int    `json:"freezes_per_month"`
	// Timezone is an IANA zone name. Empty means the system local zone.
	Timezone string `json:"timezone"`
}

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (Settings, error)
	SaveSettings(Settings) error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	ArchiveHabit(id string) error
	UnarchiveHabit(id string) error
	DeleteHabit(id string) error
	RestoreHabit(id string) error

	// Habit Entries
	AddHabitEntry(models.HabitEntry) error
	GetHabitEntry(habitID, day string) (models.HabitEntry, error)
	GetHabitEntriesForDay(day string) ([]models.HabitEntry, error)
	GetHabitEntriesForHabit(habitID string, startDay, endDay string) ([]models.HabitEntry, error)
	// GetAllHabitEntries returns every entry including soft-deleted ones,
	// used for data migration between stores.
	GetAllHabitEntries() ([]models.HabitEntry, error)
	// GetCompletionRecord returns the habit's entries in the inclusive
	// day range keyed by day, ready for streak computation.
	GetCompletionRecord(habitID string, startDay, endDay string) (models.CompletionRecord, error)
	UpdateHabitEntry(models.HabitEntry) error
	DeleteHabitEntry(id string) error
	RestoreHabitEntry(id string) error

	// Reminder Bindings
	// GetReminderBinding returns (nil, nil) when no binding exists.
	GetReminderBinding(habitID string) (*models.ReminderBinding, error)
	SaveReminderBinding(models.ReminderBinding) error
	DeleteReminderBinding(habitID string) error

	// Streak Freezes
	GetFreezeState(monthKey string) (models.FreezeState, error)
	GetAllFreezeStates() ([]models.FreezeState, error)
	SaveFreezeState(models.FreezeState) error

	// Utils
	GetConfigPath() string
}
