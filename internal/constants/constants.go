package constants

import "time"

// EntryStatus represents the recorded outcome of a habit for one day
type EntryStatus string

const (
	AppName            = "habbit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/habbit/habbit.db"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Entry status constants
	StatusDone    EntryStatus = "done"
	StatusMissed  EntryStatus = "missed"
	StatusSkipped EntryStatus = "skipped"

	// Reminder constants
	ReminderTitle = "Habit Reminder"
	// MinReminderLead is the floor applied to the first-fire delay so a
	// reminder never fires instantly due to clock skew.
	MinReminderLead = 10 * time.Second
	// DefaultReminderHour/Minute match the 20:00 default offered when a
	// habit is created with reminders enabled.
	DefaultReminderHour   = 20
	DefaultReminderMinute = 0

	// Notify constants
	NotifierLockfileName   = "habbit-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.kkm43.habbit"

	// Freeze constants
	DefaultFreezesPerMonth = 2
	// FreezeMonthFormat keys the monthly freeze allowance (YYYY-MM)
	FreezeMonthFormat = "2006-01"

	// Default history window for habit logs and the TUI calendar grid
	DefaultLogDays = 30
)
