package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/migration"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/migrations"
	_ "github.com/lib/pq"
)

type PostgresStore struct {
	connStr string
	db      *sql.DB
}

func NewPostgresStore(connStr string) *PostgresStore {
	return &PostgresStore{
		connStr: connStr,
	}
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password inline. Such strings are rejected so credentials
// stay in the OS keyring, environment, or .pgpass instead.
func HasEmbeddedCredentials(connStr string) bool {
	u, err := url.Parse(connStr)
	if err != nil {
		return false
	}
	if u.User == nil {
		return false
	}
	_, hasPassword := u.User.Password()
	return hasPassword
}

func (s *PostgresStore) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := s.runMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Initialize default settings if not present
	if _, err := s.GetSettings(); err != nil {
		defaultSettings := Settings{
			NotificationsEnabled: true,
			DefaultReminderTime:  fmt.Sprintf("%02d:%02d", constants.DefaultReminderHour, constants.DefaultReminderMinute),
			DefaultLogDays:       constants.DefaultLogDays,
			FreezesPerMonth:      constants.DefaultFreezesPerMonth,
		}
		if err := s.SaveSettings(defaultSettings); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *PostgresStore) Load() error {
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	if err := s.db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return s.validateSchemaVersion()
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *PostgresStore) migrationFS() (fs.FS, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return subFS, nil
}

func (s *PostgresStore) runMigrations() error {
	subFS, err := s.migrationFS()
	if err != nil {
		return err
	}

	runner := migration.NewRunner(s.db, subFS)
	_, err = runner.ApplyMigrations(func(msg string) {
		fmt.Println(msg)
	})
	return err
}

func (s *PostgresStore) validateSchemaVersion() error {
	subFS, err := s.migrationFS()
	if err != nil {
		return err
	}

	runner := migration.NewRunner(s.db, subFS)
	return runner.ValidateVersion()
}

func (s *PostgresStore) GetSettings() (Settings, error) {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return Settings{}, err
	}
	defer rows.Close()

	settings := Settings{}
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, err
		}
		switch key {
		case "notifications_enabled":
			settings.NotificationsEnabled = value == "true"
		case "default_reminder_time":
			settings.DefaultReminderTime = value
		case "default_log_days":
			if _, err := fmt.Sscanf(value, "%d", &settings.DefaultLogDays); err != nil {
				return Settings{}, fmt.Errorf("parsing default_log_days: %w", err)
			}
		case "freezes_per_month":
			if _, err := fmt.Sscanf(value, "%d", &settings.FreezesPerMonth); err != nil {
				return Settings{}, fmt.Errorf("parsing freezes_per_month: %w", err)
			}
		case "timezone":
			settings.Timezone = value
		}
		count++
	}

	if count == 0 {
		return Settings{}, fmt.Errorf("settings not found")
	}

	return settings, nil
}

func (s *PostgresStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec("notifications_enabled", fmt.Sprintf("%v", settings.NotificationsEnabled)); err != nil {
		return err
	}
	if _, err := stmt.Exec("default_reminder_time", settings.DefaultReminderTime); err != nil {
		return err
	}
	if _, err := stmt.Exec("default_log_days", fmt.Sprintf("%d", settings.DefaultLogDays)); err != nil {
		return err
	}
	if _, err := stmt.Exec("freezes_per_month", fmt.Sprintf("%d", settings.FreezesPerMonth)); err != nil {
		return err
	}
	if _, err := stmt.Exec("timezone", settings.Timezone); err != nil {
		return err
	}

	return tx.Commit()
}

// Habits

func (s *PostgresStore) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func (s *PostgresStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE id = $1 AND deleted_at IS NULL", id)
	return scanHabit(row.Scan)
}

func (s *PostgresStore) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE name = $1 AND deleted_at IS NULL", name)
	return scanHabit(row.Scan)
}

func (s *PostgresStore) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	query := "SELECT " + habitColumns + " FROM habits WHERE 1=1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	if !includeArchived {
		query += " AND archived_at IS NULL"
	}
	query += " ORDER BY created_at"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows.Scan)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (s *PostgresStore) UpdateHabit(habit models.Habit) error {
	var archivedAt, deletedAt sql.NullString
	if habit.ArchivedAt != nil {
		archivedAt = sql.NullString{String: habit.ArchivedAt.Format(time.RFC3339), Valid: true}
	}
	if habit.DeletedAt != nil {
		deletedAt = sql.NullString{String: habit.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (id, name, reminders_enabled, reminder_hour, reminder_minute, created_at, archived_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			reminders_enabled = EXCLUDED.reminders_enabled,
			reminder_hour = EXCLUDED.reminder_hour,
			reminder_minute = EXCLUDED.reminder_minute,
			archived_at = EXCLUDED.archived_at,
			deleted_at = EXCLUDED.deleted_at`,
		habit.ID, habit.Name, habit.RemindersEnabled, habit.ReminderHour, habit.ReminderMinute,
		habit.CreatedAt.Format(time.RFC3339), archivedAt, deletedAt)

	return err
}

func (s *PostgresStore) ArchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = $1 WHERE id = $2 AND deleted_at IS NULL AND archived_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or already archived/deleted")
	}

	return nil
}

func (s *PostgresStore) UnarchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = NULL WHERE id = $1 AND deleted_at IS NULL AND archived_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or not archived")
	}

	return nil
}

func (s *PostgresStore) DeleteHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or already deleted")
	}

	return nil
}

func (s *PostgresStore) RestoreHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit not found or not deleted")
	}

	return nil
}

// Habit Entries

func (s *PostgresStore) AddHabitEntry(entry models.HabitEntry) error {
	return s.UpdateHabitEntry(entry)
}

func (s *PostgresStore) GetHabitEntry(habitID, day string) (models.HabitEntry, error) {
	row := s.db.QueryRow(
		"SELECT "+entryColumns+" FROM habit_entries WHERE habit_id = $1 AND day = $2 AND deleted_at IS NULL",
		habitID, day)
	return scanHabitEntry(row.Scan)
}

func (s *PostgresStore) GetHabitEntriesForDay(day string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(
		"SELECT "+entryColumns+" FROM habit_entries WHERE day = $1 AND deleted_at IS NULL ORDER BY created_at",
		day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitEntry
	for rows.Next() {
		e, err := scanHabitEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *PostgresStore) GetHabitEntriesForHabit(habitID string, startDay, endDay string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(
		"SELECT "+entryColumns+` FROM habit_entries
		WHERE habit_id = $1 AND day >= $2 AND day <= $3 AND deleted_at IS NULL
		ORDER BY day DESC`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitEntry
	for rows.Next() {
		e, err := scanHabitEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *PostgresStore) GetAllHabitEntries() ([]models.HabitEntry, error) {
	rows, err := s.db.Query("SELECT " + entryColumns + " FROM habit_entries ORDER BY habit_id, day")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.HabitEntry
	for rows.Next() {
		e, err := scanHabitEntry(rows.Scan)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (s *PostgresStore) GetCompletionRecord(habitID string, startDay, endDay string) (models.CompletionRecord, error) {
	entries, err := s.GetHabitEntriesForHabit(habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}

	record := make(models.CompletionRecord, len(entries))
	for i := range entries {
		record[entries[i].Day] = entries[i].DayEntry()
	}

	return record, nil
}

func (s *PostgresStore) UpdateHabitEntry(entry models.HabitEntry) error {
	var deletedAt sql.NullString
	if entry.DeletedAt != nil {
		deletedAt = sql.NullString{String: entry.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habit_entries (id, habit_id, day, status, frozen, note, created_at, updated_at, deleted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (habit_id, day) DO UPDATE SET
			status = EXCLUDED.status,
			frozen = EXCLUDED.frozen,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at`,
		entry.ID, entry.HabitID, entry.Day, string(entry.Status), entry.Frozen, entry.Note,
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339), deletedAt)

	return err
}

func (s *PostgresStore) DeleteHabitEntry(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_entries SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`,
		time.Now().Format(time.RFC3339), id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit entry not found or already deleted")
	}

	return nil
}

func (s *PostgresStore) RestoreHabitEntry(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_entries SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`,
		id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("habit entry not found or not deleted")
	}

	return nil
}

// Reminder Bindings

func (s *PostgresStore) GetReminderBinding(habitID string) (*models.ReminderBinding, error) {
	row := s.db.QueryRow(
		"SELECT habit_id, handle, scheduled_at FROM reminder_bindings WHERE habit_id = $1",
		habitID)

	var b models.ReminderBinding
	var scheduledAt string
	err := row.Scan(&b.HabitID, &b.Handle, &scheduledAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	b.ScheduledAt, err = time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scheduled_at: %w", err)
	}

	return &b, nil
}

func (s *PostgresStore) SaveReminderBinding(binding models.ReminderBinding) error {
	_, err := s.db.Exec(`
		INSERT INTO reminder_bindings (habit_id, handle, scheduled_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (habit_id) DO UPDATE SET
			handle = EXCLUDED.handle,
			scheduled_at = EXCLUDED.scheduled_at`,
		binding.HabitID, binding.Handle, binding.ScheduledAt.Format(time.RFC3339))

	return err
}

func (s *PostgresStore) DeleteReminderBinding(habitID string) error {
	_, err := s.db.Exec("DELETE FROM reminder_bindings WHERE habit_id = $1", habitID)
	return err
}

// Streak Freezes

func (s *PostgresStore) GetFreezeState(monthKey string) (models.FreezeState, error) {
	row := s.db.QueryRow(
		"SELECT month_key, used FROM freeze_state WHERE month_key = $1", monthKey)

	var f models.FreezeState
	err := row.Scan(&f.MonthKey, &f.Used)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.FreezeState{MonthKey: monthKey}, nil
		}
		return models.FreezeState{}, err
	}

	return f, nil
}

func (s *PostgresStore) GetAllFreezeStates() ([]models.FreezeState, error) {
	rows, err := s.db.Query("SELECT month_key, used FROM freeze_state ORDER BY month_key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []models.FreezeState
	for rows.Next() {
		var f models.FreezeState
		if err := rows.Scan(&f.MonthKey, &f.Used); err != nil {
			return nil, err
		}
		states = append(states, f)
	}

	return states, rows.Err()
}

func (s *PostgresStore) SaveFreezeState(state models.FreezeState) error {
	_, err := s.db.Exec(`
		INSERT INTO freeze_state (month_key, used)
		VALUES ($1, $2)
		ON CONFLICT (month_key) DO UPDATE SET
			used = EXCLUDED.used`,
		state.MonthKey, state.Used)

	return err
}

func (s *PostgresStore) GetConfigPath() string {
	return s.connStr
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *PostgresStore) GetDB() *sql.DB {
	return s.db
}
