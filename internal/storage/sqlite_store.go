package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/migration"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/migrations"
	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

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

func (s *SQLiteStore) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'habbit system init' first")
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	return s.validateSchemaVersion()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) migrationFS() (fs.FS, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return subFS, nil
}

func (s *SQLiteStore) runMigrations() error {
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

func (s *SQLiteStore) validateSchemaVersion() error {
	subFS, err := s.migrationFS()
	if err != nil {
		return err
	}

	runner := migration.NewRunner(s.db, subFS)
	return runner.ValidateVersion()
}

func (s *SQLiteStore) tableExists(name string) bool {
	var count int
	err := s.db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&count)
	return err == nil && count > 0
}

func (s *SQLiteStore) GetSettings() (Settings, error) {
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

func (s *SQLiteStore) SaveSettings(settings Settings) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)")
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

func (s *SQLiteStore) AddHabit(habit models.Habit) error {
	return s.UpdateHabit(habit)
}

func scanHabit(scan func(dest ...any) error) (models.Habit, error) {
	var h models.Habit
	var createdAt string
	var archivedAt, deletedAt sql.NullString

	err := scan(&h.ID, &h.Name, &h.RemindersEnabled, &h.ReminderHour, &h.ReminderMinute,
		&createdAt, &archivedAt, &deletedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if archivedAt.Valid {
		t, err := time.Parse(time.RFC3339, archivedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse archived_at: %w", err)
		}
		h.ArchivedAt = &t
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse deleted_at: %w", err)
		}
		h.DeletedAt = &t
	}

	return h, nil
}

const habitColumns = "id, name, reminders_enabled, reminder_hour, reminder_minute, created_at, archived_at, deleted_at"

func (s *SQLiteStore) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE id = ? AND deleted_at IS NULL", id)
	return scanHabit(row.Scan)
}

func (s *SQLiteStore) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(
		"SELECT "+habitColumns+" FROM habits WHERE name = ? AND deleted_at IS NULL", name)
	return scanHabit(row.Scan)
}

func (s *SQLiteStore) GetAllHabits(includeArchived, includeDeleted bool) ([]models.Habit, error) {
	if !s.tableExists("habits") {
		return []models.Habit{}, nil
	}

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

func (s *SQLiteStore) UpdateHabit(habit models.Habit) error {
	var archivedAt, deletedAt sql.NullString
	if habit.ArchivedAt != nil {
		archivedAt = sql.NullString{String: habit.ArchivedAt.Format(time.RFC3339), Valid: true}
	}
	if habit.DeletedAt != nil {
		deletedAt = sql.NullString{String: habit.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habits (id, name, reminders_enabled, reminder_hour, reminder_minute, created_at, archived_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			reminders_enabled = excluded.reminders_enabled,
			reminder_hour = excluded.reminder_hour,
			reminder_minute = excluded.reminder_minute,
			archived_at = excluded.archived_at,
			deleted_at = excluded.deleted_at`,
		habit.ID, habit.Name, habit.RemindersEnabled, habit.ReminderHour, habit.ReminderMinute,
		habit.CreatedAt.Format(time.RFC3339), archivedAt, deletedAt)

	return err
}

func (s *SQLiteStore) ArchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = ? WHERE id = ? AND deleted_at IS NULL AND archived_at IS NULL`,
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

func (s *SQLiteStore) UnarchiveHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET archived_at = NULL WHERE id = ? AND deleted_at IS NULL AND archived_at IS NOT NULL`,
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

func (s *SQLiteStore) DeleteHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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

func (s *SQLiteStore) RestoreHabit(id string) error {
	result, err := s.db.Exec(`
		UPDATE habits SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`,
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

const entryColumns = "id, habit_id, day, status, frozen, note, created_at, updated_at, deleted_at"

func scanHabitEntry(scan func(dest ...any) error) (models.HabitEntry, error) {
	var e models.HabitEntry
	var status string
	var createdAt, updatedAt string
	var deletedAt sql.NullString

	err := scan(&e.ID, &e.HabitID, &e.Day, &status, &e.Frozen, &e.Note, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return models.HabitEntry{}, err
	}
	e.Status = constants.EntryStatus(status)

	e.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	e.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.HabitEntry{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(time.RFC3339, deletedAt.String)
		if err != nil {
			return models.HabitEntry{}, fmt.Errorf("failed to parse deleted_at: %w", err)
		}
		e.DeletedAt = &t
	}

	return e, nil
}

func (s *SQLiteStore) AddHabitEntry(entry models.HabitEntry) error {
	return s.UpdateHabitEntry(entry)
}

func (s *SQLiteStore) GetHabitEntry(habitID, day string) (models.HabitEntry, error) {
	row := s.db.QueryRow(
		"SELECT "+entryColumns+" FROM habit_entries WHERE habit_id = ? AND day = ? AND deleted_at IS NULL",
		habitID, day)
	return scanHabitEntry(row.Scan)
}

func (s *SQLiteStore) GetHabitEntriesForDay(day string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(
		"SELECT "+entryColumns+" FROM habit_entries WHERE day = ? AND deleted_at IS NULL ORDER BY created_at",
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

func (s *SQLiteStore) GetHabitEntriesForHabit(habitID string, startDay, endDay string) ([]models.HabitEntry, error) {
	rows, err := s.db.Query(
		"SELECT "+entryColumns+` FROM habit_entries
		WHERE habit_id = ? AND day >= ? AND day <= ? AND deleted_at IS NULL
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

func (s *SQLiteStore) GetAllHabitEntries() ([]models.HabitEntry, error) {
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

func (s *SQLiteStore) GetCompletionRecord(habitID string, startDay, endDay string) (models.CompletionRecord, error) {
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

func (s *SQLiteStore) UpdateHabitEntry(entry models.HabitEntry) error {
	var deletedAt sql.NullString
	if entry.DeletedAt != nil {
		deletedAt = sql.NullString{String: entry.DeletedAt.Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO habit_entries (id, habit_id, day, status, frozen, note, created_at, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, day) DO UPDATE SET
			status = excluded.status,
			frozen = excluded.frozen,
			note = excluded.note,
			updated_at = excluded.updated_at,
			deleted_at = excluded.deleted_at`,
		entry.ID, entry.HabitID, entry.Day, string(entry.Status), entry.Frozen, entry.Note,
		entry.CreatedAt.Format(time.RFC3339), entry.UpdatedAt.Format(time.RFC3339), deletedAt)

	return err
}

func (s *SQLiteStore) DeleteHabitEntry(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
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

func (s *SQLiteStore) RestoreHabitEntry(id string) error {
	result, err := s.db.Exec(`
		UPDATE habit_entries SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL`,
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

func (s *SQLiteStore) GetReminderBinding(habitID string) (*models.ReminderBinding, error) {
	row := s.db.QueryRow(
		"SELECT habit_id, handle, scheduled_at FROM reminder_bindings WHERE habit_id = ?",
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

func (s *SQLiteStore) SaveReminderBinding(binding models.ReminderBinding) error {
	_, err := s.db.Exec(`
		INSERT INTO reminder_bindings (habit_id, handle, scheduled_at)
		VALUES (?, ?, ?)
		ON CONFLICT(habit_id) DO UPDATE SET
			handle = excluded.handle,
			scheduled_at = excluded.scheduled_at`,
		binding.HabitID, binding.Handle, binding.ScheduledAt.Format(time.RFC3339))

	return err
}

func (s *SQLiteStore) DeleteReminderBinding(habitID string) error {
	// Deleting an absent binding is a no-op
	_, err := s.db.Exec("DELETE FROM reminder_bindings WHERE habit_id = ?", habitID)
	return err
}

// Streak Freezes

func (s *SQLiteStore) GetFreezeState(monthKey string) (models.FreezeState, error) {
	row := s.db.QueryRow(
		"SELECT month_key, used FROM freeze_state WHERE month_key = ?", monthKey)

	var f models.FreezeState
	err := row.Scan(&f.MonthKey, &f.Used)
	if err != nil {
		if err == sql.ErrNoRows {
			// Fresh month, nothing used yet
			return models.FreezeState{MonthKey: monthKey}, nil
		}
		return models.FreezeState{}, err
	}

	return f, nil
}

func (s *SQLiteStore) GetAllFreezeStates() ([]models.FreezeState, error) {
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

func (s *SQLiteStore) SaveFreezeState(state models.FreezeState) error {
	_, err := s.db.Exec(`
		INSERT INTO freeze_state (month_key, used)
		VALUES (?, ?)
		ON CONFLICT(month_key) DO UPDATE SET
			used = excluded.used`,
		state.MonthKey, state.Used)

	return err
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection.
// Returns nil if the database has not been initialized or loaded.
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}
