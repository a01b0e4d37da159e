package system

import (
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
	"github.com/KKM43/Habbit-AI-App/internal/migration"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
	"github.com/KKM43/Habbit-AI-App/migrations"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	// Check 1: DB reachable
	if err := checkDBReachable(ctx); err != nil {
		fmt.Printf("❌ Database reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Database reachable: OK\n")
		dbReachable = true
	}

	type check struct {
		name string
		fn   func(*cli.Context) error
	}
	dbChecks := []check{
		{"Schema version", checkSchemaVersion},
		{"Migrations complete", checkMigrationsComplete},
		{"Settings readable", checkSettings},
		{"Habit integrity", checkHabitsIntegrity},
		{"Habit entries duplicates", checkHabitEntriesDuplicates},
		{"Reminder bindings", checkReminderBindings},
		{"Date formats", checkEntryDates},
		{"Timestamp integrity", checkTimestampIntegrity},
	}

	for _, c := range dbChecks {
		if !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		if err := c.fn(ctx); err != nil {
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		} else {
			fmt.Printf("✓ %s: OK\n", c.name)
		}
	}

	// Clock sanity does not need the database
	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

// storeDB returns the raw connection and the migrations sub-filesystem for
// the active backend, or ok=false for stores without direct SQL access.
func storeDB(ctx *cli.Context) (*sql.DB, fs.FS, bool) {
	switch s := ctx.Store.(type) {
	case *storage.SQLiteStore:
		sub, err := fs.Sub(migrations.FS, "sqlite")
		if err != nil {
			return nil, nil, false
		}
		return s.GetDB(), sub, true
	case *storage.PostgresStore:
		sub, err := fs.Sub(migrations.FS, "postgres")
		if err != nil {
			return nil, nil, false
		}
		return s.GetDB(), sub, true
	default:
		return nil, nil, false
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}
	var result int
	if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("failed to query database: %w", err)
	}

	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	db, migrationsFS, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	runner := migration.NewRunner(db, migrationsFS)

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion > latestVersion {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", currentVersion, latestVersion)
	}

	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	db, migrationsFS, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	runner := migration.NewRunner(db, migrationsFS)

	currentVersion, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	latestVersion, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}

	if currentVersion < latestVersion {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", currentVersion, latestVersion)
	}

	return nil
}

func checkSettings(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.FreezesPerMonth < 0 {
		return fmt.Errorf("freezes_per_month is negative: %d", settings.FreezesPerMonth)
	}
	if settings.DefaultLogDays < 1 {
		return fmt.Errorf("default_log_days must be at least 1: %d", settings.DefaultLogDays)
	}
	if settings.Timezone != "" {
		if _, err := time.LoadLocation(settings.Timezone); err != nil {
			return fmt.Errorf("timezone is not a valid IANA zone: %q", settings.Timezone)
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Clock.Now()

	// A wildly wrong clock would corrupt day keys and reminder triggers
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	return nil
}

func checkHabitsIntegrity(ctx *cli.Context) error {
	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	// Check for orphaned habit entries (entries referencing non-existent habits)
	var orphanedCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_entries he
		LEFT JOIN habits h ON he.habit_id = h.id
		WHERE h.id IS NULL AND he.deleted_at IS NULL
	`).Scan(&orphanedCount)
	if err != nil {
		return fmt.Errorf("failed to check orphaned habit entries: %w", err)
	}
	if orphanedCount > 0 {
		return fmt.Errorf("found %d orphaned habit entries (referencing non-existent habits)", orphanedCount)
	}

	return nil
}

func checkHabitEntriesDuplicates(ctx *cli.Context) error {
	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	// Check for duplicate habit entries (multiple entries for same habit + day)
	var duplicateCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM (
			SELECT habit_id, day, COUNT(*) as cnt
			FROM habit_entries
			WHERE deleted_at IS NULL
			GROUP BY habit_id, day
			HAVING COUNT(*) > 1
		) dupes
	`).Scan(&duplicateCount)
	if err != nil {
		return fmt.Errorf("failed to check duplicate habit entries: %w", err)
	}
	if duplicateCount > 0 {
		return fmt.Errorf("found %d habit+day combinations with duplicate entries", duplicateCount)
	}

	return nil
}

func checkReminderBindings(ctx *cli.Context) error {
	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	// Bindings must point at live habits with reminders enabled
	var staleCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM reminder_bindings rb
		LEFT JOIN habits h ON rb.habit_id = h.id
		WHERE h.id IS NULL OR h.deleted_at IS NOT NULL
	`).Scan(&staleCount)
	if err != nil {
		return fmt.Errorf("failed to check reminder bindings: %w", err)
	}
	if staleCount > 0 {
		return fmt.Errorf("found %d reminder bindings for missing or deleted habits (use 'habbit remind off' to clean up)", staleCount)
	}

	return nil
}

func checkEntryDates(ctx *cli.Context) error {
	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	var invalidCount int
	rows, err := db.Query("SELECT day FROM habit_entries")
	if err != nil {
		return fmt.Errorf("failed to check habit entry dates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return fmt.Errorf("failed to check habit entry dates: %w", err)
		}
		if _, err := time.Parse("2006-01-02", day); err != nil {
			invalidCount++
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to check habit entry dates: %w", err)
	}
	if invalidCount > 0 {
		return fmt.Errorf("found %d habit entries with invalid date format", invalidCount)
	}

	return nil
}

func checkTimestampIntegrity(ctx *cli.Context) error {
	db, _, ok := storeDB(ctx)
	if !ok {
		return nil
	}

	var corruptedCount int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM habit_entries
		WHERE created_at = '' OR updated_at = ''
	`).Scan(&corruptedCount)
	if err != nil {
		return fmt.Errorf("failed to check habit entry timestamps: %w", err)
	}
	if corruptedCount > 0 {
		return fmt.Errorf("found %d habit entries with corrupted timestamps", corruptedCount)
	}

	err = db.QueryRow(`
		SELECT COUNT(*)
		FROM habits
		WHERE created_at = ''
	`).Scan(&corruptedCount)
	if err != nil {
		return fmt.Errorf("failed to check habit timestamps: %w", err)
	}
	if corruptedCount > 0 {
		return fmt.Errorf("found %d habits with corrupted timestamps", corruptedCount)
	}

	return nil
}
