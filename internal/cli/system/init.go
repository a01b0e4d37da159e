package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	// If force flag is provided, delete existing database
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		// Don't delete if it's the source (user error protection)
		if c.Source != "" {
			// Normalize paths to absolute for accurate comparison
			absDbPath, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDbPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			// Database exists, close it first to prevent file locking issues
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			// Then delete it
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			// Some other error occurred while checking the database; surface it to the user
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	// Initialize destination store
	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habbit storage at: %s\n", ctx.Store.GetConfigPath())

	// If source is provided, migrate data
	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	// Determine source store type and instantiate it
	var sourceStore storage.Provider
	if strings.HasPrefix(sourcePath, "postgres://") || strings.HasPrefix(sourcePath, "postgresql://") {
		if storage.HasEmbeddedCredentials(sourcePath) {
			return fmt.Errorf("PostgreSQL source connection string contains embedded credentials. Use environment variables or .pgpass instead")
		}
		sourceStore = storage.NewPostgresStore(sourcePath)
	} else {
		// Default to SQLite for file paths
		sourceStore = storage.NewSQLiteStore(sourcePath)
	}

	// Load the source store
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer sourceStore.Close()

	// Migrate Settings
	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	// Migrate Habits
	fmt.Println("  Migrating habits...")
	habits, err := sourceStore.GetAllHabits(true, true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	for _, habit := range habits {
		if err := ctx.Store.AddHabit(habit); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", habit.ID, err)
		}
	}
	fmt.Printf("    Migrated %d habits\n", len(habits))

	// Migrate Habit Entries
	fmt.Println("  Migrating habit entries...")
	habitEntries, err := sourceStore.GetAllHabitEntries()
	if err != nil {
		return fmt.Errorf("failed to get habit entries from source: %w", err)
	}
	for _, entry := range habitEntries {
		if err := ctx.Store.AddHabitEntry(entry); err != nil {
			return fmt.Errorf("failed to add habit entry %s: %w", entry.ID, err)
		}
	}
	fmt.Printf("    Migrated %d habit entries\n", len(habitEntries))

	// Migrate Freeze State
	fmt.Println("  Migrating freeze state...")
	freezes, err := sourceStore.GetAllFreezeStates()
	if err != nil {
		return fmt.Errorf("failed to get freeze state from source: %w", err)
	}
	for _, state := range freezes {
		if err := ctx.Store.SaveFreezeState(state); err != nil {
			return fmt.Errorf("failed to save freeze state for %s: %w", state.MonthKey, err)
		}
	}
	fmt.Printf("    Migrated %d freeze records\n", len(freezes))

	// Reminder bindings are deliberately not migrated: notification handles
	// only mean something to the engine that created them. Run
	// 'habbit system notifyd' to reschedule reminders against the new store.

	return nil
}
