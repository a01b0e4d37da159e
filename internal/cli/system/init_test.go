package system

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := storage.NewSQLiteStore(dbPath)

	ctx := &cli.Context{
		Store: store,
		Clock: clock.Fixed{T: time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)},
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func TestInitCmd_CreatesStorage(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	// Defaults must be in place after init
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings after init: %v", err)
	}
	if settings.FreezesPerMonth < 0 {
		t.Errorf("unexpected freeze allowance: %d", settings.FreezesPerMonth)
	}
}

func TestInitCmd_ForceSameSourceRejected(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cmd := &InitCmd{Force: true, Source: ctx.Store.GetConfigPath()}
	if err := cmd.Run(ctx); err == nil {
		t.Fatal("expected init --force with source == destination to fail")
	}
}

func TestInitCmd_MigratesFromSource(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	// Build a source database with one habit, one entry and freeze usage
	sourcePath := filepath.Join(t.TempDir(), "source.db")
	source := storage.NewSQLiteStore(sourcePath)
	if err := source.Init(); err != nil {
		t.Fatalf("failed to init source store: %v", err)
	}

	now := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	habit := models.Habit{ID: "h1", Name: "Read", CreatedAt: now}
	if err := source.AddHabit(habit); err != nil {
		t.Fatalf("failed to add source habit: %v", err)
	}
	entry := models.HabitEntry{
		ID: "e1", HabitID: "h1", Day: "2025-11-10",
		Status: "done", CreatedAt: now, UpdatedAt: now,
	}
	if err := source.AddHabitEntry(entry); err != nil {
		t.Fatalf("failed to add source entry: %v", err)
	}
	if err := source.SaveFreezeState(models.FreezeState{MonthKey: "2025-11", Used: 1}); err != nil {
		t.Fatalf("failed to save source freeze state: %v", err)
	}
	if err := source.Close(); err != nil {
		t.Fatalf("failed to close source store: %v", err)
	}

	cmd := &InitCmd{Source: sourcePath}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("init with source failed: %v", err)
	}

	migrated, err := ctx.Store.GetHabit("h1")
	if err != nil {
		t.Fatalf("migrated habit not found: %v", err)
	}
	if migrated.Name != "Read" {
		t.Errorf("expected habit name Read, got %q", migrated.Name)
	}

	if _, err := ctx.Store.GetHabitEntry("h1", "2025-11-10"); err != nil {
		t.Errorf("migrated entry not found: %v", err)
	}

	state, err := ctx.Store.GetFreezeState("2025-11")
	if err != nil {
		t.Fatalf("failed to read migrated freeze state: %v", err)
	}
	if state.Used != 1 {
		t.Errorf("expected 1 freeze used, got %d", state.Used)
	}
}
