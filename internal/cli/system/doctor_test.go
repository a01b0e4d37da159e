package system

import (
	"testing"

	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

func TestDoctorCmd_HealthyDatabase(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cmd := &DoctorCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("doctor on a healthy database failed: %v", err)
	}
}

func TestDoctorCmd_OrphanedEntriesDetected(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	store := ctx.Store.(*storage.SQLiteStore)
	_, err := store.GetDB().Exec(`
		INSERT INTO habit_entries (id, habit_id, day, status, frozen, note, created_at, updated_at)
		VALUES ('e1', 'missing-habit', '2025-11-10', 'done', 0, '', '2025-11-10T09:00:00Z', '2025-11-10T09:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert orphaned entry: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on orphaned entries")
	}
}

func TestDoctorCmd_InvalidDateDetected(t *testing.T) {
	ctx, cleanup := setupTestContext(t)
	defer cleanup()

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	store := ctx.Store.(*storage.SQLiteStore)
	_, err := store.GetDB().Exec(`
		INSERT INTO habits (id, name, reminders_enabled, created_at)
		VALUES ('h1', 'Read', 0, '2025-11-10T09:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert habit: %v", err)
	}
	_, err = store.GetDB().Exec(`
		INSERT INTO habit_entries (id, habit_id, day, status, frozen, note, created_at, updated_at)
		VALUES ('e1', 'h1', '11/10/2025', 'done', 0, '', '2025-11-10T09:00:00Z', '2025-11-10T09:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("expected doctor to fail on invalid date format")
	}
}
