package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

var testNow = time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) (*Context, func()) {
	tempDir := t.TempDir()
	dbPath := filepath.Join(tempDir, "test.db")

	store := storage.NewSQLiteStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	// Pin the timezone so day boundaries do not depend on the host zone
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("failed to get settings: %v", err)
	}
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	ctx := &Context{
		Store: store,
		Clock: clock.Fixed{T: testNow},
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}

	return ctx, cleanup
}

func TestHabitAddCmd_CreatesHabitWithReminder(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &HabitAddCmd{Name: "Read", Remind: "07:30"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	habit, err := ctx.Store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("habit not found after add: %v", err)
	}
	if !habit.RemindersEnabled {
		t.Error("expected reminders to be enabled")
	}
	if habit.ReminderHour != 7 || habit.ReminderMinute != 30 {
		t.Errorf("expected reminder 07:30, got %02d:%02d", habit.ReminderHour, habit.ReminderMinute)
	}
}

func TestHabitAddCmd_DuplicateName(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	cmd := &HabitAddCmd{Name: "Read"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	err := (&HabitAddCmd{Name: "Read"}).Run(ctx)
	if err == nil {
		t.Fatal("expected duplicate name to fail")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHabitAddCmd_InvalidReminderTime(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Read", Remind: "25:99"}).Run(ctx); err == nil {
		t.Fatal("expected invalid reminder time to fail")
	}
}

func TestHabitMarkCmd_TogglesOff(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	mark := &HabitMarkCmd{Name: "Run", Status: "done"}
	if err := mark.Run(ctx); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	habit, _ := ctx.Store.GetHabitByName("Run")
	entry, err := ctx.Store.GetHabitEntry(habit.ID, ctx.Today())
	if err != nil {
		t.Fatalf("entry not found after mark: %v", err)
	}
	if entry.Status != constants.StatusDone {
		t.Errorf("expected done, got %q", entry.Status)
	}

	// Marking the same status again removes the entry
	if err := mark.Run(ctx); err != nil {
		t.Fatalf("re-mark failed: %v", err)
	}
	if _, err := ctx.Store.GetHabitEntry(habit.ID, ctx.Today()); err == nil {
		t.Error("expected entry to be gone after toggle")
	}
}

func TestHabitMarkCmd_ChangesStatusAndClearsFreeze(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
	if err := (&HabitFreezeCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("freeze failed: %v", err)
	}

	if err := (&HabitMarkCmd{Name: "Run", Status: "done"}).Run(ctx); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	habit, _ := ctx.Store.GetHabitByName("Run")
	entry, err := ctx.Store.GetHabitEntry(habit.ID, ctx.Today())
	if err != nil {
		t.Fatalf("entry not found: %v", err)
	}
	if entry.Status != constants.StatusDone {
		t.Errorf("expected done, got %q", entry.Status)
	}
	if entry.Frozen {
		t.Error("expected freeze flag to be cleared by marking")
	}
}

func TestHabitMarkCmd_UnknownHabit(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitMarkCmd{Name: "Nope", Status: "done"}).Run(ctx); err == nil {
		t.Fatal("expected mark of unknown habit to fail")
	}
}

func TestHabitFreezeCmd_EnforcesMonthlyAllowance(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	// Default allowance is two freezes per month
	if err := (&HabitFreezeCmd{Name: "Run", Date: "2025-11-17"}).Run(ctx); err != nil {
		t.Fatalf("first freeze failed: %v", err)
	}
	if err := (&HabitFreezeCmd{Name: "Run", Date: "2025-11-18"}).Run(ctx); err != nil {
		t.Fatalf("second freeze failed: %v", err)
	}

	err := (&HabitFreezeCmd{Name: "Run"}).Run(ctx)
	if err == nil {
		t.Fatal("expected third freeze to be rejected")
	}
	if !strings.Contains(err.Error(), "no freezes left") {
		t.Errorf("unexpected error: %v", err)
	}

	state, err := ctx.Store.GetFreezeState(ctx.MonthKey())
	if err != nil {
		t.Fatalf("failed to read freeze state: %v", err)
	}
	if state.Used != 2 {
		t.Errorf("expected 2 freezes used, got %d", state.Used)
	}
}

func TestHabitFreezeCmd_DoneDayNeedsNoFreeze(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
	if err := (&HabitMarkCmd{Name: "Run", Status: "done"}).Run(ctx); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	err := (&HabitFreezeCmd{Name: "Run"}).Run(ctx)
	if err == nil {
		t.Fatal("expected freeze of a done day to fail")
	}
	if !strings.Contains(err.Error(), "no freeze needed") {
		t.Errorf("unexpected error: %v", err)
	}

	// The failed freeze must not consume allowance
	state, _ := ctx.Store.GetFreezeState(ctx.MonthKey())
	if state.Used != 0 {
		t.Errorf("expected 0 freezes used, got %d", state.Used)
	}
}

func TestHabitArchiveCmd_Roundtrip(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	if err := (&HabitArchiveCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("archive failed: %v", err)
	}
	active, _ := ctx.Store.GetAllHabits(false, false)
	if len(active) != 0 {
		t.Errorf("expected no active habits, got %d", len(active))
	}

	if err := (&HabitArchiveCmd{Name: "Run", Unarchive: true}).Run(ctx); err != nil {
		t.Fatalf("unarchive failed: %v", err)
	}
	active, _ = ctx.Store.GetAllHabits(false, false)
	if len(active) != 1 {
		t.Errorf("expected 1 active habit, got %d", len(active))
	}
}

func TestHabitDeleteAndRestore(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	if err := (&HabitDeleteCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("Run"); err == nil {
		t.Error("expected deleted habit to be hidden")
	}

	if err := (&HabitRestoreCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("Run"); err != nil {
		t.Errorf("expected restored habit to be visible: %v", err)
	}
}

func TestHabitEditCmd_Rename(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	if err := (&HabitAddCmd{Name: "Run"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}
	if err := (&HabitAddCmd{Name: "Read"}).Run(ctx); err != nil {
		t.Fatalf("habit add failed: %v", err)
	}

	// Renaming onto an existing name is rejected
	if err := (&HabitEditCmd{Name: "Run", Rename: "Read"}).Run(ctx); err == nil {
		t.Fatal("expected rename collision to fail")
	}

	if err := (&HabitEditCmd{Name: "Run", Rename: "Jog"}).Run(ctx); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("Jog"); err != nil {
		t.Errorf("renamed habit not found: %v", err)
	}
}

func TestParseDay(t *testing.T) {
	ctx, cleanup := setupTestDB(t)
	defer cleanup()

	day, err := ctx.ParseDay("")
	if err != nil {
		t.Fatalf("ParseDay failed: %v", err)
	}
	if day != "2025-11-19" {
		t.Errorf("expected today, got %s", day)
	}

	if _, err := ctx.ParseDay("11/19/2025"); err == nil {
		t.Error("expected invalid date format to fail")
	}
}
