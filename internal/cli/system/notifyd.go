package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
	"github.com/KKM43/Habbit-AI-App/internal/logger"
	"github.com/KKM43/Habbit-AI-App/internal/notify"
	"github.com/KKM43/Habbit-AI-App/internal/reminder"
)

// NotifydCmd runs the reminder daemon: it reschedules every enabled habit
// reminder against a fresh notification engine and then delivers them until
// interrupted. Bindings persisted by earlier runs are replaced on startup.
type NotifydCmd struct {
	DryRun bool `help:"Print the reminder schedule and deliver notifications to stdout instead of the tray."`
}

func (c *NotifydCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		fmt.Println("Notifications are disabled in settings.")
		return nil
	}

	var sink notify.Sink
	if c.DryRun {
		sink = &notify.WriterSink{W: os.Stdout}
	} else {
		sink = notify.NewTraySink()
	}

	engine := notify.NewEngine(sink)
	engine.Start()
	defer engine.Stop()

	sched := reminder.New(engine, ctx.Store, ctx.Clock)

	habits, err := ctx.Store.GetAllHabits(false, false)
	if err != nil {
		return fmt.Errorf("failed to get habits: %w", err)
	}

	scheduled := 0
	now := ctx.Clock.Now()
	for _, habit := range habits {
		if !habit.RemindersEnabled {
			continue
		}
		if _, err := sched.Schedule(habit.ReminderSpec()); err != nil {
			logger.Warn("Failed to schedule reminder", "habit", habit.Name, "error", err)
			continue
		}
		scheduled++
		if c.DryRun {
			next := reminder.NextTrigger(now, habit.ReminderHour, habit.ReminderMinute)
			fmt.Printf("  %s at %s (next: %s)\n", habit.Name, habit.ReminderTime(), next.Format("2006-01-02 15:04"))
		}
	}

	if scheduled == 0 {
		fmt.Println("No habits with reminders enabled.")
		return nil
	}

	fmt.Printf("Scheduled %d reminder(s). Waiting for delivery (Ctrl+C to stop)...\n", scheduled)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	fmt.Println("Shutting down.")
	return nil
}
