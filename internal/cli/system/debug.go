package system

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpHabit    *DebugDumpHabitCmd    `cmd:"" help:"Dump habit data as JSON."`
	DumpEntries  *DebugDumpEntriesCmd  `cmd:"" help:"Dump habit entries for a day as JSON."`
	DumpSettings *DebugDumpSettingsCmd `cmd:"" help:"Dump settings data as JSON."`
	DumpFreeze   *DebugDumpFreezeCmd   `cmd:"" help:"Dump freeze usage for a month as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	path := ctx.Store.GetConfigPath()

	// Output in machine-readable format
	output := map[string]string{
		"path": path,
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpHabitCmd struct {
	ID string `arg:"" help:"ID of the habit to dump."`
}

func (cmd *DebugDumpHabitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	habit, err := ctx.Store.GetHabit(cmd.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("habit not found: %s", cmd.ID)
		}
		return fmt.Errorf("failed to get habit: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(habit, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal habit: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpEntriesCmd struct {
	Day string `arg:"" optional:"" help:"Day to dump entries for (YYYY-MM-DD, defaults to today)."`
}

func (cmd *DebugDumpEntriesCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	day, err := ctx.ParseDay(cmd.Day)
	if err != nil {
		return err
	}

	entries, err := ctx.Store.GetHabitEntriesForDay(day)
	if err != nil {
		return fmt.Errorf("failed to get habit entries: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal habit entries: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpSettingsCmd struct{}

func (cmd *DebugDumpSettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}

type DebugDumpFreezeCmd struct {
	Month string `arg:"" optional:"" help:"Month to dump freeze usage for (YYYY-MM, defaults to current month)."`
}

func (cmd *DebugDumpFreezeCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	month := cmd.Month
	if month == "" {
		month = ctx.MonthKey()
	}

	state, err := ctx.Store.GetFreezeState(month)
	if err != nil {
		return fmt.Errorf("failed to get freeze state: %w", err)
	}

	jsonBytes, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal freeze state: %w", err)
	}

	fmt.Println(string(jsonBytes))
	return nil
}
