package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/KKM43/Habbit-AI-App/internal/cli"
	"github.com/KKM43/Habbit-AI-App/internal/cli/system"
	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/errors"
	"github.com/KKM43/Habbit-AI-App/internal/keyring"
	"github.com/KKM43/Habbit-AI-App/internal/logger"
	"github.com/KKM43/Habbit-AI-App/internal/notify"
	"github.com/KKM43/Habbit-AI-App/internal/reminder"
	"github.com/KKM43/Habbit-AI-App/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables, .pgpass, or the OS keyring instead." type:"string" default:"~/.config/habbit/habbit.db"`
	Debug   bool   `help:"Enable debug logging to stderr and the log file."`

	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits and habit tracking."`
	Remind   cli.RemindCmd   `cmd:"" help:"Manage habit reminders."`
	Settings cli.SettingsCmd `cmd:"" help:"Manage application settings."`
	Tui      system.TuiCmd   `cmd:"" help:"Launch the interactive TUI." default:"1"`
	System   struct {
		Init    system.InitCmd    `cmd:"" help:"Initialize habbit storage."`
		Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
		Notifyd system.NotifydCmd `cmd:"" help:"Run the reminder delivery daemon."`
		Debug   system.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
		Keyring struct {
			Set    system.KeyringSetCmd    `cmd:"" help:"Store a connection string in the OS keyring."`
			Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
			Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
			Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability."`
		} `cmd:"" help:"Manage database credentials in the OS keyring."`
	} `cmd:"" help:"System maintenance commands."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, freezes, and daily reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	config := resolveConfig(CLI.Config)

	// Logs live next to the database, or under the default config dir when
	// the database is remote.
	logDir := filepath.Dir(config)
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		logDir = filepath.Dir(expandHome(constants.DefaultConfigPath))
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not set up logging: %v\n", err)
	}

	var store storage.Provider
	if strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") {
		// PostgreSQL connection string detected - validate for embedded credentials
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintf(os.Stderr, "❌ Error: PostgreSQL connection strings with embedded credentials are NOT allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use one of these secure alternatives:\n")
			fmt.Fprintf(os.Stderr, "       1. OS keyring:    habbit system keyring set \"postgresql://user@host:5432/habbit\"\n")
			fmt.Fprintf(os.Stderr, "       2. Environment:   export PGPASSWORD=...\n")
			fmt.Fprintf(os.Stderr, "       3. .pgpass file:  Use a connection string without a password\n")
			os.Exit(1)
		}
		store = storage.NewPostgresStore(config)
	} else {
		// Default to SQLite
		store = storage.NewSQLiteStore(config)
	}

	clk := clock.Real{}
	engine := notify.NewEngine(notify.NewTraySink())

	appCtx := &cli.Context{
		Store:     store,
		Reminders: reminder.New(engine, store, clk),
		Clock:     clk,
	}

	// Load the store before running the command (init handles its own loading)
	if !CLI.System.Init.Force && ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}

// resolveConfig expands the config flag into a usable database path: a
// keyring-stored connection string takes over when the flag is untouched,
// and a leading ~ is expanded to the home directory.
func resolveConfig(config string) string {
	if config == constants.DefaultConfigPath {
		if connStr, err := keyring.GetConnectionString(); err == nil && connStr != "" {
			return connStr
		}
	}
	return expandHome(config)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
