package main

import (
	"github.com/alecthomas/kong"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/cli/backups"
	"github.com/julianstephens/tracker/internal/cli/categories"
	"github.com/julianstephens/tracker/internal/cli/settings"
	"github.com/julianstephens/tracker/internal/cli/system"
	"github.com/julianstephens/tracker/internal/cli/trackers"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	"github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" default:"${config_path}"`
	DB       string `name:"db" help:"Database location: a SQLite file, ':memory:', 'keyring', or a PostgreSQL connection string without a password. Overrides the config file and ${env_var}."`
	Timezone string `help:"Override the timezone stored in settings for this run."`
	Debug    bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd         `cmd:"" help:"Initialize tracker storage."`
	Tui      system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add      trackers.AddCmd        `cmd:"" help:"Add a tracker."`
	Edit     trackers.EditCmd       `cmd:"" help:"Edit a tracker."`
	Delete   trackers.DeleteCmd     `cmd:"" help:"Delete a tracker and its history."`
	List     trackers.ListCmd       `cmd:"" help:"List trackers for a day."`
	Done     trackers.DoneCmd       `cmd:"" help:"Toggle a tracker's completion for a day."`
	Pin      trackers.PinCmd        `cmd:"" help:"Toggle a tracker's pin."`
	Stats    trackers.StatsCmd      `cmd:"" help:"Show completion statistics."`
	Category categories.CategoryCmd `cmd:"" help:"Manage categories."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
	Export   system.ExportCmd       `cmd:"" help:"Write a snapshot of all data."`
	Import   system.ImportCmd       `cmd:"" help:"Merge a snapshot into the database."`
	Settings settings.SettingsCmd   `cmd:"" help:"Show or change application settings."`
	Keyring  system.KeyringCmd      `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Doctor   system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
}

// Commands that open the store themselves.
var selfLoading = map[string]bool{
	"init":   true,
	"doctor": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and event tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
			"env_var":     constants.ConnectionEnvVar,
		},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:  CLI.Debug || cfg.Debug,
		LogDir: config.ExpandHome(cfg.LogDir),
	}); err != nil {
		errors.Fatal(err)
	}

	command := topLevel(ctx.Command())
	if command == "keyring" {
		errors.Fatal(ctx.Run(cli.NewContext(nil, cli.WithConfig(cfg), cli.WithTimezone(CLI.Timezone))))
		return
	}

	store, err := cli.OpenStore(cli.ResolveDatabase(CLI.DB, cfg))
	if err != nil {
		errors.Fatal(err)
	}
	defer store.Close()

	if !selfLoading[command] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	appCtx := cli.NewContext(store, cli.WithConfig(cfg), cli.WithTimezone(CLI.Timezone))
	logger.Debug("Running command", "command", ctx.Command(), "database", store.GetConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}

// topLevel returns the first word of a kong command path like "backup restore <backup>".
func topLevel(command string) string {
	for i, r := range command {
		if r == ' ' {
			return command[:i]
		}
	}
	return command
}
