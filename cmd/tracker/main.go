package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/tracker/internal/cli"
	"github.com/julianstephens/tracker/internal/cli/backups"
	"github.com/julianstephens/tracker/internal/cli/categories"
	"github.com/julianstephens/tracker/internal/cli/records"
	"github.com/julianstephens/tracker/internal/cli/settings"
	"github.com/julianstephens/tracker/internal/cli/system"
	"github.com/julianstephens/tracker/internal/cli/trackers"
	"github.com/julianstephens/tracker/internal/cli/transfer"
	"github.com/julianstephens/tracker/internal/config"
	"github.com/julianstephens/tracker/internal/constants"
	apperrors "github.com/julianstephens/tracker/internal/errors"
	"github.com/julianstephens/tracker/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file (.db or .json) or PostgreSQL connection string. Credentials must NOT be embedded; use the keyring, environment or .pgpass." env:"TRACKER_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"TRACKER_DEBUG"`

	Init     system.InitCmd         `cmd:"" help:"Initialize tracker storage."`
	Migrate  system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd     `cmd:"" help:"Validate stored trackers and records."`
	Keyring  system.KeyringCmd      `cmd:"" help:"Manage the stored PostgreSQL connection string."`
	Tui      system.TuiCmd          `cmd:"" help:"Launch the interactive board." default:"1"`
	Show     records.ShowCmd        `cmd:"" help:"Show trackers for a day."`
	Mark     records.MarkCmd        `cmd:"" help:"Toggle a tracker's completion for a day."`
	Stats    records.StatsCmd       `cmd:"" help:"Show statistics."`
	Tracker  trackers.TrackerCmd    `cmd:"" help:"Manage trackers."`
	Category categories.CategoryCmd `cmd:"" help:"Manage categories."`
	Export   transfer.ExportCmd     `cmd:"" help:"Export all data as JSON or YAML."`
	Import   transfer.ImportCmd     `cmd:"" help:"Import data from an export file."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd   `cmd:"" help:"Manage application settings."`
}

// commands that open the store themselves, or not at all
var selfLoading = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	cfg, envFiles, err := config.Load(".", config.Dir(os.Getenv(constants.EnvConfig)))
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}

	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit and event tracker with a weekly schedule"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	value := CLI.Config
	if value == "" {
		value = cfg.DBConnection
	}
	cfg.Path = value
	cfg.Debug = cfg.Debug || CLI.Debug

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.Dir(value)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	for _, f := range envFiles {
		logger.Debug("loaded environment file", "path", f)
	}

	code := run(kctx, cfg, value)
	_ = logger.Close()
	os.Exit(code)
}

func run(kctx *kong.Context, cfg config.Config, value string) int {
	store, err := cli.NewProvider(value)
	if err != nil {
		apperrors.Report(os.Stderr, err)
		return 1
	}
	defer store.Close()

	command := strings.Fields(kctx.Command())
	if len(command) > 0 && !selfLoading[command[0]] {
		if err := store.Load(); err != nil {
			apperrors.Report(os.Stderr, err)
			return 1
		}
	}

	base, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(base, store, cfg)
	runErr := kctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("failed to drain pending writes", "error", err)
	}
	if apperrors.Report(os.Stderr, runErr) {
		return 1
	}
	return 0
}
