// Package cli implements the periodtracker command line.
package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"periodtracker/internal/adapter/memory"
	"periodtracker/internal/adapter/postgres"
	"periodtracker/internal/adapter/sqlite"
	"periodtracker/internal/app"
	"periodtracker/internal/config"
	"periodtracker/internal/domain"
	"periodtracker/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string

	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the periodtracker CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{now: time.Now})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "periodtracker",
		Short: "Private menstrual cycle tracker",
		Long: `Log period days, symptoms and notes, derive cycles and predict the next
period. Data stays in a single local store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitInvalidInput,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitInvalidInput, "failed to load config", err)
			}
			if opts.DBPath != "" {
				cfg.Storage.Driver = "sqlite"
				cfg.Storage.Path = opts.DBPath
			}
			opts.cfg = cfg
			opts.logger = logger.Setup(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitInvalidInput, "invalid flags", err)
	})

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to a SQLite database (overrides storage config)")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewDayCommand(opts))
	cmd.AddCommand(NewEntriesCommand(opts))
	cmd.AddCommand(NewCyclesCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCalendarCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewSymptomCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// openDayLog opens the configured durable slot and wraps it in a DayLog.
// The returned func closes the slot.
func (o *RootOptions) openDayLog() (*app.DayLog, func(), error) {
	slot, closeFn, err := openSlot(o.cfg.Storage)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "failed to open storage", err)
	}
	days := app.NewDayLog(slot, o.logger).WithKey(o.cfg.Storage.Key).WithClock(o.now)
	return days, func() {
		if err := closeFn(); err != nil {
			o.logger.Error("close storage", "error", err)
		}
	}, nil
}

func openSlot(cfg config.StorageConfig) (domain.SlotStore, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return memory.New(), func() error { return nil }, nil
	case "postgres":
		db, err := postgres.Open(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	default:
		db, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
}

// exactArgs is cobra.ExactArgs reporting ExitInvalidInput.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitInvalidInput, "invalid arguments", err)
		}
		return nil
	}
}
