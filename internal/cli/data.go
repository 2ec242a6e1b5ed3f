package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of all data",
		Long: `Write a JSON snapshot of all data. Without --output the snapshot goes
to stdout; --output auto writes period-tracker-export-YYYY-MM-DD.json.

Examples:
  periodtracker export > backup.json
  periodtracker export --output auto`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			raw, err := days.Export(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to export", err)
			}
			raw = append(raw, '\n')

			if opts.Output == "" || opts.Output == "-" {
				_, err := cmd.OutOrStdout().Write(raw)
				return err
			}

			path := opts.Output
			if path == "auto" {
				path = days.ExportFileName()
			}
			if err := os.WriteFile(path, raw, 0o600); err != nil {
				return WrapExitError(ExitFailure, "failed to write export", err)
			}
			return opts.formatter(cmd).Success(map[string]any{"path": path}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "exported to %s\n", path)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (- for stdout, auto for a dated file name)")

	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all data with a JSON snapshot",
		Long: `Replace all data with the snapshot in FILE (- for stdin). A snapshot
without a profile or entries, or with an invalid entry, is rejected and
nothing changes.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return WrapExitError(ExitInvalidInput, "failed to read snapshot", err)
			}

			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := days.Import(cmd.Context(), raw); err != nil {
				return wrapDomainError("import rejected", err)
			}
			n := len(days.Entries(cmd.Context()))
			return opts.formatter(cmd).Success(map[string]any{"entries": n}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "imported %d entries\n", n)
				return err
			})
		},
	}
}

// ClearOptions holds flags for the clear command.
type ClearOptions struct {
	*RootOptions
	Yes   bool
	Purge bool
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClearOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all logged data",
		Long: `Reset the profile and delete every entry. --purge also removes the
stored record instead of writing the defaults back.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitInvalidInput, "refusing to delete all data without --yes")
			}
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			action := "cleared"
			if opts.Purge {
				days.Purge(cmd.Context())
				action = "purged"
			} else {
				days.Clear(cmd.Context())
			}
			return opts.formatter(cmd).Success(map[string]any{"action": action}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s all data\n", action)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "confirm deleting all data")
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "remove the stored record entirely")

	return cmd
}
