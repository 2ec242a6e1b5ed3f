package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"periodtracker/internal/domain"
)

// DaySetOptions holds flags for the day set command.
type DaySetOptions struct {
	*RootOptions
	Flow     string
	Symptoms []string
	Notes    string
}

// NewDayCommand creates the day command and its subcommands.
func NewDayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show, log or remove a single day",
	}
	cmd.AddCommand(newDaySetCommand(rootOpts))
	cmd.AddCommand(newDayRemoveCommand(rootOpts))
	cmd.AddCommand(newDayShowCommand(rootOpts))
	return cmd
}

func newDaySetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DaySetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set DATE",
		Short: "Log a day, replacing anything logged for it before",
		Long: `Log flow, symptoms and notes for DATE (YYYY-MM-DD). The day is
replaced as a whole: fields not given are cleared.

Examples:
  periodtracker day set 2024-01-01 --flow heavy --symptom Cramps --symptom Fatigue
  periodtracker day set 2024-01-09 --symptom Headache --notes "slept badly"`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			entry := domain.DayEntry{
				Date:     args[0],
				Flow:     domain.Flow(opts.Flow),
				Symptoms: opts.Symptoms,
				Notes:    opts.Notes,
			}
			if err := days.UpsertEntry(ctx, entry); err != nil {
				return wrapDomainError("failed to log day", err)
			}
			return printDay(opts.formatter(cmd), days.Day(ctx, args[0]))
		},
	}

	cmd.Flags().StringVar(&opts.Flow, "flow", "none", "flow intensity (none|light|medium|heavy)")
	cmd.Flags().StringArrayVar(&opts.Symptoms, "symptom", nil, "symptom label (repeatable)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-text notes")

	return cmd
}

func newDayRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm DATE",
		Aliases: []string{"remove"},
		Short:   "Remove everything logged for a day",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := days.RemoveEntry(cmd.Context(), args[0]); err != nil {
				return wrapDomainError("failed to remove day", err)
			}
			return opts.formatter(cmd).Success(map[string]any{"removed": args[0]}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "removed %s\n", args[0])
				return err
			})
		},
	}
}

func newDayShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show DATE",
		Short: "Show what is logged for a day",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := domain.ParseDate(args[0]); err != nil {
				return WrapExitError(ExitInvalidInput, "invalid date", err)
			}
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			return printDay(opts.formatter(cmd), days.Day(cmd.Context(), args[0]))
		},
	}
}

func printDay(f *OutputFormatter, v domain.DayView) error {
	return f.Success(v, func(w io.Writer) error {
		period := ""
		if v.IsPeriod {
			period = "  (period)"
		}
		fmt.Fprintf(w, "%s  %s%s\n", v.Date, v.Flow, period)
		if len(v.Symptoms) > 0 {
			fmt.Fprintf(w, "symptoms: %s\n", strings.Join(v.Symptoms, ", "))
		}
		if v.Notes != "" {
			fmt.Fprintf(w, "notes: %s\n", v.Notes)
		}
		return nil
	})
}
