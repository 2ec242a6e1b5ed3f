package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"periodtracker/internal/domain"
)

// ProfileSetOptions holds flags for the profile set command.
type ProfileSetOptions struct {
	*RootOptions
	CycleLength  int
	PeriodLength int
}

// NewProfileCommand creates the profile command and its subcommands.
func NewProfileCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change cycle preferences",
	}
	cmd.AddCommand(newProfileShowCommand(rootOpts))
	cmd.AddCommand(newProfileSetCommand(rootOpts))
	return cmd
}

func newProfileShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			return printProfile(opts.formatter(cmd), days.Profile(cmd.Context()))
		},
	}
}

func newProfileSetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProfileSetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the average cycle or period length",
		Long: fmt.Sprintf(`Change the average cycle length (%d-%d days) or the average period
length (%d-%d days). Only the flags given are changed.

Examples:
  periodtracker profile set --cycle-length 30
  periodtracker profile set --cycle-length 26 --period-length 4`,
			domain.MinCycleLength, domain.MaxCycleLength, domain.MinPeriodLength, domain.MaxPeriodLength),
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u domain.ProfileUpdate
			if cmd.Flags().Changed("cycle-length") {
				u.AverageCycleLength = &opts.CycleLength
			}
			if cmd.Flags().Changed("period-length") {
				u.AveragePeriodLength = &opts.PeriodLength
			}
			if u.AverageCycleLength == nil && u.AveragePeriodLength == nil {
				return NewExitError(ExitInvalidInput, "nothing to change: pass --cycle-length or --period-length")
			}

			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := days.UpdateProfile(cmd.Context(), u); err != nil {
				return wrapDomainError("failed to update profile", err)
			}
			return printProfile(opts.formatter(cmd), days.Profile(cmd.Context()))
		},
	}

	cmd.Flags().IntVar(&opts.CycleLength, "cycle-length", domain.DefaultCycleLength, "average cycle length in days")
	cmd.Flags().IntVar(&opts.PeriodLength, "period-length", domain.DefaultPeriodLength, "average period length in days")

	return cmd
}

// NewSymptomCommand creates the symptom command.
func NewSymptomCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symptom",
		Short: "Manage the symptom vocabulary",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add LABEL",
		Short: "Add a symptom to the vocabulary",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := rootOpts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := days.AddSymptom(cmd.Context(), args[0]); err != nil {
				return wrapDomainError("failed to add symptom", err)
			}
			return printProfile(rootOpts.formatter(cmd), days.Profile(cmd.Context()))
		},
	})
	return cmd
}

func printProfile(f *OutputFormatter, p domain.Profile) error {
	return f.Success(p, func(w io.Writer) error {
		fmt.Fprintf(w, "cycle length: %d days\n", p.AverageCycleLength)
		fmt.Fprintf(w, "period length: %d days\n", p.AveragePeriodLength)
		_, err := fmt.Fprintf(w, "symptoms: %s\n", strings.Join(p.Symptoms, ", "))
		return err
	})
}
