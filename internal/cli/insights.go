package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"periodtracker/internal/app"
	"periodtracker/internal/domain"
)

// EntriesOptions holds flags for the entries command.
type EntriesOptions struct {
	*RootOptions
	From string
	To   string
}

// NewEntriesCommand creates the entries command.
func NewEntriesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EntriesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List logged days in date order",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, d := range []string{opts.From, opts.To} {
				if d == "" {
					continue
				}
				if _, err := domain.ParseDate(d); err != nil {
					return WrapExitError(ExitInvalidInput, "invalid date", err)
				}
			}
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			items := make([]domain.DayEntry, 0)
			for _, e := range days.Entries(cmd.Context()) {
				if (opts.From != "" && e.Date < opts.From) || (opts.To != "" && e.Date > opts.To) {
					continue
				}
				items = append(items, e)
			}

			return opts.formatter(cmd).Success(items, func(w io.Writer) error {
				if len(items) == 0 {
					_, err := fmt.Fprintln(w, "no entries")
					return err
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tFLOW\tSYMPTOMS\tNOTES")
				for _, e := range items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date, e.Flow, strings.Join(e.Symptoms, ", "), e.Notes)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "first date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last date to include (YYYY-MM-DD)")

	return cmd
}

// CyclesResult is the JSON payload of the cycles command.
type CyclesResult struct {
	Items   []domain.Cycle      `json:"items"`
	Summary domain.CycleSummary `json:"summary"`
}

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cycles",
		Short: "List the cycles derived from logged flow-days",
		Long: `List the cycles derived from logged flow-days. Flow-days more than
10 days apart start a new cycle.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			cycles := days.Cycles(cmd.Context())
			res := CyclesResult{Items: cycles, Summary: domain.SummarizeCycles(cycles)}
			return opts.formatter(cmd).Success(res, func(w io.Writer) error {
				return printCycles(w, res)
			})
		},
	}
}

func printCycles(w io.Writer, res CyclesResult) error {
	if len(res.Items) == 0 {
		_, err := fmt.Fprintln(w, "no cycles")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tLENGTH")
	for _, c := range res.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.StartDate, orDash(c.EndDate), intOrDash(c.Length))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if res.Summary.AverageLength != nil {
		_, err := fmt.Fprintf(w, "\n%d cycles, average length %d days\n", res.Summary.TotalCycles, *res.Summary.AverageLength)
		return err
	}
	return nil
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show today's cycle figures and the next predicted period",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			st := days.Stats(cmd.Context())
			return opts.formatter(cmd).Success(st, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "today\t%s\n", st.Today)
				fmt.Fprintf(tw, "days since last period\t%s\n", intOrDash(st.DaysSinceLastPeriod))
				fmt.Fprintf(tw, "current cycle day\t%s\n", intOrDash(st.CurrentCycleDay))
				next := "-"
				if st.NextPredictedPeriod != nil {
					next = *st.NextPredictedPeriod
				}
				fmt.Fprintf(tw, "next predicted period\t%s\n", next)
				fmt.Fprintf(tw, "days until next period\t%s\n", intOrDash(st.DaysUntilNextPeriod))
				fmt.Fprintf(tw, "average cycle length\t%d days\n", st.AverageCycleLength)
				return tw.Flush()
			})
		},
	}
}

// CalendarOptions holds flags for the calendar command.
type CalendarOptions struct {
	*RootOptions
	Month string
}

// NewCalendarCommand creates the calendar command.
func NewCalendarCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CalendarOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the marked days of a month",
		Long: `Show the days of a month that carry a flow, symptoms, notes or fall
in the predicted period window. Defaults to the current month.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, closeStore, err := opts.openDayLog()
			if err != nil {
				return err
			}
			defer closeStore()

			month := opts.Month
			if month == "" {
				month = days.Today()[:7]
			}
			cal, err := app.NewCalendarService(days).Month(cmd.Context(), month)
			if err != nil {
				return WrapExitError(ExitInvalidInput, "invalid month", err)
			}

			return opts.formatter(cmd).Success(cal, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "DATE\tFLOW\tMARKS")
				for _, d := range cal {
					marks := calendarMarks(d)
					if !d.Flow.IsPeriod() && marks == "" {
						continue
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Date, d.Flow, marks)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&opts.Month, "month", "", "month to show (YYYY-MM)")

	return cmd
}

func calendarMarks(d app.CalendarDay) string {
	var marks []string
	if d.Today {
		marks = append(marks, "today")
	}
	if d.Predicted {
		marks = append(marks, "predicted")
	}
	if d.HasSymptoms {
		marks = append(marks, "symptoms")
	}
	if d.HasNotes {
		marks = append(marks, "notes")
	}
	return strings.Join(marks, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func intOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return fmt.Sprint(*n)
}
