package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/pkg/core"
)

func newRecentCmd(c *cli) *cobra.Command {
	var (
		days  string
		hours int
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print recent days, newest first",
		Long: `Recent prints the notes of past days. --days takes an inclusive offset
range such as 1..2 (0 is today); --hours selects entries created within the
last N hours. Without either, the configured recent policy applies.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			policy := app.Policy
			switch {
			case cmd.Flags().Changed("days"):
				from, to, err := core.ParseDayRange(days)
				if err != nil {
					return err
				}
				policy = core.CalendarDays(from, to)
			case cmd.Flags().Changed("hours"):
				policy = core.RollingHours(hours)
			}

			notes, err := app.Store.GetRecentNotes(cmd.Context(), policy)
			if err != nil {
				return err
			}
			if notes == nil {
				notes = []core.DayNote{}
			}
			return c.print(cmd.OutOrStdout(), notes, func(w io.Writer) error {
				for i, n := range notes {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintf(w, "# %s\n%s\n", n.Date, n.Content)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&days, "days", "", "Inclusive day offset range, e.g. 1..2")
	cmd.Flags().IntVar(&hours, "hours", 0, "Rolling window in hours")
	cmd.MarkFlagsMutuallyExclusive("days", "hours")
	return cmd
}
