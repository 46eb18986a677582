package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/pkg/core"
)

func newTodayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.Store.ReadToday(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), dayNote(app.Store.Today(), text), printText(text))
		},
	}
}

func dayNote(day core.Day, text string) core.DayNote {
	return core.DayNote{Day: day, Date: day.String(), Content: text, Lines: core.Lines(text)}
}
