package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newAppendCmd(c *cli) *cobra.Command {
	var quick bool

	cmd := &cobra.Command{
		Use:   "append [content...]",
		Short: "Append a timestamped entry to today's note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.Store.Append(cmd.Context(), strings.Join(args, " "), quick)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), dayNote(app.Store.Today(), text), printText(text))
		},
	}
	cmd.Flags().BoolVarP(&quick, "quick", "q", false, "Mark the entry as a quick capture")
	return cmd
}
