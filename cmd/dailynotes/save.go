package main

import (
	"io"

	"github.com/spf13/cobra"
)

func newSaveCmd(c *cli) *cobra.Command {
	var content string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Replace today's note",
		Long: `Save replaces today's note with the given text, read from --content or stdin.
Blank text deletes today's note. On SQL storage every line becomes a new
entry stamped with the current time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("content") {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				content = string(data)
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			text, err := app.Store.SaveToday(cmd.Context(), content)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), dayNote(app.Store.Today(), text), printText(text))
		},
	}
	cmd.Flags().StringVar(&content, "content", "", "Full text of today's note")
	return cmd
}
