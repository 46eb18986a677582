package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newEditCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [id] [content...]",
		Short: "Replace the content of one entry (SQL storage only)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			entry, err := app.Store.UpdateNote(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), entry, printText(fmt.Sprintf("Entry %d updated.", entry.ID)))
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}
