package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/pkg/core"
)

func newListCmd(c *cli) *cobra.Command {
	var (
		q     core.ListQuery
		quick bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first (SQL storage only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("quick") {
				q.QuickCapture = &quick
			}

			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			page, err := app.Store.ListNotes(cmd.Context(), q)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), page, func(w io.Writer) error {
				loc := app.Store.Location()
				for _, n := range page.Notes {
					mark := ""
					if n.IsQuickCapture {
						mark = " (quick)"
					}
					fmt.Fprintf(w, "%d\t%s\t%s%s\n", n.ID, n.CreatedAt.In(loc).Format("2006-01-02 15:04"), n.Content, mark)
				}
				fmt.Fprintf(w, "%d of %d\n", len(page.Notes), page.TotalCount)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&q.Limit, "limit", core.DefaultListLimit, "Page size")
	cmd.Flags().IntVar(&q.Offset, "offset", 0, "Entries to skip")
	cmd.Flags().BoolVar(&quick, "quick", false, "Only quick captures (--quick=false for the rest)")
	return cmd
}
