package main

import (
	"fmt"
	"io"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the state of the store and its backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.Store.ReadToday(cmd.Context()); err != nil {
				return err
			}

			states := map[string]any{}
			for _, v := range []any{app.Store, app.Backend} {
				intro, ok := v.(introspection.Introspectable)
				if !ok {
					continue
				}
				name := "component"
				if comp, ok := v.(introspection.Component); ok {
					name = comp.ComponentType()
				}
				states[name] = intro.State()
			}

			return c.print(cmd.OutOrStdout(), states, func(w io.Writer) error {
				for _, name := range []string{app.Store.ComponentType(), componentName(app.Backend)} {
					if st, ok := states[name]; ok {
						fmt.Fprintf(w, "%s: %+v\n", name, st)
					}
				}
				return nil
			})
		},
	}
}

func componentName(v any) string {
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "component"
}
