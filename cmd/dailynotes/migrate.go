package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/internal/platform"
	"github.com/aretw0/dailynotes/pkg/adapters/sqlstore"
)

func newMigrateCmd(c *cli) *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations (SQL storage only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := platform.OpenBackend(c.cfg.Storage, platform.WithLogger(c.logger))
			if err != nil {
				return err
			}
			defer backend.Close()

			repo, ok := backend.(*sqlstore.Repository)
			if !ok {
				return fmt.Errorf("storage kind %q has no schema to migrate", c.cfg.Storage.Kind)
			}

			var version int64
			if status {
				version, err = repo.SchemaVersion(cmd.Context())
			} else {
				version, err = repo.Migrate(cmd.Context())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().BoolVar(&status, "status", false, "Print the current schema version without migrating")
	return cmd
}
