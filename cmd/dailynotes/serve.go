package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/internal/server"
	lcsource "github.com/aretw0/dailynotes/pkg/adapters/lifecycle"
	"github.com/aretw0/dailynotes/pkg/core"
)

func newServeCmd(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the note store to the windows over HTTP and websocket",
		Long: `Serve runs the resident process: the JSON API under /api and the
note-updated stream under /ws?window=<id>. With file storage, edits made to
today's file by other programs are picked up and broadcast.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cmd.Flags().Changed("addr") {
				c.cfg.Server.Addr = addr
			}

			app, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if w, ok := app.Backend.(core.Watchable); ok {
				if err := follow(ctx, app.Store, w); err != nil {
					return err
				}
			}

			srv := server.New(app.Store, app.Hub, app.Policy, app.Logger,
				server.WithAllowedOrigins(app.Config.Server.AllowedOrigins...))
			return srv.Run(ctx, app.Config.Server, func(addr string) {
				fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// follow refreshes the store whenever another writer changes a day file.
func follow(ctx context.Context, store *core.Store, w core.Watchable) error {
	events, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch notes: %w", err)
	}

	src := lcsource.NewSource(events, store.Today)
	if err := src.Start(ctx); err != nil {
		return err
	}
	lifecycle.Go(ctx, func(ctx context.Context) error {
		return store.Follow(ctx, lcsource.NoteEvents(ctx, src))
	})
	return nil
}
