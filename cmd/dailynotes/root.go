package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/dailynotes/internal/config"
	"github.com/aretw0/dailynotes/internal/logging"
	"github.com/aretw0/dailynotes/internal/platform"
)

// cli carries the flags and wiring shared by every subcommand.
type cli struct {
	configPath string
	verbose    bool
	jsonOut    bool
	yamlOut    bool

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "dailynotes",
		Short: "Capture timestamped notes for today from any window",
		Long: `dailynotes keeps one note per calendar day, built from short timestamped entries.
Entries live in plain text files, SQLite or PostgreSQL; every change is
broadcast to the connected windows so they always show the same text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.closer != nil {
				_ = c.closer.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Config file (default: CONFIG_PATH, ./dailynotes.yaml upwards, ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&c.yamlOut, "yaml", false, "Output in YAML format")
	rootCmd.MarkFlagsMutuallyExclusive("json", "yaml")

	rootCmd.AddCommand(
		newTodayCmd(c),
		newAppendCmd(c),
		newSaveCmd(c),
		newRecentCmd(c),
		newListCmd(c),
		newEditCmd(c),
		newDeleteCmd(c),
		newServeCmd(c),
		newMigrateCmd(c),
		newStatusCmd(c),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) setup(cmd *cobra.Command) error {
	path := c.configPath
	if path == "" && os.Getenv("CONFIG_PATH") == "" {
		if wd, err := os.Getwd(); err == nil {
			if found, err := platform.FindConfig(wd); err == nil {
				path = found
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Log.Level = "debug"
	}

	c.cfg = cfg
	c.logger, c.closer = logging.New(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) open(ctx context.Context) (*platform.App, error) {
	app, err := platform.New(ctx, c.cfg, platform.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return app, nil
}
