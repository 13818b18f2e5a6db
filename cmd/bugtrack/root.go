package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/monocle-dev/bugtrack/db"
	"github.com/monocle-dev/bugtrack/internal/app"
	"github.com/monocle-dev/bugtrack/internal/config"
	"github.com/monocle-dev/bugtrack/internal/logging"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bugtrack",
		Short:         "Bug tracking REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default: environment only)")

	root.AddCommand(
		newServeCommand(&configPath),
		newMigrateCommand(&configPath),
	)

	return root
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := setup(*configPath)

			if err != nil {
				return err
			}

			database, err := app.Open(cfg, log)

			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := app.New(cfg, log, database).Run(ctx); err != nil {
				return err
			}

			log.Info("server stopped")
			return nil
		},
	}
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(*cobra.Command, []string) error {
			cfg, log, err := setup(*configPath)

			if err != nil {
				return err
			}

			database, err := app.Open(cfg, log)

			if err != nil {
				return err
			}

			log.Info("schema migrated", slog.String("driver", cfg.Database.Driver))

			return db.Close(database)
		},
	}
}

func setup(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)

	if err != nil {
		return nil, nil, err
	}

	log := logging.New(os.Stdout, cfg.Env, cfg.LogLevel)
	slog.SetDefault(log)

	return cfg, log, nil
}
