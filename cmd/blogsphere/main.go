package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"blogsphere/internal/config"
	"blogsphere/internal/database"
	"blogsphere/internal/logging"
)

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogsphere",
		Short:         "Social blogging API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (yaml, json or toml); BLOG_* env vars override it")

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newReconcileCommand())
	root.AddCommand(newAdminCommand())
	root.AddCommand(newSessionsCommand())
	return root
}

// env: общее окружение команд: конфиг, логгер и открытая база.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *database.DB
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger, db: db}, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			return e.db.Migrate(cmd.Context())
		},
	}
}

func newReconcileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute like, comment, post and follow counters from their relations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.db.Close()
			report, err := e.db.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			for counter, n := range report {
				if n > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows repaired\n", counter, n)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", report.Total())
			return nil
		},
	}
}
