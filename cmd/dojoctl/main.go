// Command dojoctl runs one-off administrative tasks against the dojo
// database: schema migration, bootstrapping an admin and sending the
// monthly reminder by hand.
package main

import (
	"context"
	"fmt"
	"os"

	"dojo-admin/internal/app"
	"dojo-admin/internal/config"
	"dojo-admin/internal/infrastructure/database/postgres"
	"dojo-admin/internal/logger"

	"github.com/spf13/cobra"
)

var Version = "dev"

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "dojoctl",
		Short:         "Administrative tasks for the dojo backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "path to a dotenv file with configuration")

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createAdminCmd())
	rootCmd.AddCommand(sendRemindersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is what every subcommand needs: config, logger and a database.
type session struct {
	cfg *config.Config
	db  *postgres.DB
}

func openSession() (*session, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(cfg.Server.Environment); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, db: db}, nil
}

func (s *session) close() {
	_ = s.db.Close()
	logger.Sync()
}

func (s *session) app(ctx context.Context) (*app.App, error) {
	return app.New(ctx, s.cfg, s.db)
}
