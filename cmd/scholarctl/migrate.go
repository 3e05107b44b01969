package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/scholarlink/internal/app/migrations"
	"github.com/yigit/scholarlink/internal/bootstrap"
	"github.com/yigit/scholarlink/internal/config"
)

var migrateStatus bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending SQL migrations",
	Long: `Apply every pending file of database.migrationsDir in lexical order.

Each file runs in its own transaction together with its schema_migrations row.

Examples:
  scholarctl migrate
  scholarctl migrate --status`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "list applied migrations without running anything")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrate requires the %q driver, configured driver is %q", config.DriverPostgres, cfg.Database.Driver)
	}

	ctx := cmd.Context()
	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	if !migrateStatus {
		if _, err := bootstrap.RunMigrations(ctx, cfg, database, lgr); err != nil {
			return err
		}
	}

	applied, err := appMigrations.NewMigrator(database.Pool, lgr).Applied(ctx)
	if err != nil {
		return fmt.Errorf("failed to list applied migrations: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d migrations applied\n", len(applied))
	for _, version := range applied {
		fmt.Fprintf(out, "  %s\n", version)
	}
	return nil
}
