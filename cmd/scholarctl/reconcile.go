package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	appRepos "github.com/yigit/scholarlink/internal/app/repositories"
	appServices "github.com/yigit/scholarlink/internal/app/services"
	"github.com/yigit/scholarlink/internal/bootstrap"
	"github.com/yigit/scholarlink/internal/config"
)

var reconcileFix bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile-need",
	Short: "Compare stored financial needs with completed payments",
	Long: `Recompute every student's expected financial need as
max(0, baseline - sum of completed payments) and report the differences.

Examples:
  scholarctl reconcile-need
  scholarctl reconcile-need --fix`,
	Args: cobra.NoArgs,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileFix, "fix", false, "rewrite drifted needs to the expected value")
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("reconcile-need requires the %q driver, configured driver is %q", config.DriverPostgres, cfg.Database.Driver)
	}

	ctx := cmd.Context()
	database, err := bootstrap.ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return err
	}
	defer database.Close()

	svc := appServices.NewReconciliationService(appRepos.NewPostgresStore(database), appServices.SystemClock, lgr)
	report, err := svc.ReconcileFinancialNeed(ctx, reconcileFix)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
