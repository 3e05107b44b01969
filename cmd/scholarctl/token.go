package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/bootstrap"
)

var (
	tokenID   string
	tokenKind string
)

var tokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Issue an access token for a student or alumni",
	Long: `Sign an access token with the configured JWT secret. Useful for local
testing since the service itself does not handle login.

Examples:
  scholarctl issue-token --id 6f1c... --kind Student`,
	Args: cobra.NoArgs,
	RunE: runIssueToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenID, "id", "", "principal id (uuid)")
	tokenCmd.Flags().StringVar(&tokenKind, "kind", string(models.KindStudent), "principal kind (Student or Alumni)")
	_ = tokenCmd.MarkFlagRequired("id")
}

func runIssueToken(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		return fmt.Errorf("invalid --id: %w", err)
	}
	kind := models.PrincipalKind(tokenKind)
	if !kind.Valid() {
		return fmt.Errorf("invalid --kind %q, want %s or %s", tokenKind, models.KindStudent, models.KindAlumni)
	}

	cfg, _, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return err
	}

	token, expiresAt, err := bootstrap.NewJWTService(cfg).IssueToken(id, kind)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	fmt.Fprintf(out, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}
