package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voltmap/chargepoint/internal/config"
	"github.com/voltmap/chargepoint/internal/database"
	"github.com/voltmap/chargepoint/internal/models"
)

// NewPromoteCmd creates the promote command
func NewPromoteCmd() *cobra.Command {
	var demote bool

	cmd := &cobra.Command{
		Use:   "promote <email>",
		Short: "Grant an account the admin role",
		Long:  "Grant an account the admin role, or revoke it with --demote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			userRepo := database.NewUserRepository(db)
			ctx := context.Background()

			user, err := userRepo.GetByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to look up %s: %w", args[0], err)
			}

			role := models.RoleAdmin
			if demote {
				role = models.RoleUser
			}

			if err := userRepo.SetRole(ctx, user.ID, role); err != nil {
				return fmt.Errorf("failed to set role: %w", err)
			}

			fmt.Printf("Set role of %s to %s\n", user.Email, role)
			return nil
		},
	}

	cmd.Flags().BoolVar(&demote, "demote", false, "Revoke the admin role instead of granting it")

	return cmd
}
