package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/voltmap/chargepoint/internal/auth"
	"github.com/voltmap/chargepoint/internal/config"
	"github.com/voltmap/chargepoint/internal/database"
)

// NewTokenCmd creates the token command
func NewTokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <email>",
		Short: "Issue a session token for an account",
		Long:  "Issue a signed session token for an account, for smoke tests and scripted API access",
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

			user, err := userRepo.GetByEmail(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to look up %s: %w", args[0], err)
			}

			issuer := auth.NewTokenIssuer([]byte(cfg.JWTSecret))
			token, err := issuer.Issue(user, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", auth.PasswordTokenTTL, "Token lifetime")

	return cmd
}
