package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voltmap/chargepoint/internal/config"
	"github.com/voltmap/chargepoint/internal/database"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Long:  "List all registered accounts with their role and sign-in methods",
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

			users, err := userRepo.List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			if len(users) == 0 {
				fmt.Println("No accounts registered")
				return nil
			}

			fmt.Println("Registered accounts:")
			for _, user := range users {
				fmt.Printf("  - %s (%s)\n", user.Email, user.ID)
				fmt.Printf("    Role: %s\n", user.Role)
				fmt.Printf("    Password login: %v\n", user.HasPassword())
				fmt.Printf("    Google linked: %v\n", user.IsGoogleLinked())
				fmt.Println()
			}

			return nil
		},
	}

	return cmd
}
