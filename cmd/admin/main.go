package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/voltmap/chargepoint/cmd/admin/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "chargepoint-admin",
		Short: "Administration tool for the ChargePoint API",
		Long:  "CLI tool for managing accounts and issuing service tokens",
	}

	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewPromoteCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
