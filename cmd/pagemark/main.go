package main

import (
	"os"

	"github.com/spf13/cobra"

	"pagemark/internal/interfaces/cli/migrate"
	"pagemark/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pagemark",
		Short: "Pagemark - AI usage metering service",
		Long:  `Pagemark meters AI feature usage and enforces plan limits for the read-it-later apps, with built-in server and migration tools.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
