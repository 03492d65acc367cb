package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "accountdash",
	Short: "Account dashboard server",
	Long: `accountdash serves the account dashboard: sign-in, the session user API,
avatar uploads and profile editing.

Configuration is read from the environment and an optional .env file.

Use "accountdash [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
