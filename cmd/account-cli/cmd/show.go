package cmd

import (
	"github.com/nfrund/accountdash/cmd/account-cli/internal/display"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the signed-in account",
	Long: `Show the profile and address of the signed-in account.

Examples:
  account-cli show
  account-cli show -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		ed, err := ws.editor(ctx)
		if err != nil {
			return err
		}
		return display.Profile(cmd.OutOrStdout(), ed.View(), opts.format)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
