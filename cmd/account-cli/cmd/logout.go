package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the cached user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		// Local state goes even when the server cannot be reached.
		errs := []error{
			ws.client.Logout(ctx),
			ws.store.Clear(ctx),
			ws.creds.Remove(),
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
