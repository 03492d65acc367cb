package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/nfrund/accountdash/internal/terminal"
	"github.com/spf13/cobra"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long: `Sign in with email and password. The password is prompted for, or read
from stdin when it is piped.

Examples:
  account-cli login --email ada@example.com
  echo "$PASSWORD" | account-cli login --email ada@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		email := loginEmail
		if email == "" {
			if email, err = terminal.ReadLine(bufio.NewReader(os.Stdin), "Email: ", cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		password, err := terminal.ReadPassword(os.Stdin, "Password: ", cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		if err := ws.client.Login(ctx, email, password); err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}
		// A record cached for a previous sign-in must not leak into this one.
		if err := ws.store.Clear(ctx); err != nil {
			return err
		}
		if err := ws.persist(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}

		ed, err := ws.editor(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", ed.View().DisplayName)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address (prompted when empty)")
	rootCmd.AddCommand(loginCmd)
}
