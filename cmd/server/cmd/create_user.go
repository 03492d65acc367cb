package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/nfrund/accountdash/internal/config"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/logging"
	"github.com/nfrund/accountdash/internal/server"
	"github.com/nfrund/accountdash/internal/terminal"
	"github.com/spf13/cobra"
)

var newUser struct {
	email     string
	username  string
	firstName string
	lastName  string
	verified  bool
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account in the configured database",
	Long: `Create an account in SurrealDB. The password is prompted for.

Examples:
  accountdash create-user --email ada@example.com --username ada
  echo "$PASSWORD" | accountdash create-user --email ci@example.com --verified`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logging.New(cfg.GetLogFormat(), "warn")
		if cfg.GetDBURL() == "" {
			return errors.New("SURREAL_URL is not set; users created in memory would be lost on exit")
		}

		email := newUser.email
		if email == "" {
			if email, err = terminal.ReadLine(bufio.NewReader(os.Stdin), "Email: ", cmd.ErrOrStderr()); err != nil {
				return err
			}
		}
		password, err := terminal.ReadPassword(os.Stdin, "Password: ", cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := context.Background()
		users, closeUsers, err := server.NewUserRepository(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeUsers(ctx)

		verified := domain.VerifiedNo
		if newUser.verified {
			verified = "yes"
		}
		user, err := users.Create(ctx, &domain.User{
			Email:     email,
			Username:  newUser.username,
			FirstName: newUser.firstName,
			LastName:  newUser.lastName,
			Verified:  verified,
		}, password)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.email, "email", "", "email address (prompted when empty)")
	f.StringVar(&newUser.username, "username", "", "username")
	f.StringVar(&newUser.firstName, "first-name", "", "first name")
	f.StringVar(&newUser.lastName, "last-name", "", "last name")
	f.BoolVar(&newUser.verified, "verified", false, "mark the email address as verified")
	rootCmd.AddCommand(createUserCmd)
}
