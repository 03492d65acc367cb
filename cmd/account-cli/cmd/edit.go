package cmd

import (
	"errors"
	"fmt"

	"github.com/nfrund/accountdash/cmd/account-cli/internal/display"
	"github.com/nfrund/accountdash/internal/dashboard"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/spf13/cobra"
)

// editFlags maps flag names onto editable profile fields.
var editFlags = map[string]string{
	"username":   domain.FieldUsername,
	"first-name": domain.FieldFirstName,
	"last-name":  domain.FieldLastName,
	"email":      domain.FieldEmail,
}

var editValues = map[string]*string{}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit profile fields",
	Long: `Change one or more profile fields and save them. Fields that are not
given keep their current value. On failure nothing is changed.

Examples:
  account-cli edit --username countess
  account-cli edit --first-name Ada --last-name King`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		changed := 0
		for flag := range editFlags {
			if cmd.Flags().Changed(flag) {
				changed++
			}
		}
		if changed == 0 {
			return errors.New("nothing to change, pass at least one of --username, --first-name, --last-name, --email")
		}

		ws, err := openWorkspace(ctx)
		if err != nil {
			return err
		}
		defer ws.Close()

		ed, err := ws.editor(ctx)
		if err != nil {
			return err
		}
		if err := ed.Edit(); err != nil {
			return err
		}
		for flag, field := range editFlags {
			if !cmd.Flags().Changed(flag) {
				continue
			}
			if err := ed.SetField(field, *editValues[flag]); err != nil {
				return err
			}
		}

		if err := ed.Save(ctx); err != nil {
			ws.logger.Debug("Profile save failed", "error", err, "state", ed.SaveState())
			return errors.New(dashboard.Message(err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Profile saved")
		return display.Profile(cmd.OutOrStdout(), ed.View(), opts.format)
	},
}

func init() {
	for flag, field := range editFlags {
		editValues[flag] = editCmd.Flags().String(flag, "", "new "+display.Label(field))
	}
	rootCmd.AddCommand(editCmd)
}
