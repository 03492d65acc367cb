package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfrund/accountdash/internal/dashboard"
	"github.com/spf13/cobra"
)

var avatarCmd = &cobra.Command{
	Use:   "avatar <image>",
	Short: "Upload a new avatar (PNG or JPEG)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return err
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

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := ed.UploadAvatar(ctx, filepath.Base(path), mtype.String(), f); err != nil {
			return errors.New(dashboard.Message(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Avatar updated: %s\n", ed.View().AvatarSrc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(avatarCmd)
}
