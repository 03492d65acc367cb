// Package dashboard implements the account page state: loading the session
// user, uploading an avatar, and editing the profile with optimistic updates.
package dashboard

import (
	"context"
	"errors"
	"io"

	"github.com/nfrund/accountdash/internal/domain"
)

// API is the subset of the account API the dashboard needs. *client.Client satisfies it.
type API interface {
	SessionUser(ctx context.Context) (*domain.User, error)
	UploadAvatar(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	SaveProfile(ctx context.Context, p domain.ProfileUpdate) error
}

var (
	ErrNotLoaded        = errors.New("dashboard: user not loaded")
	ErrNotEditing       = errors.New("dashboard: not in edit mode")
	ErrUnsupportedImage = errors.New("dashboard: unsupported image type")
	ErrAvatarUpload     = errors.New("dashboard: avatar upload failed")
	ErrProfileSave      = errors.New("dashboard: profile save failed")
)

// Messages shown to the user.
const (
	MsgUnsupportedImage = "Only PNG and JPG images are allowed."
	MsgAvatarUpload     = "Failed to upload avatar."
	MsgProfileSave      = "Failed to save changes. Please try again."
	MsgLoading          = "Loading account info..."
)

// Message returns the text to show the user for err, or "" when there is none.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedImage):
		return MsgUnsupportedImage
	case errors.Is(err, ErrAvatarUpload):
		return MsgAvatarUpload
	case errors.Is(err, ErrProfileSave):
		return MsgProfileSave
	}
	return err.Error()
}
