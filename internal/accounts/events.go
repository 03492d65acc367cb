package accounts

import "github.com/nfrund/accountdash/internal/pubsub"

// ProfileUpdatedEvent is published after the editable profile fields change.
type ProfileUpdatedEvent struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// AvatarUpdatedEvent is published after a new avatar is stored.
type AvatarUpdatedEvent struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
}

var (
	ProfileUpdated = pubsub.NewEvent[ProfileUpdatedEvent]("account.profile.updated", "Editable profile fields of an account changed")
	AvatarUpdated  = pubsub.NewEvent[AvatarUpdatedEvent]("account.avatar.updated", "An account uploaded a new avatar")
)
