package account

import "github.com/nfrund/accountdash/internal/domain"

// Data is the View Model (DTO) for the account page. Both the server-rendered
// cards and the terminal client render from it.
type Data struct {
	Loaded       bool
	DisplayName  string
	AvatarSrc    string
	Unverified   bool
	Editing      bool
	Saving       bool
	Form         domain.ProfileUpdate
	ProfileError string

	// Read-only fields.
	Email   string
	Address string
	City    string
	State   string
	Zip     string
	Country string
}

// Loading is the placeholder shown until the user record arrives.
var Loading = Data{}

// New builds the view model for user. The form is only meaningful while editing.
func New(user *domain.User, editing bool, form domain.ProfileUpdate, profileError string) Data {
	if user == nil {
		return Loading
	}
	d := Data{
		Loaded:       true,
		DisplayName:  user.DisplayName(),
		Unverified:   user.IsUnverified(),
		Editing:      editing,
		Form:         user.Profile(),
		ProfileError: profileError,
		Email:        user.Email,
		Address:      user.Address,
		City:         user.City,
		State:        user.State,
		Zip:          user.Zip,
		Country:      user.Country,
	}
	if user.Avatar != nil {
		d.AvatarSrc = user.Avatar.Src()
	}
	if editing {
		d.Form = form
	}
	return d
}
