package domain

import (
	"context"
	"strings"
)

// Editable profile field names, as used by the edit form and the profile endpoint.
const (
	FieldUsername  = "username"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
)

// EditableFields lists the profile fields in the order the form shows them.
var EditableFields = []string{FieldUsername, FieldFirstName, FieldLastName, FieldEmail}

// VerifiedNo is the value of User.Verified for an account whose email is not verified.
const VerifiedNo = "no"

// User is the account record shown on the dashboard.
// Every field is optional; an empty string means the value is absent.
type User struct {
	ID        string  `json:"id,omitempty"`
	Username  string  `json:"username,omitempty"`
	FirstName string  `json:"first_name,omitempty"`
	LastName  string  `json:"last_name,omitempty"`
	Email     string  `json:"email,omitempty"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
	State     string  `json:"state,omitempty"`
	Zip       string  `json:"zip,omitempty"`
	Country   string  `json:"country,omitempty"`
	Verified  string  `json:"verified,omitempty"`
	Avatar    *Avatar `json:"avatar,omitempty"`
}

// Clone returns a deep copy so that cached, displayed and form copies never share state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Avatar = u.Avatar.Clone()
	return &c
}

// DisplayName picks the heading shown next to the avatar.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return "User"
	case u.Username != "":
		return u.Username
	case u.FirstName != "":
		return u.FirstName
	default:
		return "User"
	}
}

// IsUnverified reports whether the account still needs email verification.
func (u *User) IsUnverified() bool {
	return u != nil && u.Verified == VerifiedNo
}

// Profile returns the editable subset of the record.
func (u *User) Profile() ProfileUpdate {
	if u == nil {
		return ProfileUpdate{}
	}
	return ProfileUpdate{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// ApplyProfile overwrites the editable fields with the values in p.
func (u *User) ApplyProfile(p ProfileUpdate) {
	u.Username = p.Username
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Email = p.Email
}

// ProfileUpdate carries the editable profile fields. It is the JSON body of
// POST /api/account/profile.
type ProfileUpdate struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Field returns the value of the named editable field.
func (p ProfileUpdate) Field(name string) (string, error) {
	switch name {
	case FieldUsername:
		return p.Username, nil
	case FieldFirstName:
		return p.FirstName, nil
	case FieldLastName:
		return p.LastName, nil
	case FieldEmail:
		return p.Email, nil
	}
	return "", ErrFieldNotEditable
}

// Set assigns the named editable field. Names outside EditableFields return ErrFieldNotEditable.
func (p *ProfileUpdate) Set(name, value string) error {
	switch name {
	case FieldUsername:
		p.Username = value
	case FieldFirstName:
		p.FirstName = value
	case FieldLastName:
		p.LastName = value
	case FieldEmail:
		p.Email = value
	default:
		return ErrFieldNotEditable
	}
	return nil
}

// Normalize trims surrounding whitespace and lower-cases the email address.
func (p ProfileUpdate) Normalize() ProfileUpdate {
	return ProfileUpdate{
		Username:  strings.TrimSpace(p.Username),
		FirstName: strings.TrimSpace(p.FirstName),
		LastName:  strings.TrimSpace(p.LastName),
		Email:     strings.ToLower(strings.TrimSpace(p.Email)),
	}
}

// UserKey returns the record key of a "table:key" user ID, or the ID itself
// when it carries no table prefix.
func UserKey(id string) string {
	if _, key, ok := strings.Cut(id, ":"); ok {
		return key
	}
	return id
}

// UserRepository defines the contract for user data storage operations.
// It lives in the domain because it's a requirement OF the domain, not
// of the database implementation.
type UserRepository interface {
	// Create stores a new user with a hashed copy of password.
	Create(ctx context.Context, user *User, password string) (*User, error)
	// Authenticate returns the user whose email and password match, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// UpdateProfile writes the editable fields. It returns ErrEmailTaken when the
	// address belongs to another account.
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*User, error)
	SetAvatar(ctx context.Context, id string, avatarURL string) (*User, error)
}
