package domain

import "errors"

// Sentinel errors for the domain layer. These provide consistent, checkable
// errors for common business logic failures.
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrEmailTaken           = errors.New("email address is already used by another account")
	ErrInvalidCredentials   = errors.New("invalid credentials provided")
	ErrNotFound             = errors.New("requested resource not found")
	ErrFieldNotEditable     = errors.New("field is not editable")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrAvatarTooLarge       = errors.New("avatar exceeds the size limit")
	ErrInvalidAvatar        = errors.New("invalid avatar value")
)
