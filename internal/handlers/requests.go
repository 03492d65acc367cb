package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nfrund/accountdash/internal/domain"
)

// CustomValidator wraps the go-playground/validator library to implement Echo's Validator interface.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new CustomValidator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements the echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// LoginRequest is the sign-in body, sent as a form or as JSON.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Next     string `json:"-" form:"next"`
}

// ProfileUpdateRequest is the DTO for saving the editable profile fields.
type ProfileUpdateRequest struct {
	Username  string `json:"username" form:"username" validate:"max=64"`
	FirstName string `json:"first_name" form:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" form:"last_name" validate:"max=100"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
}

// ToDomain converts the request into a normalised domain.ProfileUpdate.
func (r ProfileUpdateRequest) ToDomain() domain.ProfileUpdate {
	return domain.ProfileUpdate{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
	}.Normalize()
}

var fieldLabels = map[string]string{
	"Username":  "Username",
	"FirstName": "First name",
	"LastName":  "Last name",
	"Email":     "Email",
	"Password":  "Password",
}

// validationMessage turns the first validator error into a sentence for the user.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request."
	}
	fe := verrs[0]
	label := fieldLabels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return label + " must be a valid email address."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	}
	return label + " is invalid: " + strings.ToLower(fe.Tag()) + "."
}
