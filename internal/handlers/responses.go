package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/domain"
)

// ErrorResponse is the standard format for API error responses.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SessionUserResponse is the body of GET /api/session/user.
type SessionUserResponse struct {
	User *domain.User `json:"user"`
}

// AvatarResponse is the body of a successful avatar upload.
type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{Code: status, Message: message})
}
