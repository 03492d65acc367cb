package handlers

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/middleware"
	"github.com/nfrund/accountdash/internal/storage"
)

const avatarFormField = "avatar"

// AccountService is what the account handlers need from accounts.Service.
type AccountService interface {
	SessionUser(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (*domain.User, error)
	UploadAvatar(ctx context.Context, userID, contentType string, content io.Reader) (string, error)
	OpenAvatar(ctx context.Context, userKey, name string) (io.ReadCloser, string, error)
}

// AccountHandler serves the JSON account API.
type AccountHandler struct {
	svc AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(svc AccountService) *AccountHandler {
	return &AccountHandler{svc: svc}
}

// SessionUser handles GET /api/session/user.
func (h *AccountHandler) SessionUser(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "Authentication required.")
	}
	return c.JSON(http.StatusOK, SessionUserResponse{User: user})
}

// UploadAvatar handles POST /api/account/avatar (multipart, field "avatar").
func (h *AccountHandler) UploadAvatar(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "Authentication required.")
	}

	url, status, msg := storeAvatar(c, h.svc, user.ID)
	if status != http.StatusOK {
		return jsonError(c, status, msg)
	}
	return c.JSON(http.StatusOK, AvatarResponse{Avatar: url})
}

// GetAvatar handles GET /api/account/avatar/:user/:name.
func (h *AccountHandler) GetAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	rc, contentType, err := h.svc.OpenAvatar(ctx, c.Param("user"), c.Param("name"))
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, domain.ErrNotFound), errors.Is(err, storage.ErrInvalidPath):
		return jsonError(c, http.StatusNotFound, "Avatar not found.")
	case err != nil:
		middleware.FromContext(ctx).Error("Failed to open avatar", "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to load avatar.")
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "private, max-age=86400, immutable")
	return c.Stream(http.StatusOK, contentType, rc)
}

// UpdateProfile handles POST /api/account/profile.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "Authentication required.")
	}

	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return jsonError(c, http.StatusBadRequest, validationMessage(err))
	}

	_, err := h.svc.UpdateProfile(ctx, user.ID, req.ToDomain())
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return jsonError(c, http.StatusConflict, "That email address is already in use.")
	case err != nil:
		middleware.FromContext(ctx).Error("Failed to update profile", "error", err)
		return jsonError(c, http.StatusInternalServerError, "Failed to save changes.")
	}
	return c.NoContent(http.StatusNoContent)
}

// storeAvatar reads the uploaded file and hands it to the service. It returns
// the avatar URL with 200, or an HTTP status and message describing the failure.
func storeAvatar(c echo.Context, svc AccountService, userID string) (string, int, string) {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	fh, err := c.FormFile(avatarFormField)
	if err != nil {
		return "", http.StatusBadRequest, "No avatar file was provided."
	}
	f, err := fh.Open()
	if err != nil {
		logger.Error("Failed to open uploaded avatar", "error", err)
		return "", http.StatusBadRequest, "Could not read the uploaded file."
	}
	defer f.Close()

	url, err := svc.UploadAvatar(ctx, userID, fh.Header.Get(echo.HeaderContentType), f)
	switch {
	case err == nil:
		logger.Info("Avatar updated", "size", fh.Size)
		return url, http.StatusOK, ""
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return "", http.StatusUnsupportedMediaType, "Only PNG and JPG images are allowed."
	case errors.Is(err, domain.ErrAvatarTooLarge):
		return "", http.StatusRequestEntityTooLarge, "The image is too large."
	case errors.Is(err, domain.ErrInvalidAvatar):
		return "", http.StatusBadRequest, "The uploaded file is not a valid image."
	default:
		logger.Error("Failed to store avatar", "error", err)
		return "", http.StatusInternalServerError, "Failed to upload avatar."
	}
}
