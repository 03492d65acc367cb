package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/middleware"
	"github.com/nfrund/accountdash/internal/view"
	"github.com/nfrund/accountdash/internal/view/dto/auth"
	"github.com/nfrund/accountdash/web/src/templates/layouts"
	"github.com/nfrund/accountdash/web/src/templates/pages"
)

const defaultLandingPath = "/dashboard/account"

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	users domain.UserRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository) *AuthHandler {
	return &AuthHandler{users: users}
}

// LoginGet renders the login page (GET /auth/login).
func (h *AuthHandler) LoginGet(c echo.Context) error {
	data := auth.LoginData{
		Email: view.GetFormEmail(c),
		Next:  safeNext(c.QueryParam("next")),
	}
	flashes := view.GetFlashData(c)
	return c.Render(http.StatusOK, "", layouts.Base("Sign in", flashes, pages.Login(data)))
}

// LoginPost signs a user in. JSON clients get 204 or 401; form posts are redirected.
func (h *AuthHandler) LoginPost(c echo.Context) error {
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)
	wantsJSON := isJSONRequest(c)

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		if wantsJSON {
			return jsonError(c, http.StatusBadRequest, "Invalid request body.")
		}
		view.SetFlashError(c, "Invalid request.")
		return c.Redirect(http.StatusSeeOther, "/auth/login")
	}
	if err := c.Validate(&req); err != nil {
		return h.loginFailed(c, req, http.StatusBadRequest, validationMessage(err))
	}

	user, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		logger.Warn("Failed login attempt", "email", req.Email)
		return h.loginFailed(c, req, http.StatusUnauthorized, "Invalid email or password.")
	}
	if err != nil {
		logger.Error("Login failed", "error", err)
		return h.loginFailed(c, req, http.StatusInternalServerError, "Could not sign you in. Please try again.")
	}

	if err := middleware.SetSessionUser(c, user.ID); err != nil {
		logger.Error("Failed to save session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Could not start a session.")
	}
	logger.Info("User signed in", "user_id", user.ID)

	if wantsJSON {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, landingPath(req.Next))
}

func (h *AuthHandler) loginFailed(c echo.Context, req LoginRequest, status int, message string) error {
	if isJSONRequest(c) {
		return jsonError(c, status, message)
	}
	view.SetFlashError(c, message)
	view.SetFormEmail(c, req.Email)
	target := "/auth/login"
	if next := safeNext(req.Next); next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// Logout ends the session. Clearing any client-side copy of the user is the caller's job.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := middleware.ClearSession(c); err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to clear session", "error", err)
	}
	if isJSONRequest(c) {
		return c.NoContent(http.StatusNoContent)
	}
	view.SetFlashSuccess(c, "You have been signed out.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

func isJSONRequest(c echo.Context) bool {
	req := c.Request()
	return strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) ||
		strings.Contains(req.Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// safeNext only allows local paths, so the login form cannot redirect off-site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	return next
}

func landingPath(next string) string {
	if next = safeNext(next); next != "" {
		return next
	}
	return defaultLandingPath
}
