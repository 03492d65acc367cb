package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/domain"
)

const (
	// SessionName is the cookie session that carries the signed-in user.
	SessionName = "account-session"
	// UserContextKey holds the *domain.User of an authenticated request.
	UserContextKey = "user"

	sessionUserKey = "user_id"
	loginPath      = "/auth/login"
)

// UserFinder resolves the user ID stored in the session.
type UserFinder interface {
	SessionUser(ctx context.Context, userID string) (*domain.User, error)
}

// SetSessionUser marks the session as signed in as userID.
func SetSessionUser(c echo.Context, userID string) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Values[sessionUserKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// ClearSession signs the session out and expires the cookie.
func ClearSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// SessionUserID returns the user ID stored in the session, or "".
func SessionUserID(c echo.Context) string {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[sessionUserKey].(string)
	return id
}

// CurrentUser returns the user placed on the context by Auth.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(UserContextKey).(*domain.User)
	return u, ok && u != nil
}

// Auth creates a middleware that protects routes that require authentication.
// API requests get a 401 JSON response, htmx requests an HX-Redirect, and
// page requests a redirect to the login page.
func Auth(users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			userID := SessionUserID(c)
			if userID == "" {
				return unauthenticated(c)
			}

			user, err := users.SessionUser(ctx, userID)
			if errors.Is(err, domain.ErrNotFound) {
				// The account is gone; drop the stale session.
				FromContext(ctx).Warn("session refers to missing user", "user_id", userID)
				_ = ClearSession(c)
				return unauthenticated(c)
			}
			if err != nil {
				FromContext(ctx).Error("failed to load session user", "user_id", userID, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load account.")
			}

			c.Set(UserContextKey, user)
			c.SetRequest(c.Request().WithContext(WithLogger(ctx, FromContext(ctx).With("user_id", userID))))
			return next(c)
		}
	}
}

func unauthenticated(c echo.Context) error {
	req := c.Request()
	switch {
	case strings.HasPrefix(req.URL.Path, "/api/"):
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"code":    http.StatusUnauthorized,
			"message": "Authentication required.",
		})
	case req.Header.Get("HX-Request") == "true":
		c.Response().Header().Set("HX-Redirect", loginPath)
		return c.NoContent(http.StatusUnauthorized)
	}

	target := loginPath
	if req.Method == http.MethodGet {
		target += "?next=" + url.QueryEscape(req.URL.RequestURI())
	}
	return c.Redirect(http.StatusSeeOther, target)
}
