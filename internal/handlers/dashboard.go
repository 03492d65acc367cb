package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/dashboard"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/middleware"
	"github.com/nfrund/accountdash/internal/view"
	"github.com/nfrund/accountdash/internal/view/dto/account"
	"github.com/nfrund/accountdash/web/src/templates/layouts"
	"github.com/nfrund/accountdash/web/src/templates/pages"
)

// DashboardHandler serves the htmx account page.
type DashboardHandler struct {
	svc AccountService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc AccountService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Page renders the account page shell (GET /dashboard/account). The cards load
// in a follow-up request.
func (h *DashboardHandler) Page(c echo.Context) error {
	flashes := view.GetFlashData(c)
	return c.Render(http.StatusOK, "", layouts.Base("Account", flashes, pages.Account()))
}

// Cards renders the account cards (GET /dashboard/account/card[?edit=1]).
func (h *DashboardHandler) Cards(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}
	editing := c.QueryParam("edit") == "1"
	return h.renderCards(c, http.StatusOK, account.New(user, editing, user.Profile(), ""), "")
}

// SaveProfile handles the edit form (POST /dashboard/account/profile). On
// failure the form is shown again with the submitted values and an error.
func (h *DashboardHandler) SaveProfile(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return h.renderCards(c, http.StatusOK, account.New(user, true, user.Profile(), dashboard.MsgProfileSave), "")
	}
	form := domain.ProfileUpdate{Username: req.Username, FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
	if err := c.Validate(&req); err != nil {
		return h.renderCards(c, http.StatusOK, account.New(user, true, form, validationMessage(err)), "")
	}

	updated, err := h.svc.UpdateProfile(ctx, user.ID, req.ToDomain())
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		return h.renderCards(c, http.StatusOK, account.New(user, true, form, "That email address is already in use."), "")
	case err != nil:
		middleware.FromContext(ctx).Error("Failed to update profile", "error", err)
		return h.renderCards(c, http.StatusOK, account.New(user, true, form, dashboard.MsgProfileSave), "")
	}
	return h.renderCards(c, http.StatusOK, account.New(updated, false, updated.Profile(), ""), "")
}

// UploadAvatar handles the avatar control (POST /dashboard/account/avatar).
func (h *DashboardHandler) UploadAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.ErrUnauthorized
	}

	_, status, msg := storeAvatar(c, h.svc, user.ID)
	if status != http.StatusOK {
		return h.renderCards(c, http.StatusOK, account.New(user, false, user.Profile(), ""), msg)
	}

	fresh, err := h.svc.SessionUser(ctx, user.ID)
	if err != nil {
		middleware.FromContext(ctx).Error("Failed to reload user after avatar upload", "error", err)
		return h.renderCards(c, http.StatusOK, account.New(user, false, user.Profile(), ""), dashboard.MsgAvatarUpload)
	}
	return h.renderCards(c, http.StatusOK, account.New(fresh, false, fresh.Profile(), ""), "")
}

func (h *DashboardHandler) renderCards(c echo.Context, status int, d account.Data, avatarError string) error {
	return c.Render(status, "", pages.AccountCards(d, avatarError))
}
