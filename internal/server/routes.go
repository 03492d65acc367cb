package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/accountdash/internal/middleware"
	"github.com/nfrund/accountdash/web"
)

// mutationsPerSecond bounds sign-in attempts and account writes per client.
const mutationsPerSecond = 5

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter(mutationsPerSecond)
	requireAuth := middleware.Auth(s.accounts)

	s.E.StaticFS("/static", echo.MustSubFS(web.FS, "static"))

	s.E.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard/account")
	})

	auth := s.E.Group("/auth")
	auth.GET("/login", s.authHandler.LoginGet)
	auth.POST("/login", s.authHandler.LoginPost, rateLimiter)
	auth.POST("/logout", s.authHandler.Logout)

	api := s.E.Group("/api", requireAuth)
	api.GET("/session/user", s.accountHandler.SessionUser)
	api.POST("/account/avatar", s.accountHandler.UploadAvatar, rateLimiter)
	api.GET("/account/avatar/:user/:name", s.accountHandler.GetAvatar)
	api.POST("/account/profile", s.accountHandler.UpdateProfile, rateLimiter)

	dash := s.E.Group("/dashboard", requireAuth)
	dash.GET("/account", s.dashboardHandler.Page)
	dash.GET("/account/card", s.dashboardHandler.Cards)
	dash.POST("/account/profile", s.dashboardHandler.SaveProfile, rateLimiter)
	dash.POST("/account/avatar", s.dashboardHandler.UploadAvatar, rateLimiter)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
