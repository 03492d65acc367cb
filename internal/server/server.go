package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/accountdash/internal/accounts"
	"github.com/nfrund/accountdash/internal/config"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/handlers"
	appmiddleware "github.com/nfrund/accountdash/internal/middleware"
	"github.com/nfrund/accountdash/internal/pubsub"
	"github.com/nfrund/accountdash/internal/rendering"
	"github.com/nfrund/accountdash/internal/storage"
)

const sessionMaxAge = 86400 * 7 // 7 days

// Dependencies holds everything the server needs. Echo and Renderer are optional.
type Dependencies struct {
	Config     config.Provider
	Users      domain.UserRepository
	Files      storage.Store
	Publisher  pubsub.Publisher
	Subscriber pubsub.Subscriber
	Renderer   echo.Renderer
	Echo       *echo.Echo
}

func (d Dependencies) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("server: config is required")
	case d.Users == nil:
		return errors.New("server: user repository is required")
	case d.Files == nil:
		return errors.New("server: file store is required")
	case d.Publisher == nil || d.Subscriber == nil:
		return errors.New("server: publisher and subscriber are required")
	}
	return nil
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E   *echo.Echo
	Cfg config.Provider

	users      domain.UserRepository
	cache      *accounts.UserCache
	accounts   *accounts.Service
	subscriber pubsub.Subscriber

	authHandler      *handlers.AuthHandler
	accountHandler   *handlers.AccountHandler
	dashboardHandler *handlers.DashboardHandler

	closers []func(context.Context) error
}

// New creates a new Server instance and installs the middleware chain.
// Call RegisterRoutes before serving.
func New(deps Dependencies) (*Server, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	cfg := deps.Config

	e := deps.Echo
	if e == nil {
		e = echo.New()
	}
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	if deps.Renderer != nil {
		e.Renderer = deps.Renderer
	} else {
		e.Renderer = rendering.NewUniversalRenderer()
	}
	setupErrorHandling(e)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit(cfg.GetAvatarMaxBytes())))

	store := sessions.NewCookieStore([]byte(cfg.GetSessionSecret()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   strings.HasPrefix(cfg.GetAppBaseURL(), "https://"),
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	cache := accounts.NewUserCache(deps.Users)
	svc := accounts.NewService(deps.Users, cache, deps.Files, deps.Publisher, accounts.Options{
		MaxAvatarBytes: cfg.GetAvatarMaxBytes(),
		AllowedTypes:   cfg.GetAvatarAllowedTypes(),
	})

	return &Server{
		E:                e,
		Cfg:              cfg,
		users:            deps.Users,
		cache:            cache,
		accounts:         svc,
		subscriber:       deps.Subscriber,
		authHandler:      handlers.NewAuthHandler(deps.Users),
		accountHandler:   handlers.NewAccountHandler(svc),
		dashboardHandler: handlers.NewDashboardHandler(svc),
	}, nil
}

// UserStore is a getter for the server's user store, useful for testing.
func (s *Server) UserStore() domain.UserRepository {
	return s.users
}

// UserCache is a getter for the server-side user cache, useful for testing.
func (s *Server) UserCache() *accounts.UserCache {
	return s.cache
}

// Listen subscribes the user cache to account events until ctx is done.
func (s *Server) Listen(ctx context.Context) error {
	if err := s.cache.Listen(ctx, s.subscriber); err != nil {
		return fmt.Errorf("subscribe user cache: %w", err)
	}
	return nil
}

// OnShutdown registers fn to run when the server shuts down. Functions run in
// reverse registration order.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// setupErrorHandling logs unhandled errors with a stack trace before handing
// them to echo's default handler. HTTP errors pass straight through.
func setupErrorHandling(e *echo.Echo) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			appmiddleware.FromContext(c.Request().Context()).Error("Internal Server Error (Unhandled)",
				"error", err,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"stack_trace", string(debug.Stack()),
			)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			appmiddleware.FromContext(c.Request().Context()).LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}
}

// bodyLimit leaves 1 MiB of headroom for multipart framing on top of the
// avatar limit. The service enforces the exact avatar size.
func bodyLimit(avatarMax int64) string {
	return fmt.Sprintf("%dK", (avatarMax+1<<20+1023)/1024)
}
