package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nfrund/accountdash/internal/config"
	"github.com/nfrund/accountdash/internal/database"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/pubsub"
	"github.com/nfrund/accountdash/internal/storage"
)

// Build assembles a server from configuration: the user repository (SurrealDB
// when SURREAL_URL is set, in-memory otherwise), avatar storage on disk, the
// event bridge and tracing. Routes are registered. Shutdown releases everything.
func Build(ctx context.Context, cfg config.Provider) (*Server, error) {
	var closers []func(context.Context) error
	fail := func(err error) (*Server, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}

	users, closeUsers, err := NewUserRepository(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeUsers)

	files, err := storage.NewDiskStore(cfg.GetStorageDir())
	if err != nil {
		return fail(fmt.Errorf("open storage dir: %w", err))
	}

	tracer, shutdownTracing, err := pubsub.SetupOTel(ctx, pubsub.TracingConfigFrom(cfg))
	if err != nil {
		return fail(err)
	}
	closers = append(closers, shutdownTracing)

	bridge := pubsub.NewWatermillBridge(tracer)
	closers = append(closers, func(context.Context) error { return bridge.Close() })

	if err := seedDevUser(ctx, users, cfg); err != nil {
		return fail(err)
	}

	s, err := New(Dependencies{
		Config:     cfg,
		Users:      users,
		Files:      files,
		Publisher:  bridge,
		Subscriber: bridge,
	})
	if err != nil {
		return fail(err)
	}
	for _, c := range closers {
		s.OnShutdown(c)
	}
	s.RegisterRoutes()
	return s, nil
}

// NewUserRepository picks the user repository for cfg. The returned close
// function releases the database connection, if any.
func NewUserRepository(ctx context.Context, cfg config.Provider) (domain.UserRepository, func(context.Context) error, error) {
	if cfg.GetDBURL() == "" {
		slog.Warn("SURREAL_URL not set, using the in-memory user store")
		return database.NewMemoryUserStore(), func(context.Context) error { return nil }, nil
	}

	db, err := database.NewDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		db.Close(ctx)
		return nil, nil, err
	}
	closeDB := func(ctx context.Context) error {
		return db.Close(ctx)
	}
	return database.NewSurrealUserStore(db, cfg.GetDBQueryTimeout()), closeDB, nil
}

// seedDevUser creates the DEV_USER_EMAIL account when it is configured and
// does not exist yet.
func seedDevUser(ctx context.Context, users domain.UserRepository, cfg config.Provider) error {
	email, password := cfg.GetDevUserEmail(), cfg.GetDevUserPassword()
	if email == "" || password == "" {
		return nil
	}
	_, err := users.Create(ctx, &domain.User{
		Email:     email,
		Username:  "dev",
		FirstName: "Dev",
		LastName:  "User",
		Verified:  domain.VerifiedNo,
	}, password)
	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return nil
	case err != nil:
		return fmt.Errorf("seed dev user: %w", err)
	}
	slog.Info("Seeded development user", "email", email)
	return nil
}
