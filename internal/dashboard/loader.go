package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/session"
	"golang.org/x/sync/singleflight"
)

const sessionUserKey = "session-user"

// Loader returns the signed-in user, from the session store when it is there
// and otherwise from one request to the session endpoint.
type Loader struct {
	api    API
	store  session.Store
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(api API, store session.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{api: api, store: store, logger: logger}
}

// Load returns a copy of the user record. Concurrent calls share one request.
// The shared request is not canceled with any one caller; a caller whose ctx
// ends stops waiting and gets ctx.Err().
// There is no retry; on failure the caller keeps showing the loading state.
func (l *Loader) Load(ctx context.Context) (*domain.User, error) {
	ch := l.group.DoChan(sessionUserKey, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx))
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if res.Err != nil {
		l.logger.ErrorContext(ctx, "failed to load session user", "error", res.Err)
		return nil, res.Err
	}
	return res.Val.(*domain.User).Clone(), nil
}

func (l *Loader) fetch(ctx context.Context) (*domain.User, error) {
	cached, err := l.store.Get(ctx)
	if err != nil {
		l.logger.WarnContext(ctx, "session store read failed, fetching user", "error", err)
	}
	if cached != nil {
		return cached, nil
	}

	user, err := l.api.SessionUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch session user: %w", err)
	}
	if err := l.store.Set(ctx, user); err != nil {
		l.logger.WarnContext(ctx, "failed to cache session user", "error", err)
	}
	return user, nil
}
