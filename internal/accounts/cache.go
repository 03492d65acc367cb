package accounts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/pubsub"
	"golang.org/x/sync/singleflight"
)

// UserCache memoises repository reads by user ID. Entries are dropped when an
// account event for the user arrives.
type UserCache struct {
	repo  domain.UserRepository
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]*domain.User
	// gens is bumped by Invalidate. A load only fills the cache if the
	// generation it started under is still current.
	gens map[string]uint64
}

// NewUserCache creates an empty cache in front of repo.
func NewUserCache(repo domain.UserRepository) *UserCache {
	return &UserCache{
		repo:    repo,
		entries: make(map[string]*domain.User),
		gens:    make(map[string]uint64),
	}
}

// Get returns a copy of the user, loading it on a miss.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	c.mu.RLock()
	u, ok := c.entries[id]
	c.mu.RUnlock()
	if ok {
		return u.Clone(), nil
	}

	v, err, _ := c.group.Do(id, func() (any, error) {
		c.mu.RLock()
		gen := c.gens[id]
		c.mu.RUnlock()

		u, err := c.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[id] == gen {
			c.entries[id] = u
		}
		c.mu.Unlock()
		return u, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.User).Clone(), nil
}

// Invalidate drops the entry for id. A load already in flight for id will not
// store its result, and later reads start a fresh load.
func (c *UserCache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.gens[id]++
	c.mu.Unlock()
	c.group.Forget(id)
}

// Len returns the number of cached users.
func (c *UserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Listen subscribes the cache to account events until ctx is done.
func (c *UserCache) Listen(ctx context.Context, sub pubsub.Subscriber) error {
	if err := pubsub.Subscribe(ctx, sub, ProfileUpdated, func(ctx context.Context, userID string, _ ProfileUpdatedEvent) error {
		c.Invalidate(userID)
		slog.DebugContext(ctx, "user cache invalidated", "user_id", userID, "reason", ProfileUpdated.Name())
		return nil
	}); err != nil {
		return err
	}
	return pubsub.Subscribe(ctx, sub, AvatarUpdated, func(ctx context.Context, userID string, _ AvatarUpdatedEvent) error {
		c.Invalidate(userID)
		slog.DebugContext(ctx, "user cache invalidated", "user_id", userID, "reason", AvatarUpdated.Name())
		return nil
	})
}
