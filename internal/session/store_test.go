package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *domain.User {
	return &domain.User{
		ID:       "user:abc",
		Username: "ada",
		Email:    "ada@example.com",
		Verified: domain.VerifiedNo,
		Avatar:   domain.AvatarFromURL("/a.png"),
	}
}

func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "fresh store should miss")

	u := testUser()
	require.NoError(t, s.Set(ctx, u))

	got, err = s.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u, got)

	// The stored copy is independent of the caller's.
	u.Username = "changed"
	got.Email = "changed@example.com"
	again, err := s.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", again.Username)
	assert.Equal(t, "ada@example.com", again.Email)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())

	s := NewRedisStore(rdb, uuid.NewString(), time.Minute)
	t.Cleanup(func() { s.Clear(context.Background()) })
	runStoreContract(t, s)
}

func TestRedisStore_KeyIsScoped(t *testing.T) {
	s := NewRedisStore(nil, "abc", 0)
	assert.Equal(t, "dashboard:session:abc", s.key)
	assert.Equal(t, defaultTTL, s.ttl)
}
