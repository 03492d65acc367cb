package accounts

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/accountdash/internal/database"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/pubsub"
	"github.com/nfrund/accountdash/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}
)

// recordingPublisher implements pubsub.Publisher for testing.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.messages))
	for i, m := range p.messages {
		out[i] = m.Topic
	}
	return out
}

type fixture struct {
	svc   *Service
	repo  *database.MemoryUserStore
	fs    afero.Fs
	pub   *recordingPublisher
	cache *UserCache
	user  *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := database.NewMemoryUserStore()
	user, err := repo.Create(context.Background(), &domain.User{
		Email:    "ada@example.com",
		Username: "ada",
		City:     "London",
	}, "password123")
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	pub := &recordingPublisher{}
	cache := NewUserCache(repo)
	svc := NewService(repo, cache, storage.NewAferoStore(fs), pub, Options{
		MaxAvatarBytes: 1024,
		AllowedTypes:   domain.AcceptedImageTypes,
	})
	return &fixture{svc: svc, repo: repo, fs: fs, pub: pub, cache: cache, user: user}
}

func png(size int) io.Reader {
	return io.MultiReader(bytes.NewReader(pngHeader), bytes.NewReader(make([]byte, size)))
}

func TestSessionUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.SessionUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, 1, f.cache.Len())

	_, err = f.svc.SessionUser(ctx, "user:missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SessionUser(ctx, f.user.ID)
	require.NoError(t, err)

	u, err := f.svc.UpdateProfile(ctx, f.user.ID, domain.ProfileUpdate{Username: "ada.l", Email: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)
	assert.Equal(t, []string{ProfileUpdated.Name()}, f.pub.topics())

	fresh, err := f.svc.SessionUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada.l", fresh.Username, "cache is invalidated on write")
	assert.Equal(t, "London", fresh.City)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Create(context.Background(), &domain.User{Email: "other@example.com"}, "password123")
	require.NoError(t, err)

	_, err = f.svc.UpdateProfile(context.Background(), f.user.ID, domain.ProfileUpdate{Email: "other@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Empty(t, f.pub.topics())
}

func TestUploadAvatar_StoresAndServes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	url, err := f.svc.UploadAvatar(ctx, f.user.ID, "image/png", png(100))
	require.NoError(t, err)

	key := domain.UserKey(f.user.ID)
	assert.True(t, strings.HasPrefix(url, AvatarURLPrefix+key+"/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	u, err := f.svc.SessionUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, url, u.Avatar.URL)
	assert.Equal(t, []string{AvatarUpdated.Name()}, f.pub.topics())

	name := url[strings.LastIndex(url, "/")+1:]
	rc, ct, err := f.svc.OpenAvatar(ctx, key, name)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "image/png", ct)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Len(t, data, len(pngHeader)+100)
}

func TestUploadAvatar_ReplacesPreviousFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := domain.UserKey(f.user.ID)

	first, err := f.svc.UploadAvatar(ctx, f.user.ID, "image/png", png(10))
	require.NoError(t, err)
	second, err := f.svc.UploadAvatar(ctx, f.user.ID, "image/jpg", io.MultiReader(bytes.NewReader(jpegHeader), bytes.NewReader(make([]byte, 10))))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second, ".jpg"))

	files, err := afero.ReadDir(f.fs, "avatars/"+key)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, second[strings.LastIndex(second, "/")+1:], files[0].Name())

	_, _, err = f.svc.OpenAvatar(ctx, key, first[strings.LastIndex(first, "/")+1:])
	assert.Error(t, err)
}

func TestUploadAvatar_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        io.Reader
		wantErr     error
	}{
		{"gif not allowed", "image/gif", strings.NewReader("GIF89a"), domain.ErrUnsupportedMediaType},
		{"declared png but jpeg content", "image/png", bytes.NewReader(jpegHeader), domain.ErrUnsupportedMediaType},
		{"declared png but text content", "image/png", strings.NewReader("hello world"), domain.ErrUnsupportedMediaType},
		{"empty file", "image/png", strings.NewReader(""), domain.ErrInvalidAvatar},
		{"too large", "image/png", png(2048), domain.ErrAvatarTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.UploadAvatar(context.Background(), f.user.ID, tt.contentType, tt.body)
			require.ErrorIs(t, err, tt.wantErr)

			u, err := f.repo.FindByID(context.Background(), f.user.ID)
			require.NoError(t, err)
			assert.Nil(t, u.Avatar)
			assert.Empty(t, f.pub.topics())

			exists, _ := afero.DirExists(f.fs, "avatars/"+domain.UserKey(f.user.ID))
			if exists {
				files, err := afero.ReadDir(f.fs, "avatars/"+domain.UserKey(f.user.ID))
				require.NoError(t, err)
				assert.Empty(t, files, "rejected uploads leave no file behind")
			}
		})
	}
}

func TestOpenAvatar_BadNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.OpenAvatar(ctx, "..", "x.png")
	assert.Error(t, err)
	_, _, err = f.svc.OpenAvatar(ctx, "abc", "../../etc/passwd")
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
	_, _, err = f.svc.OpenAvatar(ctx, "abc", "notes.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserCache_InvalidatedByEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := database.NewMemoryUserStore()
	user, err := repo.Create(ctx, &domain.User{Email: "ada@example.com", Username: "ada"}, "password123")
	require.NoError(t, err)

	bridge := pubsub.NewWatermillBridge(nil)
	defer bridge.Close()

	cache := NewUserCache(repo)
	require.NoError(t, cache.Listen(ctx, bridge))

	_, err = cache.Get(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	require.NoError(t, pubsub.Publish(ctx, bridge, ProfileUpdated, user.ID, ProfileUpdatedEvent{Email: "x@y.z"}))
	require.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)

	_, err = cache.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, pubsub.Publish(ctx, bridge, AvatarUpdated, user.ID, AvatarUpdatedEvent{URL: "/x.png"}))
	require.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestUserCache_ReturnsCopies(t *testing.T) {
	repo := database.NewMemoryUserStore()
	ctx := context.Background()
	user, err := repo.Create(ctx, &domain.User{Email: "ada@example.com"}, "password123")
	require.NoError(t, err)

	cache := NewUserCache(repo)
	a, err := cache.Get(ctx, user.ID)
	require.NoError(t, err)
	a.Email = "changed@example.com"

	b, err := cache.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", b.Email)
}

// gatedRepo blocks FindByID until release is closed.
type gatedRepo struct {
	*database.MemoryUserStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *gatedRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := r.MemoryUserStore.FindByID(ctx, id)
	r.once.Do(func() {
		close(r.started)
		<-r.release
	})
	return u, err
}

func TestUserCache_InvalidateDuringLoadDropsStaleRecord(t *testing.T) {
	ctx := context.Background()
	mem := database.NewMemoryUserStore()
	user, err := mem.Create(ctx, &domain.User{Email: "old@example.com", Username: "ada"}, "password123")
	require.NoError(t, err)

	repo := &gatedRepo{MemoryUserStore: mem, started: make(chan struct{}), release: make(chan struct{})}
	cache := NewUserCache(repo)

	loaded := make(chan *domain.User, 1)
	go func() {
		u, err := cache.Get(ctx, user.ID)
		assert.NoError(t, err)
		loaded <- u
	}()
	<-repo.started

	_, err = mem.UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Username: "ada", Email: "new@example.com"})
	require.NoError(t, err)
	cache.Invalidate(user.ID)
	close(repo.release)

	assert.Equal(t, "old@example.com", (<-loaded).Email)
	assert.Equal(t, 0, cache.Len(), "stale read is not cached")

	u, err := cache.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
}
