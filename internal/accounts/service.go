// Package accounts implements the server side of the account page: reading
// the session user, saving the profile and storing avatars.
package accounts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/pubsub"
	"github.com/nfrund/accountdash/internal/storage"
)

const (
	// AvatarURLPrefix is where stored avatars are served from.
	AvatarURLPrefix = "/api/account/avatar/"
	avatarDir       = "avatars"
	sniffLen        = 3072
)

var avatarExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Options configures avatar validation.
type Options struct {
	MaxAvatarBytes int64
	AllowedTypes   []string
}

// Service coordinates the user repository, avatar storage and account events.
type Service struct {
	repo    domain.UserRepository
	cache   *UserCache
	files   storage.Store
	pub     pubsub.Publisher
	maxSize int64
	allowed map[string]bool
}

// NewService creates a Service. cache may be shared with other components.
func NewService(repo domain.UserRepository, cache *UserCache, files storage.Store, pub pubsub.Publisher, opts Options) *Service {
	allowed := make(map[string]bool, len(opts.AllowedTypes))
	for _, t := range opts.AllowedTypes {
		allowed[domain.CanonicalImageType(t)] = true
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		files:   files,
		pub:     pub,
		maxSize: opts.MaxAvatarBytes,
		allowed: allowed,
	}
}

// SessionUser returns the signed-in user's record.
func (s *Service) SessionUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.cache.Get(ctx, userID)
}

// UpdateProfile saves the editable fields and announces the change.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(userID)

	s.publish(ctx, func() error {
		return pubsub.Publish(ctx, s.pub, ProfileUpdated, userID, ProfileUpdatedEvent(user.Profile()))
	})
	return user, nil
}

// UploadAvatar validates and stores an avatar image and returns its URL.
// The declared content type must be allowed and must match the sniffed content.
func (s *Service) UploadAvatar(ctx context.Context, userID, declaredType string, content io.Reader) (string, error) {
	declared := domain.CanonicalImageType(declaredType)
	if !s.allowed[declared] || avatarExtensions[declared] == "" {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedMediaType, declaredType)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", fmt.Errorf("%w: empty file", domain.ErrInvalidAvatar)
	}
	sniffed := domain.CanonicalImageType(mimetype.Detect(head).String())
	if sniffed != declared {
		return "", fmt.Errorf("%w: declared %s but content is %s", domain.ErrUnsupportedMediaType, declared, sniffed)
	}

	previous, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}

	key := domain.UserKey(userID)
	name := uuid.NewString() + avatarExtensions[declared]
	objectPath := path.Join(avatarDir, key, name)

	body := io.MultiReader(bytes.NewReader(head), content)
	written, err := s.files.Save(ctx, objectPath, io.LimitReader(body, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	if written > s.maxSize {
		s.deleteObject(ctx, objectPath)
		return "", fmt.Errorf("%w: limit is %d bytes", domain.ErrAvatarTooLarge, s.maxSize)
	}

	url := AvatarURLPrefix + key + "/" + name
	if _, err := s.repo.SetAvatar(ctx, userID, url); err != nil {
		s.deleteObject(ctx, objectPath)
		return "", err
	}
	s.cache.Invalidate(userID)

	if old, ok := avatarObjectPath(previous); ok && old != objectPath {
		s.deleteObject(ctx, old)
	}

	s.publish(ctx, func() error {
		return pubsub.Publish(ctx, s.pub, AvatarUpdated, userID, AvatarUpdatedEvent{
			URL:         url,
			ContentType: declared,
			SizeBytes:   written,
		})
	})
	return url, nil
}

// OpenAvatar opens a stored avatar. The caller closes the reader.
func (s *Service) OpenAvatar(ctx context.Context, userKey, name string) (io.ReadCloser, string, error) {
	if strings.ContainsAny(userKey, "/\\") || strings.ContainsAny(name, "/\\") {
		return nil, "", storage.ErrInvalidPath
	}
	contentType := ""
	for ct, ext := range avatarExtensions {
		if path.Ext(name) == ext {
			contentType = ct
		}
	}
	if contentType == "" {
		return nil, "", domain.ErrNotFound
	}

	rc, err := s.files.Open(ctx, path.Join(avatarDir, userKey, name))
	if err != nil {
		return nil, "", err
	}
	return rc, contentType, nil
}

// avatarObjectPath maps a served avatar URL back to its storage path.
func avatarObjectPath(u *domain.User) (string, bool) {
	if u == nil || u.Avatar == nil || u.Avatar.IsBinary() {
		return "", false
	}
	rest, ok := strings.CutPrefix(u.Avatar.URL, AvatarURLPrefix)
	if !ok || rest == "" {
		return "", false
	}
	return path.Join(avatarDir, rest), true
}

func (s *Service) deleteObject(ctx context.Context, p string) {
	if err := s.files.Delete(ctx, p); err != nil {
		slog.WarnContext(ctx, "failed to delete avatar object", "path", p, "error", err)
	}
}

// publish reports event failures without failing the request that caused them.
func (s *Service) publish(ctx context.Context, fn func() error) {
	if s.pub == nil {
		return
	}
	if err := fn(); err != nil {
		slog.ErrorContext(ctx, "failed to publish account event", "error", err)
	}
}
