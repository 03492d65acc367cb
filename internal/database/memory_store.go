package database

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/accountdash/internal/domain"
)

type memoryUser struct {
	user *domain.User
	hash string
}

// MemoryUserStore is an in-process domain.UserRepository used when no
// SurrealDB URL is configured, and by tests.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]*memoryUser
	byEmail map[string]string
}

var _ domain.UserRepository = (*MemoryUserStore)(nil)

// NewMemoryUserStore creates an empty store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]*memoryUser),
		byEmail: make(map[string]string),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(user.Email))
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return nil, domain.ErrUserAlreadyExists
	}
	stored := user.Clone()
	stored.ID = userTable + ":" + strings.ReplaceAll(uuid.NewString(), "-", "")
	stored.Email = email
	if stored.Avatar.IsBinary() {
		stored.Avatar = nil
	}
	s.byID[stored.ID] = &memoryUser{user: stored, hash: hash}
	s.byEmail[email] = stored.ID
	return stored.Clone(), nil
}

func (s *MemoryUserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	entry := s.byID[id]
	if err := checkPassword(entry.hash, password); err != nil {
		return nil, err
	}
	return entry.user.Clone(), nil
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return entry.user.Clone(), nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, nil
	}
	return s.byID[id].user.Clone(), nil
}

func (s *MemoryUserStore) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (*domain.User, error) {
	p = p.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if owner, taken := s.byEmail[p.Email]; taken && owner != id {
		return nil, domain.ErrEmailTaken
	}
	delete(s.byEmail, entry.user.Email)
	entry.user.ApplyProfile(p)
	s.byEmail[p.Email] = id
	return entry.user.Clone(), nil
}

func (s *MemoryUserStore) SetAvatar(ctx context.Context, id string, avatarURL string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry.user.Avatar = domain.AvatarFromURL(avatarURL)
	return entry.user.Clone(), nil
}
