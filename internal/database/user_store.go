package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const userTable = "user"

// userRecord is the shape of a user row in SurrealDB. The password hash never
// leaves this package.
type userRecord struct {
	ID           *surrealmodels.RecordID `json:"id,omitempty"`
	Username     string                  `json:"username,omitempty"`
	FirstName    string                  `json:"first_name,omitempty"`
	LastName     string                  `json:"last_name,omitempty"`
	Email        string                  `json:"email"`
	Address      string                  `json:"address,omitempty"`
	City         string                  `json:"city,omitempty"`
	State        string                  `json:"state,omitempty"`
	Zip          string                  `json:"zip,omitempty"`
	Country      string                  `json:"country,omitempty"`
	Verified     string                  `json:"verified,omitempty"`
	AvatarURL    string                  `json:"avatar_url,omitempty"`
	PasswordHash string                  `json:"password_hash,omitempty"`
}

func (r *userRecord) toDomain() *domain.User {
	u := &domain.User{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Address:   r.Address,
		City:      r.City,
		State:     r.State,
		Zip:       r.Zip,
		Country:   r.Country,
		Verified:  r.Verified,
	}
	if r.ID != nil {
		u.ID = r.ID.String()
	}
	if r.AvatarURL != "" {
		u.Avatar = domain.AvatarFromURL(r.AvatarURL)
	}
	return u
}

// SurrealUserStore implements domain.UserRepository on SurrealDB.
type SurrealUserStore struct {
	db      *surrealdb.DB
	timeout time.Duration
}

var _ domain.UserRepository = (*SurrealUserStore)(nil)

// NewSurrealUserStore creates a new SurrealUserStore. Every call is bounded by timeout.
func NewSurrealUserStore(db *surrealdb.DB, timeout time.Duration) *SurrealUserStore {
	return &SurrealUserStore{db: db, timeout: timeout}
}

// Create inserts a new user with a bcrypt hash of password.
func (s *SurrealUserStore) Create(ctx context.Context, user *domain.User, password string) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	existing, err := s.findRecordByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrUserAlreadyExists
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	rec := userRecord{
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        email,
		Address:      user.Address,
		City:         user.City,
		State:        user.State,
		Zip:          user.Zip,
		Country:      user.Country,
		Verified:     user.Verified,
		PasswordHash: hash,
	}
	if user.Avatar != nil && !user.Avatar.IsBinary() {
		rec.AvatarURL = user.Avatar.URL
	}

	query := "CREATE type::table($table) CONTENT $data"
	created, err := QueryOne[userRecord](ctx, s.db, query, map[string]any{"table": userTable, "data": rec})
	if err != nil {
		return nil, NewDBError(err, "create user").WithQuery(query)
	}
	if created == nil {
		return nil, NewDBError(ErrQueryFailed, "create user returned no record")
	}
	return created.toDomain(), nil
}

// Authenticate checks email and password against the stored hash.
func (s *SurrealUserStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.findRecordByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := checkPassword(rec.PasswordHash, password); err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// FindByID loads a user by its "user:key" record ID.
func (s *SurrealUserStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.findRecordByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// FindByEmail returns nil, nil when no user has the address.
func (s *SurrealUserStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec, err := s.findRecordByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || rec == nil {
		return nil, err
	}
	return rec.toDomain(), nil
}

// UpdateProfile merges the editable fields into the record.
func (s *SurrealUserStore) UpdateProfile(ctx context.Context, id string, p domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rid, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}
	p = p.Normalize()

	owner, err := s.findRecordByEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}
	if owner != nil && owner.ID != nil && owner.ID.String() != rid.String() {
		return nil, domain.ErrEmailTaken
	}

	query := "UPDATE $id MERGE $data RETURN AFTER"
	params := map[string]any{
		"id": rid,
		"data": map[string]any{
			"username":   p.Username,
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"email":      p.Email,
		},
	}
	return s.updateOne(ctx, id, query, params, "update profile")
}

// SetAvatar stores the avatar URL on the record.
func (s *SurrealUserStore) SetAvatar(ctx context.Context, id string, avatarURL string) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rid, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}
	query := "UPDATE $id SET avatar_url = $avatar RETURN AFTER"
	return s.updateOne(ctx, id, query, map[string]any{"id": rid, "avatar": avatarURL}, "set avatar")
}

func (s *SurrealUserStore) updateOne(ctx context.Context, id, query string, params map[string]any, op string) (*domain.User, error) {
	// UPDATE on a missing record returns no rows; check first so the caller gets ErrNotFound.
	if _, err := s.findRecordByID(ctx, id); err != nil {
		return nil, err
	}
	rec, err := QueryOne[userRecord](ctx, s.db, query, params)
	if err != nil {
		return nil, NewDBError(err, op).WithQuery(query)
	}
	if rec == nil {
		return nil, NewDBError(domain.ErrNotFound, op)
	}
	return rec.toDomain(), nil
}

func (s *SurrealUserStore) findRecordByID(ctx context.Context, id string) (*userRecord, error) {
	rid, err := parseRecordID(id)
	if err != nil {
		return nil, err
	}
	query := "SELECT * FROM $id"
	rec, err := QueryOne[userRecord](ctx, s.db, query, map[string]any{"id": rid})
	if err != nil {
		return nil, NewDBError(err, "find user by id").WithQuery(query)
	}
	if rec == nil {
		return nil, NewDBError(domain.ErrNotFound, "find user by id")
	}
	return rec, nil
}

func (s *SurrealUserStore) findRecordByEmail(ctx context.Context, email string) (*userRecord, error) {
	query := "SELECT * FROM user WHERE email = $email"
	rec, err := QueryOne[userRecord](ctx, s.db, query, map[string]any{"email": email})
	if err != nil {
		return nil, NewDBError(err, "find user by email").WithQuery(query)
	}
	return rec, nil
}

func (s *SurrealUserStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// parseRecordID splits a "user:key" string into a RecordID.
func parseRecordID(id string) (surrealmodels.RecordID, error) {
	table, key, ok := strings.Cut(id, ":")
	if !ok || table != userTable || key == "" {
		return surrealmodels.RecordID{}, fmt.Errorf("%w: expected 'user:key', got %q", ErrInvalidID, id)
	}
	return surrealmodels.NewRecordID(table, key), nil
}
