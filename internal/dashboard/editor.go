package dashboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/session"
	"github.com/nfrund/accountdash/internal/view/dto/account"
)

// Mode is the edit mode of the profile card.
type Mode int

const (
	ModeViewing Mode = iota
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

// SaveState tracks the last optimistic profile save.
type SaveState int

const (
	SaveIdle SaveState = iota
	SavePending
	SaveCommitted
	SaveRolledBack
)

func (s SaveState) String() string {
	switch s {
	case SavePending:
		return "pending"
	case SaveCommitted:
		return "committed"
	case SaveRolledBack:
		return "rolled back"
	default:
		return "idle"
	}
}

// Editor holds the state of one account page. It is safe for concurrent use;
// network calls are made without holding the lock.
type Editor struct {
	api    API
	store  session.Store
	loader *Loader
	logger *slog.Logger

	mu           sync.Mutex
	user         *domain.User
	form         domain.ProfileUpdate
	mode         Mode
	saveState    SaveState
	profileError string
}

// NewEditor creates an Editor that loads through a Loader over api and store.
func NewEditor(api API, store session.Store, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		api:    api,
		store:  store,
		loader: NewLoader(api, store, logger),
		logger: logger,
	}
}

// Mount loads the session user. On failure the editor stays unloaded.
func (e *Editor) Mount(ctx context.Context) error {
	user, err := e.loader.Load(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = user
	e.form = user.Profile()
	return nil
}

// Loaded reports whether Mount has succeeded.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user != nil
}

// User returns a copy of the displayed record, or nil before Mount.
func (e *Editor) User() *domain.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.user.Clone()
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *Editor) SaveState() SaveState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveState
}

// Form returns the staged profile edits.
func (e *Editor) Form() domain.ProfileUpdate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// ProfileError returns the inline error of the last failed save.
func (e *Editor) ProfileError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profileError
}

// View returns a snapshot for rendering.
func (e *Editor) View() account.Data {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := account.New(e.user, e.mode == ModeEditing, e.form, e.profileError)
	d.Saving = e.saveState == SavePending
	return d
}

// Edit enters edit mode with a fresh copy of the displayed record in the form.
// Calling it while already editing keeps the staged edits.
func (e *Editor) Edit() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.user == nil {
		return ErrNotLoaded
	}
	if e.mode == ModeEditing {
		return nil
	}
	e.form = e.user.Profile()
	e.profileError = ""
	e.mode = ModeEditing
	return nil
}

// SetField stages an edit of one of domain.EditableFields.
func (e *Editor) SetField(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.mode != ModeEditing {
		return ErrNotEditing
	}
	return e.form.Set(name, value)
}

// Cancel leaves edit mode and discards the staged edits.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = e.user.Profile()
	e.profileError = ""
	e.mode = ModeViewing
}

// Save applies the staged edits to the displayed record and the session store
// straight away, then persists them. If persisting fails the editable fields
// are restored, edit mode is re-entered with the edits still staged (or with
// whatever was staged since, if editing resumed meanwhile), and an
// error wrapping ErrProfileSave is returned.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.mode != ModeEditing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	previous := e.user.Profile()
	form := e.form
	e.user.ApplyProfile(form)
	optimistic := e.user.Clone()
	e.profileError = ""
	e.mode = ModeViewing
	e.saveState = SavePending
	e.mu.Unlock()

	e.cache(ctx, optimistic)

	err := e.api.SaveProfile(ctx, form)

	e.mu.Lock()
	if err == nil {
		e.saveState = SaveCommitted
		e.mu.Unlock()
		return nil
	}
	e.user.ApplyProfile(previous)
	restored := e.user.Clone()
	// Edits staged after the save was sent win over the failed form.
	if e.mode != ModeEditing {
		e.form = form
	}
	e.mode = ModeEditing
	e.profileError = MsgProfileSave
	e.saveState = SaveRolledBack
	e.mu.Unlock()

	e.logger.WarnContext(ctx, "profile save failed, rolled back", "error", err)
	e.cache(ctx, restored)
	return fmt.Errorf("%w: %w", ErrProfileSave, err)
}

// UploadAvatar sends a PNG or JPEG image to the server. The type is checked
// before any request is made. The displayed avatar only changes once the server
// returns the new reference; an empty reference leaves it as it was.
func (e *Editor) UploadAvatar(ctx context.Context, filename, contentType string, r io.Reader) error {
	if !domain.IsAcceptedImageType(contentType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedImage, contentType)
	}
	if !e.Loaded() {
		return ErrNotLoaded
	}

	ref, err := e.api.UploadAvatar(ctx, filename, contentType, r)
	if err != nil {
		e.logger.WarnContext(ctx, "avatar upload failed", "error", err)
		return fmt.Errorf("%w: %w", ErrAvatarUpload, err)
	}
	if ref == "" {
		return nil
	}
	avatar, err := domain.ParseAvatar(ref)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAvatarUpload, err)
	}

	e.mu.Lock()
	e.user.Avatar = avatar
	updated := e.user.Clone()
	e.mu.Unlock()

	e.cache(ctx, updated)
	return nil
}

func (e *Editor) cache(ctx context.Context, user *domain.User) {
	if err := e.store.Set(ctx, user); err != nil {
		e.logger.WarnContext(ctx, "failed to update session store", "error", err)
	}
}
