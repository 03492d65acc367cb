package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidPath is returned for paths that are absolute or escape the store root.
var ErrInvalidPath = errors.New("invalid storage path")

// AferoStore implements Store on top of an afero filesystem, which lets
// production use the OS filesystem and tests use an in-memory one.
type AferoStore struct {
	fs afero.Fs
}

// NewAferoStore creates a new AferoStore.
func NewAferoStore(fs afero.Fs) *AferoStore {
	return &AferoStore{fs: fs}
}

// NewDiskStore roots a store at dir on the local disk, creating it if needed.
func NewDiskStore(dir string) (*AferoStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Save writes the content of the reader to the given path.
func (s *AferoStore) Save(ctx context.Context, p string, reader io.Reader) (int64, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(clean), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(clean)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, reader)
}

// Open opens a file for reading.
func (s *AferoStore) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	return s.fs.OpenFile(clean, os.O_RDONLY, 0)
}

// Delete removes a file. Deleting a missing file is not an error.
func (s *AferoStore) Delete(ctx context.Context, p string) error {
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(clean); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func cleanPath(p string) (string, error) {
	if p == "" || strings.HasPrefix(p, "/") || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}
