// Package credentials persists the session cookie between CLI invocations.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// File stores the cookies for one server in a JSON file.
type File struct {
	fs   afero.Fs
	path string
}

type saved struct {
	BaseURL string         `json:"base_url"`
	Cookies []*http.Cookie `json:"cookies"`
}

// NewFile returns a File at path on fs.
func NewFile(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path}
}

// DefaultPath is the cookie file under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "accountdash", "session.json"), nil
}

// Load returns the cookies saved for baseURL. A missing file, or one written
// for another server, yields no cookies.
func (f *File) Load(baseURL string) ([]*http.Cookie, error) {
	b, err := afero.ReadFile(f.fs, f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	var s saved
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if s.BaseURL != baseURL {
		return nil, nil
	}
	return s.Cookies, nil
}

// Save writes the cookies for baseURL, readable by the owner only.
func (f *File) Save(baseURL string, cookies []*http.Cookie) error {
	if err := f.fs.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(saved{BaseURL: baseURL, Cookies: cookies}, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(f.fs, f.path, b, 0o600)
}

// Remove deletes the file. It is not an error if it does not exist.
func (f *File) Remove() error {
	if err := f.fs.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
