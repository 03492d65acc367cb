// Package client is the HTTP client for the account API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/nfrund/accountdash/internal/domain"
)

const (
	sessionUserPath = "/api/session/user"
	avatarPath      = "/api/account/avatar"
	profilePath     = "/api/account/profile"
	loginPath       = "/auth/login"
	logoutPath      = "/auth/logout"

	// AvatarField is the multipart form field the avatar file is sent in.
	AvatarField = "avatar"

	maxErrorBody = 4 << 10
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client talks to the account API and keeps the session cookie in a jar.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is used for the session cookie.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}
	return c, nil
}

// Login signs in with email and password. The session cookie is kept in the jar.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	resp, err := c.doJSON(ctx, http.MethodPost, loginPath, body)
	if err != nil {
		return err
	}
	return drain(resp)
}

// Logout ends the server session and drops the cookie.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodPost, logoutPath, nil)
	c.SetSessionCookies(nil)
	if err != nil {
		return err
	}
	return drain(resp)
}

// SessionUser fetches the signed-in user.
func (c *Client) SessionUser(ctx context.Context) (*domain.User, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, sessionUserPath, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		User *domain.User `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	if payload.User == nil {
		return nil, errors.New("decode session user: response has no user")
	}
	return payload.User, nil
}

// UploadAvatar sends the image as multipart form data and returns the avatar
// URL reported by the server. The URL may be empty.
func (c *Client) UploadAvatar(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, AvatarField, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodPost, avatarPath, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var payload struct {
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("decode avatar response: %w", err)
	}
	return payload.Avatar, nil
}

// SaveProfile persists the editable profile fields.
func (c *Client) SaveProfile(ctx context.Context, p domain.ProfileUpdate) error {
	resp, err := c.doJSON(ctx, http.MethodPost, profilePath, p)
	if err != nil {
		return err
	}
	return drain(resp)
}

// SessionCookies returns the cookies held for the server, so a CLI can persist them.
func (c *Client) SessionCookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.baseURL)
}

// SetSessionCookies replaces the cookies held for the server. Nil clears them.
func (c *Client) SetSessionCookies(cookies []*http.Cookie) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return
	}
	jar.SetCookies(c.baseURL, cookies)
	c.http.Jar = jar
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
}

// do sends req and converts non-2xx responses into a StatusError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

func drain(resp *http.Response) error {
	defer resp.Body.Close()
	_, err := io.Copy(io.Discard, resp.Body)
	return err
}
