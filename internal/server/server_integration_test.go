package server_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nfrund/accountdash/internal/client"
	"github.com/nfrund/accountdash/internal/config"
	"github.com/nfrund/accountdash/internal/dashboard"
	"github.com/nfrund/accountdash/internal/database"
	"github.com/nfrund/accountdash/internal/domain"
	"github.com/nfrund/accountdash/internal/pubsub"
	"github.com/nfrund/accountdash/internal/server"
	"github.com/nfrund/accountdash/internal/session"
	"github.com/nfrund/accountdash/internal/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adaEmail    = "ada@example.com"
	adaPassword = "correct-horse-battery"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		AppAddr:            "127.0.0.1:0",
		AppBaseURL:         baseURL,
		SessionSecret:      "integration-test-session-secret",
		StorageDir:         "unused",
		AvatarMaxBytes:     1 << 20,
		AvatarAllowedTypes: []string{"image/png", "image/jpeg", "image/jpg"},
		DBQueryTimeout:     time.Second,
	}
}

// setupIntegrationTest starts a full server on the in-memory user store and
// an in-memory filesystem. It returns the server, its URL and the seeded user.
func setupIntegrationTest(t *testing.T) (*server.Server, string, *domain.User) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	users := database.NewMemoryUserStore()
	user, err := users.Create(ctx, &domain.User{
		Username:  "ada",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     adaEmail,
		Address:   "12 St James's Square",
		City:      "London",
		Country:   "UK",
		Verified:  domain.VerifiedNo,
	}, adaPassword)
	require.NoError(t, err)

	bridge := pubsub.NewWatermillBridge(nil)
	s, err := server.New(server.Dependencies{
		Config:     testConfig("http://localhost"),
		Users:      users,
		Files:      storage.NewAferoStore(afero.NewMemMapFs()),
		Publisher:  bridge,
		Subscriber: bridge,
	})
	require.NoError(t, err)
	s.OnShutdown(func(context.Context) error { return bridge.Close() })
	s.RegisterRoutes()
	require.NoError(t, s.Listen(ctx))

	ts := httptest.NewServer(s.E)
	t.Cleanup(func() {
		ts.Close()
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = s.Shutdown(shutdownCtx)
	})
	return s, ts.URL, user
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIntegration_DashboardFlow(t *testing.T) {
	_, baseURL, user := setupIntegrationTest(t)
	ctx := context.Background()

	c, err := client.New(baseURL)
	require.NoError(t, err)

	_, err = c.SessionUser(ctx)
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))

	assert.True(t, client.IsStatus(c.Login(ctx, adaEmail, "wrong-password"), http.StatusUnauthorized))
	require.NoError(t, c.Login(ctx, adaEmail, adaPassword))

	store := session.NewMemoryStore()
	editor := dashboard.NewEditor(c, store, slog.Default())
	require.NoError(t, editor.Mount(ctx))
	require.True(t, editor.Loaded())
	assert.Equal(t, user.ID, editor.User().ID)
	assert.True(t, editor.View().Unverified)

	// Avatar upload through the real endpoint.
	require.NoError(t, editor.UploadAvatar(ctx, "me.png", "image/png", bytes.NewReader(pngImage(t))))
	avatar := editor.User().Avatar
	require.NotNil(t, avatar)
	assert.True(t, strings.HasPrefix(avatar.Src(), "/api/account/avatar/"))

	req, err := http.NewRequest(http.MethodGet, baseURL+avatar.Src(), nil)
	require.NoError(t, err)
	for _, ck := range c.SessionCookies() {
		req.AddCookie(ck)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, pngImage(t), body)

	// Unsupported types never reach the server.
	err = editor.UploadAvatar(ctx, "anim.gif", "image/gif", strings.NewReader("GIF89a"))
	assert.ErrorIs(t, err, dashboard.ErrUnsupportedImage)

	// Successful optimistic save.
	require.NoError(t, editor.Edit())
	require.NoError(t, editor.SetField(domain.FieldUsername, "countess"))
	require.NoError(t, editor.Save(ctx))
	assert.Equal(t, dashboard.SaveCommitted, editor.SaveState())
	assert.Equal(t, dashboard.ModeViewing, editor.Mode())

	fresh, err := c.SessionUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "countess", fresh.Username)
	assert.Equal(t, avatar.Src(), fresh.Avatar.Src())

	// Invalid email is rejected by the server and rolled back.
	require.NoError(t, editor.Edit())
	require.NoError(t, editor.SetField(domain.FieldEmail, "not-an-email"))
	err = editor.Save(ctx)
	assert.ErrorIs(t, err, dashboard.ErrProfileSave)
	assert.Equal(t, dashboard.SaveRolledBack, editor.SaveState())
	assert.Equal(t, dashboard.ModeEditing, editor.Mode())
	assert.Equal(t, adaEmail, editor.User().Email)
	assert.Equal(t, "not-an-email", editor.Form().Email)
	assert.Equal(t, dashboard.MsgProfileSave, editor.ProfileError())

	cached, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, adaEmail, cached.Email)

	require.NoError(t, c.Logout(ctx))
	_, err = c.SessionUser(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
}

func TestIntegration_PagesRequireSignIn(t *testing.T) {
	_, baseURL, _ := setupIntegrationTest(t)

	noRedirect := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}

	resp, err := noRedirect.Get(baseURL + "/dashboard/account")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Fdashboard%2Faccount", resp.Header.Get("Location"))

	req, err := http.NewRequest(http.MethodGet, baseURL+"/dashboard/account/card", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err = noRedirect.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("HX-Redirect"))

	resp, err = noRedirect.Get(baseURL + "/static/favicon.svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = noRedirect.Get(baseURL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIntegration_CacheFollowsEvents(t *testing.T) {
	s, baseURL, user := setupIntegrationTest(t)
	ctx := context.Background()

	c, err := client.New(baseURL)
	require.NoError(t, err)
	require.NoError(t, c.Login(ctx, adaEmail, adaPassword))

	_, err = c.SessionUser(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.UserCache().Len())

	// A write that bypasses the service is only seen once the cache entry goes.
	_, err = s.UserStore().UpdateProfile(ctx, user.ID, domain.ProfileUpdate{Username: "direct", Email: adaEmail})
	require.NoError(t, err)
	stale, err := c.SessionUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", stale.Username)

	require.NoError(t, c.SaveProfile(ctx, domain.ProfileUpdate{Username: "via-api", Email: adaEmail}))
	fresh, err := c.SessionUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "via-api", fresh.Username)
}
