package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/nfrund/accountdash/cmd/account-cli/internal/credentials"
	"github.com/nfrund/accountdash/internal/client"
	"github.com/nfrund/accountdash/internal/dashboard"
	"github.com/nfrund/accountdash/internal/logging"
	"github.com/nfrund/accountdash/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

// workspace bundles what every command needs: the API client with its
// restored cookies, the session cache and a logger.
type workspace struct {
	client *client.Client
	store  session.Store
	creds  *credentials.File
	logger *slog.Logger
	rdb    *redis.Client
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := logging.NewWithWriter(os.Stderr, "text", level)

	path := opts.cookieFile
	if path == "" {
		var err error
		if path, err = credentials.DefaultPath(); err != nil {
			return nil, fmt.Errorf("locate cookie file: %w", err)
		}
	}
	creds := credentials.NewFile(afero.NewOsFs(), path)

	c, err := client.New(opts.apiURL)
	if err != nil {
		return nil, err
	}
	cookies, err := creds.Load(opts.apiURL)
	if err != nil {
		logger.Warn("Ignoring unreadable cookie file", "path", path, "error", err)
	}
	c.SetSessionCookies(cookies)

	ws := &workspace{client: c, creds: creds, logger: logger}
	if opts.redisAddr == "" {
		ws.store = session.NewMemoryStore()
		return ws, nil
	}

	ws.rdb = redis.NewClient(&redis.Options{Addr: opts.redisAddr})
	if err := ws.rdb.Ping(ctx).Err(); err != nil {
		ws.rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.redisAddr, err)
	}
	ws.store = session.NewRedisStore(ws.rdb, opts.profile, 0)
	logger.Debug("Using Redis session cache", "addr", opts.redisAddr, "profile", opts.profile)
	return ws, nil
}

// editor returns a dashboard editor loaded with the session user.
func (ws *workspace) editor(ctx context.Context) (*dashboard.Editor, error) {
	ed := dashboard.NewEditor(ws.client, ws.store, ws.logger)
	if err := ed.Mount(ctx); err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("not signed in, run 'account-cli login' first")
		}
		return nil, err
	}
	return ed, nil
}

// persist saves the current session cookies for the next invocation.
func (ws *workspace) persist() error {
	return ws.creds.Save(opts.apiURL, ws.client.SessionCookies())
}

func (ws *workspace) Close() error {
	if ws.rdb != nil {
		return ws.rdb.Close()
	}
	return nil
}
