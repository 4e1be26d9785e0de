package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/hengxingtx/ragnews-cli/internal/config"
	"github.com/hengxingtx/ragnews-cli/internal/log"
	"github.com/hengxingtx/ragnews-cli/internal/remote"
	"github.com/hengxingtx/ragnews-cli/internal/session"
	"github.com/hengxingtx/ragnews-cli/internal/tui"
)

// errNotLoggedIn is the CLI gate's answer when a command needs a session
// and none exists. The CLI cannot redirect like the TUI, so it points at
// the login command instead.
var errNotLoggedIn = errors.New(`not logged in: run "ragnews login" first`)

// runtime bundles the shared dependencies of every command.
type runtime struct {
	cfg      *config.Config
	logger   log.Logger
	sessions *session.Store
	client   *remote.Client
}

// newRuntime loads configuration and builds the session store and remote
// client. Called lazily from each RunE so --help works without config.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := log.New(log.Config{Level: cfg.LogLevel()})

	path := cfg.SessionPath
	if path == "" {
		path, err = session.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	sessions := session.Open(path, logger)

	client, err := remote.New(cfg.ServerURL, cfg.RequestTimeout, sessions, logger)
	if err != nil {
		return nil, err
	}

	return &runtime{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		client:   client,
	}, nil
}

// requireSession is the auth gate for non-interactive commands: a pure
// presence check against the session store, no network I/O. An expired
// token still passes here and surfaces as 401 from the first request.
func (r *runtime) requireSession() error {
	if _, ok := r.sessions.Token(); !ok {
		return errNotLoggedIn
	}
	return nil
}

// runBrowse starts the interactive TUI browser.
func runBrowse() error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	model, err := tui.New(ctx, rt.client, rt.sessions, rt.logger)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
