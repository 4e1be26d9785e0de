package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/hengxingtx/ragnews-cli/internal/log"
)

const (
	stateDir    = ".ragnews"
	sessionFile = "session.json"
)

// ErrNoSession indicates no token is stored. Callers treat this as
// "route to login", not as a failure to report inline.
var ErrNoSession = errors.New("no active session")

// Token is the credential pair returned by the login exchange.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authorization returns the value for the Authorization header.
// The token type from the backend is lowercase "bearer"; the header
// uses the canonical capitalization regardless.
func (t Token) Authorization() string {
	return "Bearer " + t.AccessToken
}

// Store persists the session token to a single JSON file.
//
// The zero value is not useful; use Open.
type Store struct {
	path   string
	logger log.Logger

	mu  sync.Mutex
	tok *Token // nil when logged out
}

// DefaultPath returns ~/.ragnews/session.json, creating the directory
// if needed.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting user home directory: %w", err)
	}
	dir := filepath.Join(home, stateDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating state directory: %w", err)
	}
	return filepath.Join(dir, sessionFile), nil
}

// Open creates a store backed by the file at path and loads any
// previously persisted token. A missing or unreadable file means
// "logged out", never an error: a corrupt session file must not lock
// the user out of the login screen.
func Open(path string, logger log.Logger) *Store {
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("session file unreadable, treating as logged out", "path", path, "error", err)
		}
		return s
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		logger.Warn("session file malformed, treating as logged out", "path", path, "error", err)
		return s
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return s
	}
	s.tok = &tok
	return s
}

// Token returns the stored token. The second return is false when no
// session exists.
func (s *Store) Token() (Token, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok == nil {
		return Token{}, false
	}
	return *s.tok, true
}

// Set stores the token and persists it.
func (s *Store) Set(tok Token) error {
	if strings.TrimSpace(tok.AccessToken) == "" {
		return errors.New("session: refusing to store empty access token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tok = &tok
	return s.persistLocked()
}

// Clear removes the token and deletes the session file. Idempotent:
// clearing an absent session is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tok = nil

	release, err := s.lockFile()
	if err != nil {
		return err
	}
	defer release()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// persistLocked writes the token file with 0600 permissions using an
// atomic temp-file rename. Caller holds s.mu.
func (s *Store) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(s.tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	release, err := s.lockFile()
	if err != nil {
		return err
	}
	defer release()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing session file: %w", err)
	}
	return nil
}

// lockFile takes the cross-process lock guarding the session file.
func (s *Store) lockFile() (release func(), err error) {
	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("locking session file: %w", err)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("releasing session file lock", "error", err)
		}
	}, nil
}
