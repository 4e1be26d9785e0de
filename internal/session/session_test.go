package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hengxingtx/ragnews-cli/internal/log"
)

func TestTokenAuthorization(t *testing.T) {
	tok := Token{AccessToken: "abc", TokenType: "bearer"}
	require.Equal(t, "Bearer abc", tok.Authorization())
}

func TestOpenMissingFileMeansLoggedOut(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())
	_, ok := s.Token()
	require.False(t, ok)
}

func TestSetPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s := Open(path, log.NewNop())
	require.NoError(t, s.Set(Token{AccessToken: "tok-1", TokenType: "bearer"}))

	reopened := Open(path, log.NewNop())
	tok, ok := reopened.Token()
	require.True(t, ok)
	require.Equal(t, "tok-1", tok.AccessToken)
	require.Equal(t, "bearer", tok.TokenType)
}

func TestSetRejectsEmptyToken(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())
	require.Error(t, s.Set(Token{AccessToken: "   "}))
	_, ok := s.Token()
	require.False(t, ok)
}

func TestSetOverwritesPreviousToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := Open(path, log.NewNop())

	require.NoError(t, s.Set(Token{AccessToken: "old", TokenType: "bearer"}))
	require.NoError(t, s.Set(Token{AccessToken: "new", TokenType: "bearer"}))

	tok, ok := Open(path, log.NewNop()).Token()
	require.True(t, ok)
	require.Equal(t, "new", tok.AccessToken)
}

func TestClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := Open(path, log.NewNop())
	require.NoError(t, s.Set(Token{AccessToken: "tok", TokenType: "bearer"}))

	require.NoError(t, s.Clear())
	_, ok := s.Token()
	require.False(t, ok)
	require.NoFileExists(t, path)

	// Clearing again with nothing stored is still fine.
	require.NoError(t, s.Clear())

	_, ok = Open(path, log.NewNop()).Token()
	require.False(t, ok)
}

func TestOpenToleratesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	// Corruption means logged out, never a crash.
	s := Open(path, log.NewNop())
	_, ok := s.Token()
	require.False(t, ok)

	// A fresh login overwrites the corrupt file.
	require.NoError(t, s.Set(Token{AccessToken: "tok", TokenType: "bearer"}))
	tok, ok := Open(path, log.NewNop()).Token()
	require.True(t, ok)
	require.Equal(t, "tok", tok.AccessToken)
}

func TestOpenIgnoresEmptyStoredToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token": "", "token_type": "bearer"}`), 0o600))

	_, ok := Open(path, log.NewNop()).Token()
	require.False(t, ok)
}

func TestSessionFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}

	path := filepath.Join(t.TempDir(), "session.json")
	s := Open(path, log.NewNop())
	require.NoError(t, s.Set(Token{AccessToken: "tok", TokenType: "bearer"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
