package remote

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hengxingtx/ragnews-cli/internal/log"
	"github.com/hengxingtx/ragnews-cli/internal/session"
)

// newTestClient builds a client against srv with a session store holding
// the given token (empty token means logged out).
func newTestClient(t *testing.T, srv *httptest.Server, accessToken string) *Client {
	t.Helper()

	store := session.Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())
	if accessToken != "" {
		require.NoError(t, store.Set(session.Token{
			AccessToken: accessToken,
			TokenType:   "bearer",
		}))
	}

	c, err := New(srv.URL, 0, store, log.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewRejectsBadServerURL(t *testing.T) {
	store := session.Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())

	_, err := New("ftp://example.com", 0, store, log.NewNop())
	require.Error(t, err)

	_, err = New("http://localhost:8000", 0, nil, log.NewNop())
	require.Error(t, err)
}

func TestLoginSendsFormAndReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, "alice", r.PostFormValue("username"))
		require.Equal(t, "s3cret", r.PostFormValue("password"))

		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "tok-123",
			"token_type":   "bearer",
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	tok, err := c.Login(t.Context(), "alice", "s3cret")
	require.NoError(t, err)
	require.Equal(t, "tok-123", tok.AccessToken)
	require.Equal(t, "Bearer tok-123", tok.Authorization())
}

func TestLoginBadCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Incorrect username or password"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	_, err := c.Login(t.Context(), "alice", "wrong")

	// Failed login is its own condition, not a session expiry.
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.NotErrorIs(t, err, ErrUnauthorized)
}

func TestLoginRejectsEmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "", "token_type": "bearer"})
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	_, err := c.Login(t.Context(), "alice", "s3cret")
	require.Error(t, err)
}

func TestAuthedRequestSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		require.Equal(t, "/api/knowledge-base/", r.URL.Path)
		io.WriteString(w, `[{"id": 1, "name": "news", "file_count": 2}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "tok-123")
	bases, err := c.ListBases(t.Context())
	require.NoError(t, err)
	require.Len(t, bases, 1)
	require.Equal(t, int64(1), bases[0].ID)
	require.Equal(t, "news", bases[0].Name)
	require.Equal(t, 2, bases[0].FileCount)
}

func TestMissingTokenFailsWithoutNetwork(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "")
	_, err := c.ListBases(t.Context())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, called, "no request may be issued without a token")
}

func TestServer401MapsToUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "expired-tok")
	_, err := c.ListFiles(t.Context(), 1)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAPIErrorCarriesDetail(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{
			name:   "string detail",
			status: http.StatusConflict,
			body:   `{"detail": "knowledge base name already exists"}`,
			detail: "knowledge base name already exists",
		},
		{
			name:   "structured validation detail",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail": [{"loc": ["body", "name"], "msg": "field required"}]}`,
			detail: `[{"loc": ["body", "name"], "msg": "field required"}]`,
		},
		{
			name:   "no detail",
			status: http.StatusInternalServerError,
			body:   `oops`,
			detail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv, "tok")
			err := c.DeleteBase(t.Context(), 7)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.detail, apiErr.Detail)
			require.NotEmpty(t, apiErr.Error())
		})
	}
}

func TestTransportFailureMapsToConnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := newTestClient(t, srv, "tok")
	_, err := c.ListBases(t.Context())

	var connErr *ConnError
	require.ErrorAs(t, err, &connErr)
	require.Error(t, connErr.Unwrap())
}

func TestCreateBaseDescriptionEncoding(t *testing.T) {
	var payloads []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		payloads = append(payloads, string(data))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "tok")

	require.NoError(t, c.CreateBase(t.Context(), "news", nil))
	desc := "daily feeds"
	require.NoError(t, c.CreateBase(t.Context(), "news", &desc))

	require.Len(t, payloads, 2)
	// Absent description is null, not "".
	require.JSONEq(t, `{"name": "news", "description": null}`, payloads[0])
	require.JSONEq(t, `{"name": "news", "description": "daily feeds"}`, payloads[1])
}

func TestUploadFileSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/knowledge-base/3/upload", r.URL.Path)

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		require.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		require.NoError(t, err)
		require.Equal(t, "file", part.FormName())
		require.Equal(t, "report.pdf", part.FileName())

		content, err := io.ReadAll(part)
		require.NoError(t, err)
		require.Equal(t, "pdf bytes", string(content))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "tok")
	err := c.UploadFile(t.Context(), 3, "report.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
}

func TestDeleteFilePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/knowledge-base/3/files/42", r.URL.Path)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "tok")
	require.NoError(t, c.DeleteFile(t.Context(), 3, 42))
}

func TestListFilesDecodesStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/knowledge-base/5/files", r.URL.Path)
		io.WriteString(w, `[
			{"id": 1, "original_filename": "a.pdf", "file_size": 1024, "status": "pending", "created_at": "2026-08-20T10:00:00.123456"},
			{"id": 2, "original_filename": "b.md", "file_size": 10, "status": "completed", "created_at": "2026-08-20 10:05:00"}
		]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, "tok")
	files, err := c.ListFiles(t.Context(), 5)
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.Equal(t, "a.pdf", files[0].OriginalFilename)
	require.EqualValues(t, 1024, files[0].FileSize)
	require.Equal(t, "pending", string(files[0].Status))
	require.Equal(t, 2026, files[1].CreatedAt.Year())
}
