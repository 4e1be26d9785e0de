// Package remote is the typed client for the RAG News backend REST API.
//
// It exposes the login exchange plus the six knowledge operations
// (list/create/delete knowledge bases, list/upload/delete files). Every
// authenticated operation requires a token in the session store; absence is
// a precondition failure surfaced as [ErrUnauthorized] so the caller routes
// to login instead of hitting the network.
//
// Failure taxonomy per operation:
//   - HTTP 401               -> ErrUnauthorized
//   - any other non-2xx      -> *APIError (detail from the response body)
//   - no response at all     -> *ConnError
//
// No operation retries automatically; retry is a caller policy decision.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
	"github.com/hengxingtx/ragnews-cli/internal/log"
	"github.com/hengxingtx/ragnews-cli/internal/session"
)

// maxErrorBodyBytes bounds how much of an error response body is read
// when extracting the detail message.
const maxErrorBodyBytes = 64 * 1024

// Client performs the backend operations. Safe for concurrent use;
// it holds no mutable state of its own.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	sessions   *session.Store
	logger     log.Logger
}

// New creates a client for the backend at serverURL.
// timeout of zero leaves the transport default in place (no client-side
// bound on individual requests).
func New(serverURL string, timeout time.Duration, sessions *session.Store, logger log.Logger) (*Client, error) {
	if sessions == nil {
		return nil, errors.New("remote.New: session store is required")
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("remote.New: parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote.New: unsupported scheme %q", u.Scheme)
	}

	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		logger:     logger.With("component", "remote"),
	}, nil
}

// Login performs the credential exchange and returns the issued token.
// The token is NOT stored; persisting it is the caller's decision.
// A 401 maps to ErrInvalidCredentials, never to ErrUnauthorized.
func (c *Client) Login(ctx context.Context, username, password string) (session.Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL("/api/login"),
		strings.NewReader(form.Encode()))
	if err != nil {
		return session.Token{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req)
	if err != nil {
		return session.Token{}, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		return session.Token{}, ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return session.Token{}, c.apiError(resp)
	}

	var tok session.Token
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return session.Token{}, fmt.Errorf("decoding login response: %w", err)
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return session.Token{}, errors.New("login response missing access token")
	}
	return tok, nil
}

// ListBases fetches all knowledge bases in the server's order.
func (c *Client) ListBases(ctx context.Context) ([]knowledge.Base, error) {
	resp, err := c.authedRequest(ctx, http.MethodGet, "/api/knowledge-base/", nil, "")
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	var bases []knowledge.Base
	if err := json.NewDecoder(resp.Body).Decode(&bases); err != nil {
		return nil, fmt.Errorf("decoding knowledge base list: %w", err)
	}
	return bases, nil
}

// createBaseRequest is the create payload. Description stays a pointer so
// an absent description is sent as null, not "".
type createBaseRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// CreateBase creates a knowledge base. The server assigns the id and the
// computed fields; callers observe them by refetching the list.
func (c *Client) CreateBase(ctx context.Context, name string, description *string) error {
	body, err := json.Marshal(createBaseRequest{Name: name, Description: description})
	if err != nil {
		return fmt.Errorf("encoding create request: %w", err)
	}

	resp, err := c.authedRequest(ctx, http.MethodPost, "/api/knowledge-base/",
		bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// DeleteBase deletes a knowledge base and everything it contains.
func (c *Client) DeleteBase(ctx context.Context, id int64) error {
	resp, err := c.authedRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/api/knowledge-base/%d", id), nil, "")
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// ListFiles fetches the files of one knowledge base.
func (c *Client) ListFiles(ctx context.Context, baseID int64) ([]knowledge.File, error) {
	resp, err := c.authedRequest(ctx, http.MethodGet,
		fmt.Sprintf("/api/knowledge-base/%d/files", baseID), nil, "")
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	var files []knowledge.File
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("decoding file list: %w", err)
	}
	return files, nil
}

// UploadFile uploads one document as multipart form data (field "file").
// The server assigns the file id and the initial "pending" status; callers
// observe both by refetching the file list.
func (c *Client) UploadFile(ctx context.Context, baseID int64, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("reading upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart form: %w", err)
	}

	resp, err := c.authedRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/knowledge-base/%d/upload", baseID), &buf, mw.FormDataContentType())
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// DeleteFile deletes one file from a knowledge base.
func (c *Client) DeleteFile(ctx context.Context, baseID, fileID int64) error {
	resp, err := c.authedRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/api/knowledge-base/%d/files/%d", baseID, fileID), nil, "")
	if err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// authedRequest runs one bearer-authenticated request and returns the
// response with a 2xx status. All error translation happens here.
func (c *Client) authedRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	tok, ok := c.sessions.Token()
	if !ok {
		// Precondition failure: no network call without a token.
		return nil, ErrUnauthorized
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", tok.Authorization())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		drainAndClose(resp.Body)
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.apiError(resp)
		drainAndClose(resp.Body)
		return nil, apiErr
	}
	return resp, nil
}

// do executes the request, translating transport failure into *ConnError
// and logging one debug line per request with a correlation id.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err)
		return nil, &ConnError{Err: err}
	}

	c.logger.Debug("request completed",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))
	return resp, nil
}

// apiError builds an *APIError from a non-2xx response, extracting the
// backend's {"detail": ...} message when present.
func (c *Client) apiError(resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     errorDetail(data),
	}
}

// errorDetail extracts a human-readable message from an error body.
// The backend answers {"detail": "..."}; validation failures carry a
// structured detail, which is passed through as compact JSON.
func errorDetail(data []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	return string(body.Detail)
}

// apiURL joins the base URL with an API path.
func (c *Client) apiURL(p string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + p
	return u.String()
}

// drainAndClose discards the rest of a body and closes it so the
// underlying connection can be reused.
func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodyBytes))
	_ = body.Close()
}
