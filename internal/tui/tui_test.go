package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/hengxingtx/ragnews-cli/internal/controller"
	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
	"github.com/hengxingtx/ragnews-cli/internal/log"
	"github.com/hengxingtx/ragnews-cli/internal/remote"
	"github.com/hengxingtx/ragnews-cli/internal/session"
)

// goleakOptions returns standard goleak options for all TUI tests.
// Filters out persistent goroutines that are expected to exist.
func goleakOptions() []goleak.Option {
	return []goleak.Option{
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*http2clientConnReadLoop).run"),
	}
}

// newTestModel creates a model whose client points at a dead address.
// Tests drive Update with result messages directly; no command that
// would hit the network is ever executed.
func newTestModel(t *testing.T, loggedIn bool) *Model {
	t.Helper()

	store := session.Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())
	if loggedIn {
		if err := store.Set(session.Token{AccessToken: "tok", TokenType: "bearer"}); err != nil {
			t.Fatalf("seeding session: %v", err)
		}
	}

	client, err := remote.New("http://127.0.0.1:1", 0, store, log.NewNop())
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	m, err := New(context.Background(), client, store, log.NewNop())
	if err != nil {
		t.Fatalf("creating model: %v", err)
	}
	return m
}

func TestNew_ErrorOnNilDependencies(t *testing.T) {
	store := session.Open(filepath.Join(t.TempDir(), "session.json"), log.NewNop())
	client, err := remote.New("http://127.0.0.1:1", 0, store, log.NewNop())
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}

	if _, err := New(context.Background(), nil, store, log.NewNop()); err == nil {
		t.Error("Expected error for nil client")
	}
	if _, err := New(context.Background(), client, nil, log.NewNop()); err == nil {
		t.Error("Expected error for nil session store")
	}
	//lint:ignore SA1012 intentionally testing nil context handling
	if _, err := New(nil, client, store, log.NewNop()); err == nil { //nolint:staticcheck
		t.Error("Expected error for nil context")
	}
}

func TestNew_GateRoutesBySessionPresence(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	if m := newTestModel(t, false); m.view != viewLogin {
		t.Error("no session should land on the login view")
	}
	if m := newTestModel(t, true); m.view != viewBrowser {
		t.Error("existing session should land on the browser")
	}
}

func TestInit_ReturnsCommand(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	if cmd := newTestModel(t, false).Init(); cmd == nil {
		t.Error("Init should return a command (spinner tick + focus)")
	}
}

func TestLoginDone_BadCredentialsStayInline(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, false)
	_, _ = m.handleLoginDone(loginDoneMsg{err: remote.ErrInvalidCredentials})

	if m.view != viewLogin {
		t.Error("failed login must not leave the login view")
	}
	if m.loginErr == "" {
		t.Error("failed login must show an inline error")
	}
	if _, ok := m.sessions.Token(); ok {
		t.Error("failed login must not store a session")
	}
}

func TestLoginDone_ConnErrorShowsGenericMessage(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, false)
	_, _ = m.handleLoginDone(loginDoneMsg{err: &remote.ConnError{Err: errors.New("dial tcp: refused")}})

	if !strings.Contains(m.loginErr, "cannot reach server") {
		t.Errorf("connectivity failure should show a generic message, got %q", m.loginErr)
	}
}

func TestLoginDone_SuccessEntersBrowserAndStoresToken(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, false)
	_, cmd := m.handleLoginDone(loginDoneMsg{tok: session.Token{AccessToken: "fresh", TokenType: "bearer"}})

	if m.view != viewBrowser {
		t.Error("successful login must enter the browser")
	}
	if cmd == nil {
		t.Error("successful login must kick off the base list fetch")
	}
	tok, ok := m.sessions.Token()
	if !ok || tok.AccessToken != "fresh" {
		t.Error("successful login must persist the token")
	}
}

func TestUnauthorized_GatesToLoginWithNotice(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, true)
	_, _ = m.Update(basesLoadedMsg{err: remote.ErrUnauthorized})

	if m.view != viewLogin {
		t.Error("401 must gate back to login")
	}
	if m.loginNote == "" {
		t.Error("gate should carry a neutral notice")
	}
	if m.errMsg != "" {
		t.Error("401 must never render as an inline browser error")
	}
}

func TestRemoteError_DetailShownInline(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, true)
	_, _ = m.Update(basesLoadedMsg{err: &remote.APIError{StatusCode: 409, Detail: "name already exists"}})

	if m.view != viewBrowser {
		t.Error("an API error must not leave the browser")
	}
	if m.errMsg != "name already exists" {
		t.Errorf("server detail should show inline, got %q", m.errMsg)
	}
}

func TestStaleFileResponseDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, true)
	m.ctrl.ApplyBases([]knowledge.Base{{ID: 1, Name: "news"}, {ID: 2, Name: "papers"}})

	staleFetch, err := m.ctrl.Select(1)
	if err != nil {
		t.Fatalf("selecting base 1: %v", err)
	}
	freshFetch, err := m.ctrl.Select(2)
	if err != nil {
		t.Fatalf("selecting base 2: %v", err)
	}

	_, _ = m.Update(filesLoadedMsg{fetch: freshFetch, files: []knowledge.File{{ID: 10}}})
	_, _ = m.Update(filesLoadedMsg{fetch: staleFetch, files: []knowledge.File{{ID: 99}}})

	files := m.ctrl.Files()
	if len(files) != 1 || files[0].ID != 10 {
		t.Errorf("stale response must be discarded, got %+v", files)
	}
}

func TestBaseDeleteDone_ClearsSelectionAndRefocuses(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, true)
	m.ctrl.ApplyBases([]knowledge.Base{{ID: 1, Name: "news"}})
	if _, err := m.ctrl.Select(1); err != nil {
		t.Fatalf("selecting base: %v", err)
	}
	m.focus = paneFiles

	req, err := m.ctrl.StartDeleteBase(controller.Confirm())
	if err != nil {
		t.Fatalf("starting delete: %v", err)
	}
	_, cmd := m.Update(baseDeleteDoneMsg{req: req})

	if _, ok := m.ctrl.Selected(); ok {
		t.Error("deleting the selected base must clear the selection")
	}
	if m.focus != paneBases {
		t.Error("focus must return to the base pane after the delete")
	}
	if cmd == nil {
		t.Error("a successful delete must refetch the base list")
	}
}

func TestCursorClampAfterListShrinks(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	m := newTestModel(t, true)
	m.ctrl.ApplyBases([]knowledge.Base{{ID: 1}, {ID: 2}, {ID: 3}})
	m.baseCursor = 2

	_, _ = m.Update(basesLoadedMsg{bases: []knowledge.Base{{ID: 1}}})

	if m.baseCursor != 0 {
		t.Errorf("cursor must clamp into the new list, got %d", m.baseCursor)
	}
}

func TestView_RendersBothSurfaces(t *testing.T) {
	defer goleak.VerifyNone(t, goleakOptions()...)

	login := newTestModel(t, false)
	login.View() // must not panic
	if !strings.Contains(login.renderLogin(), "Username") {
		t.Error("login view should render the username field")
	}

	browser := newTestModel(t, true)
	browser.ctrl.ApplyBases([]knowledge.Base{{ID: 1, Name: "news", FileCount: 2}})
	browser.View()
	if !strings.Contains(browser.renderBrowser(), "news") {
		t.Error("browser view should render the base list")
	}
}

func TestRenderStatus_UnknownRendersVerbatim(t *testing.T) {
	s := DefaultStyles()
	if got := s.RenderStatus(knowledge.FileStatus("quarantined")); got != "quarantined" {
		t.Errorf("unknown status must render verbatim, got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short.pdf", 40); got != "short.pdf" {
		t.Errorf("short names pass through, got %q", got)
	}
	long := strings.Repeat("a", 50) + ".pdf"
	got := truncate(long, 40)
	if len([]rune(got)) != 40 || !strings.HasSuffix(got, "…") {
		t.Errorf("long names truncate with ellipsis, got %q", got)
	}
}
