// Package tui provides the Bubble Tea terminal interface for the ragnews
// client: a login form and the knowledge base browser.
//
// The model renders controller state and forwards user intents; it holds no
// collection truth of its own. All network work happens in tea.Cmd
// closures; their results come back as discriminated messages and are
// applied to the controller inside Update, so every state mutation happens
// on the event-loop thread.
package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/hengxingtx/ragnews-cli/internal/controller"
	"github.com/hengxingtx/ragnews-cli/internal/log"
	"github.com/hengxingtx/ragnews-cli/internal/remote"
	"github.com/hengxingtx/ragnews-cli/internal/session"
)

// view identifies the top-level surface being shown.
type view int

const (
	viewLogin   view = iota // Unauthenticated entry point
	viewBrowser             // Protected knowledge base browser
)

// mode identifies the browser's input mode.
type mode int

const (
	modeNormal      mode = iota // Navigating the panes
	modeCreate                  // Create-knowledge-base form open
	modeUpload                  // Upload path prompt open
	modeConfirmBase             // Confirming deletion of the selected base
	modeConfirmFile             // Confirming deletion of one file
)

// pane identifies which browser pane has focus.
type pane int

const (
	paneBases pane = iota
	paneFiles
)

// Layout constants for pane sizing.
const (
	basesPaneWidth = 32 // Fixed width of the knowledge base list pane
	chromeLines    = 4  // Title, separator, error line, help bar
	minPaneHeight  = 5
)

// Model is the Bubble Tea model for the ragnews terminal interface.
type Model struct {
	// Dependencies (direct, no interface)
	client   *remote.Client
	sessions *session.Store
	ctrl     *controller.Controller
	logger   log.Logger
	ctx      context.Context

	// Surface routing
	view view

	// Login form
	username   textinput.Model
	password   textinput.Model
	loginFocus int    // 0 = username, 1 = password
	loggingIn  bool   // login exchange in flight
	loginErr   string // inline credential/connectivity error
	loginNote  string // neutral notice (e.g. session expired)

	// Browser state
	focus       pane
	baseCursor  int
	fileCursor  int
	mode        mode
	pendingFile int64 // file id awaiting delete confirmation

	// Forms
	createName textinput.Model
	createDesc textinput.Model
	createFoc  int // 0 = name, 1 = description
	uploadPath textinput.Model

	// Feedback
	errMsg  string // inline error banner for the browser
	loading bool   // non-mutating fetch in flight (list/files)
	spinner spinner.Model

	// Help bar
	help help.Model
	keys keyMap

	// Dimensions
	width  int
	height int

	// Styles
	styles Styles
}

// New creates the TUI model. The auth gate lives here: the initial view is
// chosen by consulting the session store, a pure presence check with no
// network I/O. The originally requested surface (always the browser for
// this client) is restored after a successful login.
func New(ctx context.Context, client *remote.Client, sessions *session.Store, logger log.Logger) (*Model, error) {
	if client == nil {
		return nil, errors.New("tui.New: remote client is required")
	}
	if sessions == nil {
		return nil, errors.New("tui.New: session store is required")
	}
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}

	username := textinput.New()
	username.Placeholder = "username"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	createName := textinput.New()
	createName.Placeholder = "name (required)"

	createDesc := textinput.New()
	createDesc.Placeholder = "description (optional)"

	uploadPath := textinput.New()
	uploadPath.Placeholder = "path to file"

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		client:     client,
		sessions:   sessions,
		ctrl:       controller.New(),
		logger:     logger.With("component", "tui"),
		ctx:        ctx,
		username:   username,
		password:   password,
		createName: createName,
		createDesc: createDesc,
		uploadPath: uploadPath,
		spinner:    sp,
		help:       help.New(),
		keys:       newKeyMap(),
		styles:     DefaultStyles(),
		width:      80,
		height:     24,
	}

	// Gate: token present means straight to the protected browser.
	if _, ok := sessions.Token(); ok {
		m.view = viewBrowser
	} else {
		m.view = viewLogin
	}
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick}
	switch m.view {
	case viewLogin:
		cmds = append(cmds, m.username.Focus())
	case viewBrowser:
		m.loading = true
		cmds = append(cmds, m.loadBases())
	}
	return tea.Batch(cmds...)
}

// gateToLogin routes to the unauthenticated entry point. Used when any
// operation reports ErrUnauthorized: the rejection itself is never shown
// as an inline error, only as a neutral notice on the login surface.
func (m *Model) gateToLogin(note string) tea.Cmd {
	m.view = viewLogin
	m.loginErr = ""
	m.loginNote = note
	m.loggingIn = false
	m.password.SetValue("")
	m.loginFocus = 0
	m.username.Focus()
	m.password.Blur()
	return nil
}
