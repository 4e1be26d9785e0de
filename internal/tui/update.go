package tui

import (
	"errors"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/hengxingtx/ragnews-cli/internal/controller"
	"github.com/hengxingtx/ragnews-cli/internal/remote"
)

// Update implements tea.Model.
//
//nolint:gocyclo // Bubble Tea Update requires a type switch over all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case basesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		m.ctrl.ApplyBases(msg.bases)
		m.clampCursors()
		return m, nil

	case filesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		if m.ctrl.ApplyFiles(msg.fetch, msg.files) {
			m.clampCursors()
		}
		return m, nil

	case createDoneMsg:
		refresh := m.ctrl.FinishCreate(msg.req, msg.err)
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		if refresh {
			m.loading = true
			return m, m.loadBases()
		}
		return m, nil

	case baseDeleteDoneMsg:
		refresh := m.ctrl.FinishDeleteBase(msg.req, msg.err)
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		if refresh {
			m.focus = paneBases
			m.loading = true
			return m, m.loadBases()
		}
		return m, nil

	case uploadDoneMsg:
		fetch, ok := m.ctrl.FinishUpload(msg.req, msg.err)
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		if ok {
			m.loading = true
			return m, m.loadFiles(fetch)
		}
		return m, nil

	case fileDeleteDoneMsg:
		fetch, ok := m.ctrl.FinishDeleteFile(msg.req, msg.err)
		if msg.err != nil {
			return m, m.handleRemoteError(msg.err)
		}
		if ok {
			m.loading = true
			return m, m.loadFiles(fetch)
		}
		return m, nil
	}

	return m, m.updateFocusedInput(msg)
}

// handleKey routes key presses by surface and mode.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	if k.Mod&tea.ModCtrl != 0 && k.Code == 'c' {
		return m, tea.Quit
	}

	if m.view == viewLogin {
		return m.handleLoginKey(msg)
	}

	switch m.mode {
	case modeCreate:
		return m.handleCreateKey(msg)
	case modeUpload:
		return m.handleUploadKey(msg)
	case modeConfirmBase, modeConfirmFile:
		return m.handleConfirmKey(msg)
	}
	return m.handleBrowseKey(msg)
}

// handleLoginKey drives the two-field login form.
func (m *Model) handleLoginKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.password.Blur()
			return m, m.username.Focus()
		}
		m.username.Blur()
		return m, m.password.Focus()

	case tea.KeyEnter:
		if m.loginFocus == 0 {
			m.loginFocus = 1
			m.username.Blur()
			return m, m.password.Focus()
		}
		if m.loggingIn {
			return m, nil
		}
		user := strings.TrimSpace(m.username.Value())
		pass := m.password.Value()
		if user == "" || pass == "" {
			m.loginErr = "username and password are required"
			return m, nil
		}
		m.loggingIn = true
		m.loginErr = ""
		return m, m.login(user, pass)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// handleLoginDone finishes the credential exchange.
func (m *Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	m.loggingIn = false

	if msg.err != nil {
		var connErr *remote.ConnError
		switch {
		case errors.Is(msg.err, remote.ErrInvalidCredentials):
			// No session write, no redirect; the error shows inline.
			m.loginErr = remote.ErrInvalidCredentials.Error()
		case errors.As(msg.err, &connErr):
			m.loginErr = "cannot reach server, check your connection"
		default:
			m.loginErr = msg.err.Error()
		}
		return m, nil
	}

	if err := m.sessions.Set(msg.tok); err != nil {
		// Token works for this process even if persistence failed.
		m.logger.Warn("persisting session", "error", err)
	}

	m.view = viewBrowser
	m.loginNote = ""
	m.loginErr = ""
	m.loading = true
	return m, m.loadBases()
}

// handleBrowseKey handles pane navigation and operation triggers.
func (m *Model) handleBrowseKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyUp:
		m.moveCursor(-1)
		return m, nil
	case tea.KeyDown:
		m.moveCursor(1)
		return m, nil
	case tea.KeyTab:
		if _, ok := m.ctrl.Selected(); ok {
			if m.focus == paneBases {
				m.focus = paneFiles
			} else {
				m.focus = paneBases
			}
		}
		return m, nil
	case tea.KeyEnter:
		if m.focus == paneBases {
			return m, m.selectUnderCursor()
		}
		return m, nil
	}

	if k.Mod&tea.ModCtrl != 0 && k.Code == 'l' {
		if err := m.sessions.Clear(); err != nil {
			m.logger.Warn("clearing session", "error", err)
		}
		return m, m.gateToLogin("Signed out.")
	}
	if k.Mod != 0 {
		return m, nil
	}

	switch k.Code {
	case 'q':
		return m, tea.Quit

	case 'c':
		m.mode = modeCreate
		m.createFoc = 0
		m.createName.SetValue("")
		m.createDesc.SetValue("")
		m.errMsg = ""
		m.createDesc.Blur()
		return m, m.createName.Focus()

	case 'u':
		if _, ok := m.ctrl.Selected(); !ok {
			return m, nil
		}
		m.mode = modeUpload
		m.uploadPath.SetValue("")
		m.errMsg = ""
		return m, m.uploadPath.Focus()

	case 'd':
		if _, ok := m.ctrl.Selected(); !ok {
			return m, nil
		}
		m.mode = modeConfirmBase
		return m, nil

	case 'x':
		if m.focus != paneFiles {
			return m, nil
		}
		files := m.ctrl.Files()
		if m.fileCursor >= len(files) {
			return m, nil
		}
		m.pendingFile = files[m.fileCursor].ID
		m.mode = modeConfirmFile
		return m, nil

	case 'r':
		// Manual refresh is just re-selecting the current base; the
		// staleness bound is otherwise deliberate.
		if sel, ok := m.ctrl.Selected(); ok {
			fetch, err := m.ctrl.Select(sel.ID)
			if err == nil {
				m.loading = true
				return m, m.loadFiles(fetch)
			}
		}
		return m, nil
	}

	return m, nil
}

// handleCreateKey drives the create form.
func (m *Model) handleCreateKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.createName.Blur()
		m.createDesc.Blur()
		return m, nil

	case tea.KeyTab, tea.KeyDown, tea.KeyUp:
		m.createFoc = 1 - m.createFoc
		if m.createFoc == 0 {
			m.createDesc.Blur()
			return m, m.createName.Focus()
		}
		m.createName.Blur()
		return m, m.createDesc.Focus()

	case tea.KeyEnter:
		name := strings.TrimSpace(m.createName.Value())
		if name == "" {
			// The form is the input surface that enforces the name.
			m.errMsg = "name is required"
			return m, nil
		}
		m.mode = modeNormal
		m.createName.Blur()
		m.createDesc.Blur()
		m.errMsg = ""
		req := m.ctrl.StartCreate()
		return m, m.createBase(req, name, strings.TrimSpace(m.createDesc.Value()))
	}

	var cmd tea.Cmd
	if m.createFoc == 0 {
		m.createName, cmd = m.createName.Update(msg)
	} else {
		m.createDesc, cmd = m.createDesc.Update(msg)
	}
	return m, cmd
}

// handleUploadKey drives the upload path prompt.
func (m *Model) handleUploadKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.uploadPath.Blur()
		return m, nil

	case tea.KeyEnter:
		path := strings.TrimSpace(m.uploadPath.Value())
		if path == "" {
			return m, nil
		}
		m.mode = modeNormal
		m.uploadPath.Blur()
		m.errMsg = ""
		req, err := m.ctrl.StartUpload()
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m, m.uploadFile(req, path)
	}

	var cmd tea.Cmd
	m.uploadPath, cmd = m.uploadPath.Update(msg)
	return m, cmd
}

// handleConfirmKey resolves the pending destructive action. Only an
// explicit "y" mints the confirmation the controller requires.
func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := msg.Key()

	switch k.Code {
	case 'y':
		mode := m.mode
		m.mode = modeNormal
		m.errMsg = ""
		if mode == modeConfirmBase {
			req, err := m.ctrl.StartDeleteBase(controller.Confirm())
			if err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			return m, m.deleteBase(req)
		}
		req, err := m.ctrl.StartDeleteFile(m.pendingFile, controller.Confirm())
		if err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		return m, m.deleteFile(req)

	case 'n', tea.KeyEscape:
		m.mode = modeNormal
		return m, nil
	}
	return m, nil
}

// handleRemoteError translates an operation failure into the right
// surface action: 401 gates to login, connectivity shows a generic
// message, anything else shows the server's detail inline.
func (m *Model) handleRemoteError(err error) tea.Cmd {
	if errors.Is(err, remote.ErrUnauthorized) {
		return m.gateToLogin("Session expired. Sign in to continue.")
	}
	var connErr *remote.ConnError
	if errors.As(err, &connErr) {
		m.errMsg = "cannot reach server, check your connection"
		return nil
	}
	m.errMsg = err.Error()
	return nil
}

// selectUnderCursor selects the base under the cursor and starts its
// tagged file fetch.
func (m *Model) selectUnderCursor() tea.Cmd {
	bases := m.ctrl.Bases()
	if m.baseCursor >= len(bases) {
		return nil
	}
	fetch, err := m.ctrl.Select(bases[m.baseCursor].ID)
	if err != nil {
		m.errMsg = err.Error()
		return nil
	}
	m.errMsg = ""
	m.fileCursor = 0
	m.loading = true
	return m.loadFiles(fetch)
}

// moveCursor moves the cursor of the focused pane, clamped to bounds.
func (m *Model) moveCursor(delta int) {
	if m.focus == paneBases {
		m.baseCursor = clamp(m.baseCursor+delta, 0, len(m.ctrl.Bases())-1)
		return
	}
	m.fileCursor = clamp(m.fileCursor+delta, 0, len(m.ctrl.Files())-1)
}

// clampCursors keeps both cursors valid after a collection was replaced.
func (m *Model) clampCursors() {
	m.baseCursor = clamp(m.baseCursor, 0, len(m.ctrl.Bases())-1)
	m.fileCursor = clamp(m.fileCursor, 0, len(m.ctrl.Files())-1)
	if _, ok := m.ctrl.Selected(); !ok {
		m.focus = paneBases
	}
}

// updateFocusedInput forwards non-key messages (cursor blinks) to the
// focused text input.
func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case m.view == viewLogin && m.loginFocus == 0:
		m.username, cmd = m.username.Update(msg)
	case m.view == viewLogin:
		m.password, cmd = m.password.Update(msg)
	case m.mode == modeCreate && m.createFoc == 0:
		m.createName, cmd = m.createName.Update(msg)
	case m.mode == modeCreate:
		m.createDesc, cmd = m.createDesc.Update(msg)
	case m.mode == modeUpload:
		m.uploadPath, cmd = m.uploadPath.Update(msg)
	}
	return cmd
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
