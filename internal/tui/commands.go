package tui

import (
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"

	"github.com/hengxingtx/ragnews-cli/internal/controller"
	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
	"github.com/hengxingtx/ragnews-cli/internal/session"
)

// Discriminated message types for command results. Each mutating result
// carries the controller tag it was started with, so Update can route the
// outcome through the matching Finish method.
type (
	loginDoneMsg struct {
		tok session.Token
		err error
	}

	basesLoadedMsg struct {
		bases []knowledge.Base
		err   error
	}

	filesLoadedMsg struct {
		fetch controller.FilesFetch
		files []knowledge.File
		err   error
	}

	createDoneMsg struct {
		req controller.BaseCreate
		err error
	}

	baseDeleteDoneMsg struct {
		req controller.BaseDelete
		err error
	}

	uploadDoneMsg struct {
		req controller.Upload
		err error
	}

	fileDeleteDoneMsg struct {
		req controller.FileDelete
		err error
	}
)

// login runs the credential exchange.
func (m *Model) login(username, password string) tea.Cmd {
	return func() tea.Msg {
		tok, err := m.client.Login(m.ctx, username, password)
		return loginDoneMsg{tok: tok, err: err}
	}
}

// loadBases fetches the knowledge base list.
func (m *Model) loadBases() tea.Cmd {
	return func() tea.Msg {
		bases, err := m.client.ListBases(m.ctx)
		return basesLoadedMsg{bases: bases, err: err}
	}
}

// loadFiles fetches the file list for the tagged base.
func (m *Model) loadFiles(fetch controller.FilesFetch) tea.Cmd {
	return func() tea.Msg {
		files, err := m.client.ListFiles(m.ctx, fetch.BaseID)
		return filesLoadedMsg{fetch: fetch, files: files, err: err}
	}
}

// createBase creates a knowledge base. An empty description is sent as
// absent, not as "".
func (m *Model) createBase(req controller.BaseCreate, name, description string) tea.Cmd {
	return func() tea.Msg {
		var desc *string
		if description != "" {
			desc = &description
		}
		err := m.client.CreateBase(m.ctx, name, desc)
		return createDoneMsg{req: req, err: err}
	}
}

// deleteBase deletes the tagged knowledge base.
func (m *Model) deleteBase(req controller.BaseDelete) tea.Cmd {
	return func() tea.Msg {
		err := m.client.DeleteBase(m.ctx, req.BaseID)
		return baseDeleteDoneMsg{req: req, err: err}
	}
}

// uploadFile reads the local file and uploads it to the tagged base.
func (m *Model) uploadFile(req controller.Upload, path string) tea.Cmd {
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return uploadDoneMsg{req: req, err: err}
		}
		defer f.Close()

		err = m.client.UploadFile(m.ctx, req.BaseID, filepath.Base(path), f)
		return uploadDoneMsg{req: req, err: err}
	}
}

// deleteFile deletes the tagged file.
func (m *Model) deleteFile(req controller.FileDelete) tea.Cmd {
	return func() tea.Msg {
		err := m.client.DeleteFile(m.ctx, req.BaseID, req.FileID)
		return fileDeleteDoneMsg{req: req, err: err}
	}
}
