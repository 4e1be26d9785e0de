package tui

import (
	"charm.land/bubbles/v2/key"
)

// keyMap holds key bindings for help bar display.
type keyMap struct {
	Navigate   key.Binding
	SwitchPane key.Binding
	Select     key.Binding
	Create     key.Binding
	Upload     key.Binding
	DeleteBase key.Binding
	DeleteFile key.Binding
	Refresh    key.Binding
	Logout     key.Binding
	Confirm    key.Binding
	Reject     key.Binding
	Submit     key.Binding
	NextField  key.Binding
	Cancel     key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Navigate:   key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "navigate")),
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Create:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "create")),
		Upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		DeleteBase: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete kb")),
		DeleteFile: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete file")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh files")),
		Logout:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
		Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Reject:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		NextField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

// browserBindings returns the help bindings for the current browser mode.
func (m *Model) browserBindings() []key.Binding {
	switch m.mode {
	case modeCreate:
		return []key.Binding{m.keys.NextField, m.keys.Submit, m.keys.Cancel}
	case modeUpload:
		return []key.Binding{m.keys.Submit, m.keys.Cancel}
	case modeConfirmBase, modeConfirmFile:
		return []key.Binding{m.keys.Confirm, m.keys.Reject}
	}
	if m.focus == paneFiles {
		return []key.Binding{
			m.keys.Navigate, m.keys.SwitchPane, m.keys.Upload,
			m.keys.DeleteFile, m.keys.Refresh, m.keys.Quit,
		}
	}
	return []key.Binding{
		m.keys.Navigate, m.keys.Select, m.keys.SwitchPane,
		m.keys.Create, m.keys.DeleteBase, m.keys.Logout, m.keys.Quit,
	}
}
