package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/hengxingtx/ragnews-cli/internal/knowledge"
)

// View implements tea.Model.
func (m *Model) View() tea.View {
	var content string
	if m.view == viewLogin {
		content = m.renderLogin()
	} else {
		content = m.renderBrowser()
	}

	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderLogin renders the unauthenticated entry point.
func (m *Model) renderLogin() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("RAG News"))
	b.WriteString("\n\n")

	if m.loginNote != "" {
		b.WriteString(m.styles.Notice.Render(m.loginNote))
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.FormLabel.Render("Username"))
	b.WriteString("\n")
	b.WriteString(m.username.View())
	b.WriteString("\n\n")
	b.WriteString(m.styles.FormLabel.Render("Password"))
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.loggingIn {
		b.WriteString(m.spinner.View())
		b.WriteString(" Signing in...\n")
	} else if m.loginErr != "" {
		b.WriteString(m.styles.Error.Render(m.loginErr))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Dim.Render("enter to sign in · tab to switch fields · ctrl+c to quit"))
	return b.String()
}

// renderBrowser renders the knowledge base browser: the base list pane on
// the left, the selected base's detail and files on the right, and any
// open form or confirmation prompt below.
func (m *Model) renderBrowser() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("RAG News · Knowledge Bases"))
	if m.ctrl.Busy() || m.loading {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderSeparator())
	b.WriteString("\n")

	left := m.renderBasesPane()
	right := m.renderFilesPane()
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	switch m.mode {
	case modeCreate:
		b.WriteString(m.renderCreateForm())
	case modeUpload:
		b.WriteString(m.renderUploadPrompt())
	case modeConfirmBase:
		if sel, ok := m.ctrl.Selected(); ok {
			b.WriteString(m.styles.Error.Render(
				fmt.Sprintf("Delete knowledge base %q and all its files? (y/n)", sel.Name)))
			b.WriteString("\n")
		}
	case modeConfirmFile:
		b.WriteString(m.styles.Error.Render("Delete this file? (y/n)"))
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(m.styles.Error.Render("Error: " + m.errMsg))
		b.WriteString("\n")
	}

	b.WriteString(m.renderSeparator())
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.browserBindings()))
	return b.String()
}

// renderBasesPane renders the knowledge base list in server order.
func (m *Model) renderBasesPane() string {
	var b strings.Builder

	title := "Knowledge Bases"
	if m.focus == paneBases {
		title = "» " + title
	}
	b.WriteString(m.styles.PaneTitle.Render(title))
	b.WriteString("\n")

	bases := m.ctrl.Bases()
	if len(bases) == 0 {
		b.WriteString(m.styles.Dim.Render("none yet — press c to create one"))
		b.WriteString("\n")
	}

	selected, hasSelection := m.ctrl.Selected()
	for i, kb := range bases {
		line := fmt.Sprintf("%s (%d files)", kb.Name, kb.FileCount)
		switch {
		case m.focus == paneBases && i == m.baseCursor:
			line = m.styles.Cursor.Render("> " + line)
		case hasSelection && kb.ID == selected.ID:
			line = m.styles.Selected.Render("* " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(basesPaneWidth).Render(b.String())
}

// renderFilesPane renders the selected base's description and files.
func (m *Model) renderFilesPane() string {
	sel, ok := m.ctrl.Selected()
	if !ok {
		return m.styles.Dim.Render("select a knowledge base to see its files")
	}

	var b strings.Builder

	title := "Files · " + sel.Name
	if m.focus == paneFiles {
		title = "» " + title
	}
	b.WriteString(m.styles.PaneTitle.Render(title))
	b.WriteString("\n")

	if sel.Description != nil && *sel.Description != "" {
		b.WriteString(m.styles.Dim.Render(*sel.Description))
		b.WriteString("\n")
	}

	files := m.ctrl.Files()
	if len(files) == 0 {
		b.WriteString(m.styles.Dim.Render("no files — press u to upload"))
		b.WriteString("\n")
		return b.String()
	}

	for i, f := range files {
		cursor := "  "
		if m.focus == paneFiles && i == m.fileCursor {
			cursor = m.styles.Cursor.Render("> ")
		}
		b.WriteString(cursor)
		b.WriteString(m.renderFileRow(f))
		b.WriteString("\n")
	}
	return b.String()
}

// renderFileRow renders one file line: name, size, status, upload time.
func (m *Model) renderFileRow(f knowledge.File) string {
	return fmt.Sprintf("%-40s %10s  %s  %s",
		truncate(f.OriginalFilename, 40),
		humanize.Bytes(uint64(f.FileSize)),
		m.styles.RenderStatus(f.Status),
		m.styles.Dim.Render(f.CreatedAt.Format("2006-01-02 15:04")))
}

// renderCreateForm renders the create-knowledge-base form.
func (m *Model) renderCreateForm() string {
	var b strings.Builder
	b.WriteString(m.styles.PaneTitle.Render("New knowledge base"))
	b.WriteString("\n")
	b.WriteString(m.styles.FormLabel.Render("Name: "))
	b.WriteString(m.createName.View())
	b.WriteString("\n")
	b.WriteString(m.styles.FormLabel.Render("Description: "))
	b.WriteString(m.createDesc.View())
	b.WriteString("\n")
	return b.String()
}

// renderUploadPrompt renders the upload path prompt.
func (m *Model) renderUploadPrompt() string {
	var b strings.Builder
	b.WriteString(m.styles.PaneTitle.Render("Upload file"))
	b.WriteString("\n")
	b.WriteString(m.styles.FormLabel.Render("Path: "))
	b.WriteString(m.uploadPath.View())
	b.WriteString("\n")
	return b.String()
}

// renderSeparator returns a horizontal line separator.
func (m *Model) renderSeparator() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	return m.styles.Separator.Render(strings.Repeat("─", width))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
