// Package attachments lists the files of one todo and lets the user upload,
// save, link and delete them.
package attachments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
	"github.com/nhle/todolist/internal/ui/card"
	"github.com/nhle/todolist/internal/ui/prompt"
	"github.com/nhle/todolist/internal/ui/session"
)

const uploadPromptID = "attachments.upload"

// Service is the subset of the attachment service this view needs.
type Service interface {
	List(ctx context.Context, todoID string) ([]model.Attachment, error)
	UploadFile(ctx context.Context, todoID, path string) (model.Attachment, error)
	Download(ctx context.Context, id, dir string) (string, error)
	URL(ctx context.Context, id string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, id string) error
}

// CloseMsg signals the parent to close the attachment view.
type CloseMsg struct{}

// ChangedMsg signals that attachments were added or removed.
type ChangedMsg struct{}

type viewMode int

const (
	modeList viewMode = iota
	modeUpload
	modeConfirmDelete
)

type loadedMsg struct {
	attachments []model.Attachment
	err         error
}

// doneMsg reports an operation. changed is set when the attachment set of
// the todo was modified.
type doneMsg struct {
	ok      string
	err     error
	changed bool
}

// Model is the Bubble Tea model for the attachment view.
type Model struct {
	mode        viewMode
	svc         Service
	keys        *keys.KeyMap
	state       *session.State
	downloadDir string
	urlTTL      time.Duration
	todo        model.TodoDetail
	attachments []model.Attachment
	selectedIdx int
	upload      prompt.Model
	confirmForm *huh.Form
	confirm     *bool
	pending     model.Attachment // attachment named by the delete dialog
	width       int
	height      int
}

// New creates an attachment view. Saved copies are written to downloadDir
// and signed links stay valid for urlTTL.
func New(svc Service, k *keys.KeyMap, state *session.State, downloadDir string, urlTTL time.Duration, width, height int) Model {
	return Model{
		svc:         svc,
		keys:        k,
		state:       state,
		downloadDir: downloadDir,
		urlTTL:      urlTTL,
		upload:      prompt.New(uploadPromptID, "Upload file", "Path to the file", width),
		confirm:     new(bool),
		width:       width,
		height:      height,
	}
}

// Open shows the attachments of t.
func (m *Model) Open(t model.TodoDetail) tea.Cmd {
	m.mode = modeList
	m.todo = t
	m.attachments = t.Attachments
	m.selectedIdx = 0
	return m.load()
}

// Capturing reports whether a prompt or form has keyboard focus.
func (m Model) Capturing() bool {
	return m.mode != modeList
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.state.Error(msg.err)
			return m, nil
		}
		m.attachments = msg.attachments
		if m.selectedIdx >= len(m.attachments) {
			m.selectedIdx = max(len(m.attachments)-1, 0)
		}
		return m, nil

	case doneMsg:
		m.mode = modeList
		m.state.Report(msg.err, msg.ok)
		if !msg.changed || msg.err != nil {
			return m, nil
		}
		return m, tea.Batch(m.load(), func() tea.Msg { return ChangedMsg{} })

	case prompt.SubmitMsg:
		if msg.ID != uploadPromptID {
			return m, nil
		}
		m.mode = modeList
		if msg.Value == "" {
			return m, nil
		}
		return m, m.uploadFile(msg.Value)

	case prompt.CancelMsg:
		if msg.ID == uploadPromptID {
			m.mode = modeList
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	switch m.mode {
	case modeUpload:
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		return m, cmd
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeUpload:
		var cmd tea.Cmd
		m.upload, cmd = m.upload.Update(msg)
		return m, cmd
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if m.selectedIdx < len(m.attachments)-1 {
			m.selectedIdx++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selectedIdx > 0 {
			m.selectedIdx--
		}
		return m, nil

	case msg.String() == "u", key.Matches(msg, m.keys.New):
		m.mode = modeUpload
		return m, m.upload.Open("")
	}

	a, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case msg.String() == "o", key.Matches(msg, m.keys.Expand):
		return m, m.download(a)

	case msg.String() == "y":
		return m, m.link(a)

	case key.Matches(msg, m.keys.Delete):
		*m.confirm = false
		m.pending = a
		m.confirmForm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q?", a.FileName)).
					Description("The stored file is removed as well.").
					Affirmative("Yes, delete").
					Negative("Cancel").
					Value(m.confirm),
			),
		).WithWidth(m.formWidth())
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	switch m.confirmForm.State {
	case huh.StateCompleted:
		return m.closeConfirm()
	case huh.StateAborted:
		*m.confirm = false
		return m.closeConfirm()
	}
	return m, cmd
}

// closeConfirm removes the attachment the dialog named, if confirmed.
func (m Model) closeConfirm() (Model, tea.Cmd) {
	a := m.pending
	m.mode, m.pending = modeList, model.Attachment{}
	if a.ID == "" || !*m.confirm {
		return m, nil
	}
	return m, m.remove(a)
}

func (m Model) selected() (model.Attachment, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.attachments) {
		return model.Attachment{}, false
	}
	return m.attachments[m.selectedIdx], true
}

// View renders the attachment view.
func (m Model) View() string {
	if m.mode == modeConfirmDelete && m.confirmForm != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirmForm.View())
	}

	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(card.IconAttachment + " Attachments · " + m.todo.Task))
	b.WriteString("\n\n")

	if len(m.attachments) == 0 {
		b.WriteString(theme.EmptyStyle.Render("No attachments. Press 'u' to upload a file."))
		b.WriteString("\n")
	}
	for i, a := range m.attachments {
		line := card.AttachmentLine(a)
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(theme.ListItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.mode == modeUpload {
		b.WriteString("\n")
		b.WriteString(m.upload.View())
	}

	b.WriteString("\n\n")
	b.WriteString(theme.HelpStyle.Render(
		"u upload | o save copy | y signed link | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.upload.SetSize(width-4, height)
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

// === Commands ===

func (m Model) load() tea.Cmd {
	svc, state, todoID := m.svc, m.state, m.todo.ID
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		list, err := svc.List(ctx, todoID)
		return loadedMsg{attachments: list, err: err}
	}
}

func (m Model) uploadFile(path string) tea.Cmd {
	svc, state, todoID := m.svc, m.state, m.todo.ID
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		a, err := svc.UploadFile(ctx, todoID, path)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{ok: fmt.Sprintf("Uploaded %s (%s)", a.FileName, card.FormatFileSize(a.FileSize)), changed: true}
	}
}

func (m Model) download(a model.Attachment) tea.Cmd {
	svc, state, dir := m.svc, m.state, m.downloadDir
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		path, err := svc.Download(ctx, a.ID, dir)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{ok: "Saved to " + path}
	}
}

func (m Model) link(a model.Attachment) tea.Cmd {
	svc, state, ttl := m.svc, m.state, m.urlTTL
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		url, err := svc.URL(ctx, a.ID, ttl)
		if err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{ok: url}
	}
}

func (m Model) remove(a model.Attachment) tea.Cmd {
	svc, state := m.svc, m.state
	return func() tea.Msg {
		ctx, cancel := state.Context()
		defer cancel()
		if err := svc.Delete(ctx, a.ID); err != nil {
			return doneMsg{err: err}
		}
		return doneMsg{ok: "Deleted " + a.FileName, changed: true}
	}
}
