package attachments

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/keys"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/ui/prompt"
	"github.com/nhle/todolist/internal/ui/session"
)

type fakeService struct {
	list     []model.Attachment
	uploaded []string
	ttl      time.Duration
	dir      string
	deleted  []string
}

func (f *fakeService) List(context.Context, string) ([]model.Attachment, error) {
	return f.list, nil
}

func (f *fakeService) UploadFile(_ context.Context, todoID, path string) (model.Attachment, error) {
	if path == "/missing.pdf" {
		return model.Attachment{}, apperr.Validationf("cannot read %s", path)
	}
	f.uploaded = append(f.uploaded, path)
	a := model.Attachment{ID: "a" + path, TodoID: todoID, FileName: "notes.txt", FileSize: 2048}
	f.list = append(f.list, a)
	return a, nil
}

func (f *fakeService) Download(_ context.Context, id, dir string) (string, error) {
	f.dir = dir
	return dir + "/notes.txt", nil
}

func (f *fakeService) URL(_ context.Context, id string, ttl time.Duration) (string, error) {
	f.ttl = ttl
	return "https://files.example.com/" + id + "?sig=abc", nil
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func open(t *testing.T, svc *fakeService) (Model, *session.State) {
	t.Helper()
	state := session.New(time.Second)
	m := New(svc, keys.DefaultKeyMap(), state, "/downloads", 30*time.Minute, 80, 30)
	cmd := m.Open(model.TodoDetail{Todo: model.Todo{ID: "t1", Task: "File taxes"}})
	m, _ = m.Update(cmd())
	return m, state
}

func TestUploadByPath(t *testing.T) {
	svc := &fakeService{}
	m, state := open(t, svc)
	assert.Contains(t, m.View(), "No attachments")

	m, _ = m.Update(runes("u"))
	assert.True(t, m.Capturing())

	m, cmd := m.Update(prompt.SubmitMsg{ID: uploadPromptID, Value: "/tmp/notes.txt"})
	assert.False(t, m.Capturing())
	require.NotNil(t, cmd)

	m, cmd = m.Update(cmd())
	assert.Equal(t, []string{"/tmp/notes.txt"}, svc.uploaded)
	msg, isErr := state.Flash()
	assert.False(t, isErr)
	assert.Equal(t, "Uploaded notes.txt (2.0 KB)", msg)
	require.NotNil(t, cmd, "an upload reloads the list")
}

func TestUploadErrorKeepsList(t *testing.T) {
	svc := &fakeService{}
	m, state := open(t, svc)

	m, _ = m.Update(runes("u"))
	m, cmd := m.Update(prompt.SubmitMsg{ID: uploadPromptID, Value: "/missing.pdf"})
	_, cmd = m.Update(cmd())
	assert.Nil(t, cmd)

	msg, isErr := state.Flash()
	assert.True(t, isErr)
	assert.Contains(t, msg, "cannot read /missing.pdf")
}

func TestSaveCopyAndLink(t *testing.T) {
	svc := &fakeService{list: []model.Attachment{{ID: "a1", FileName: "notes.txt", FileSize: 10}}}
	m, state := open(t, svc)
	assert.Contains(t, m.View(), "notes.txt (10 B)")

	m, cmd := m.Update(runes("o"))
	m, _ = m.Update(cmd())
	assert.Equal(t, "/downloads", svc.dir)
	msg, _ := state.Flash()
	assert.Equal(t, "Saved to /downloads/notes.txt", msg)

	m, cmd = m.Update(runes("y"))
	_, _ = m.Update(cmd())
	assert.Equal(t, 30*time.Minute, svc.ttl)
	msg, _ = state.Flash()
	assert.Equal(t, "https://files.example.com/a1?sig=abc", msg)
}

func TestCancelUpload(t *testing.T) {
	m, _ := open(t, &fakeService{})
	m, _ = m.Update(runes("u"))
	m, _ = m.Update(prompt.CancelMsg{ID: uploadPromptID})
	assert.False(t, m.Capturing())
}

func TestDeleteUsesAttachmentFromDialog(t *testing.T) {
	first := model.Attachment{ID: "f1", TodoID: "t1", FileName: "scan.pdf"}
	second := model.Attachment{ID: "f2", TodoID: "t1", FileName: "receipt.png"}
	svc := &fakeService{list: []model.Attachment{first, second}}
	m, _ := open(t, svc)

	m, _ = m.Update(runes("d"))
	require.True(t, m.Capturing())
	m, _ = m.Update(loadedMsg{attachments: []model.Attachment{second}})

	*m.confirm = true
	m, cmd := m.closeConfirm()
	require.NotNil(t, cmd)
	assert.False(t, m.Capturing())
	cmd()
	assert.Equal(t, []string{"f1"}, svc.deleted)
}
