package card_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/testutil"
	"github.com/nhle/todolist/internal/todo"
	"github.com/nhle/todolist/internal/ui/card"
)

type noBlobs struct{}

func (noBlobs) RemoveBlobs(context.Context, []string) error { return nil }

func TestFormatTimeSpent(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{120, "2h"},
		{150, "2h 30m"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, card.FormatTimeSpent(tt.minutes))
		})
	}
	assert.Equal(t, "⏱️ No time tracked", card.TimeTracking(0))
	assert.Equal(t, "⏱️ 2h 30m", card.TimeTracking(150))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "243 B", card.FormatFileSize(243))
	assert.Equal(t, "1.5 KB", card.FormatFileSize(1536))
	assert.Equal(t, "1.5 MB", card.FormatFileSize(1536*1024))
}

func TestFileIcon(t *testing.T) {
	assert.Equal(t, "📄", card.FileIcon("report.PDF"))
	assert.Equal(t, "🖼️", card.FileIcon("photo.jpeg"))
	assert.Equal(t, "📎", card.FileIcon("README"))
	assert.Equal(t, "📎", card.FileIcon("archive.tar"))
}

func TestSubtaskProgress(t *testing.T) {
	assert.Empty(t, card.SubtaskProgress(model.SubtaskStats{}))
	assert.Equal(t, "✓ 1/3 subtasks (33.3%)",
		card.SubtaskProgress(model.SubtaskStats{Total: 3, Completed: 1, Percentage: 33.3}))
}

func TestDueDate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	soon := now.Add(48 * time.Hour)
	far := now.Add(30 * 24 * time.Hour)

	assert.Empty(t, card.DueDate(model.Todo{}, now))
	assert.Contains(t, card.DueDate(model.Todo{DueDate: &past}, now), "overdue")
	assert.Contains(t, card.DueDate(model.Todo{DueDate: &soon}, now), "due soon")
	assert.Contains(t, card.DueDate(model.Todo{DueDate: &far}, now), "on track")
	assert.NotContains(t, card.DueDate(model.Todo{DueDate: &past, Completed: true}, now), "overdue")
}

func TestRender_Expanded(t *testing.T) {
	d := model.TodoDetail{
		Todo: model.Todo{
			Task:             "Prepare slides",
			Description:      "for Monday",
			Priority:         model.PriorityHigh,
			TimeSpentMinutes: 45,
		},
		Category:    &model.Category{Name: "Work", Color: "#FF0000"},
		Tags:        []model.Tag{{Name: "talk"}},
		Subtasks:    []model.Subtask{{Title: "Outline"}},
		Attachments: []model.Attachment{{FileName: "deck.pdf", FileSize: 1536}},
	}

	collapsed := card.Render(d, card.Options{Width: 80})
	assert.Contains(t, collapsed, "○ Prepare slides")
	assert.Contains(t, collapsed, "HIGH")
	assert.Contains(t, collapsed, "Work")
	assert.Contains(t, collapsed, "#talk")
	assert.Contains(t, collapsed, "0/1 subtasks")
	assert.NotContains(t, collapsed, "deck.pdf")

	expanded := card.Render(d, card.Options{Width: 80, Expanded: true})
	assert.Contains(t, expanded, "for Monday")
	assert.Contains(t, expanded, "⏱️ 45m")
	assert.Contains(t, expanded, "☐ Outline")
	assert.Contains(t, expanded, "📄 deck.pdf (1.5 KB)")
}

func TestBuyMilkScenario(t *testing.T) {
	ctx := context.Background()
	svc := todo.NewService(testutil.NewTestStore(t), noBlobs{}, zap.NewNop())

	created, err := svc.Create(ctx, todo.Input{Task: "Buy milk", Priority: model.PriorityLow})
	require.NoError(t, err)
	sub, err := svc.AddSubtask(ctx, created.ID, "Check expiry")
	require.NoError(t, err)
	_, err = svc.ToggleSubtask(ctx, sub.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, created.ID)
	require.NoError(t, err)

	d, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, d.Completed)

	out := card.Render(d, card.Options{Width: 80})
	assert.Contains(t, out, "✓ ")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "○")
	assert.Contains(t, out, "1/1")
	assert.Contains(t, out, "(100%)")
	assert.Contains(t, out, "LOW")
}
