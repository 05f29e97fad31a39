package todolist

import (
	"time"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/ui/card"
)

// renderCard draws one todo. now is read once per card so due-date status
// reflects the moment of rendering.
func renderCard(t model.TodoDetail, width int, selected, expanded bool) string {
	return card.Render(t, card.Options{
		Width:    width,
		Selected: selected,
		Expanded: expanded,
		Now:      time.Now(),
	})
}
