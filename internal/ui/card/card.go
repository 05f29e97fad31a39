// Package card renders todos as cards for the list view. Every function is
// pure: it takes the data and returns a string.
package card

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/theme"
)

// Options controls how a card is drawn.
type Options struct {
	Width    int
	Selected bool
	Expanded bool
	Now      time.Time
}

// Render draws one todo card.
func Render(d model.TodoDetail, opts Options) string {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	lines := []string{Title(d.Todo)}
	if summary := Summary(d, opts.Now); summary != "" {
		lines = append(lines, summary)
	}
	if progress := SubtaskProgress(d.SubtaskStats()); progress != "" {
		lines = append(lines, progress)
	}
	if tags := TagChips(d.Tags); tags != "" {
		lines = append(lines, tags)
	}
	if opts.Expanded {
		lines = append(lines, details(d)...)
	}

	style := theme.CardStyle
	if opts.Selected {
		style = theme.SelectedCardStyle
	}
	if opts.Width > 4 {
		style = style.Width(opts.Width - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// Title renders the completion mark and the task text. Completed todos are
// struck through.
func Title(t model.Todo) string {
	if t.Completed {
		return "✓ " + theme.CompletedStyle.Render(t.Task)
	}
	return "○ " + lipgloss.NewStyle().Bold(true).Render(t.Task)
}

// Summary joins the priority badge, category chip and due date.
func Summary(d model.TodoDetail, now time.Time) string {
	parts := []string{PriorityBadge(d.Priority)}
	if d.Category != nil {
		parts = append(parts, CategoryChip(*d.Category))
	}
	if due := DueDate(d.Todo, now); due != "" {
		parts = append(parts, due)
	}
	return strings.Join(parts, " ")
}

// PriorityBadge renders the priority as a colored label.
func PriorityBadge(p model.Priority) string {
	if !p.Valid() {
		p = model.PriorityMedium
	}
	return theme.PriorityStyle(p).Render(strings.ToUpper(string(p)))
}

// CategoryChip renders a category in its own color.
func CategoryChip(c model.Category) string {
	return theme.ChipStyle(c.Color).Render(IconCategory + " " + c.Name)
}

// TagChips renders tag names, or "" when there are none.
func TagChips(tags []model.Tag) string {
	if len(tags) == 0 {
		return ""
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = "#" + t.Name
	}
	return theme.TagStyle.Render(IconTag + " " + strings.Join(names, " "))
}

// DueDate renders the due date with its status, or "" when undated.
// Completed todos show the date without a status.
func DueDate(t model.Todo, now time.Time) string {
	if t.DueDate == nil {
		return ""
	}
	date := IconDueDate + " " + t.DueDate.Local().Format("Jan 02, 2006")
	status := t.DueStatus(now)
	if status == model.DueNone {
		return theme.DimmedStyle.Render(date)
	}
	return theme.DueStyle(status).Render(date + " (" + string(status) + ")")
}

// TimeTracking renders the time spent on a todo.
func TimeTracking(minutes int) string {
	if minutes == 0 {
		return IconTime + " No time tracked"
	}
	return IconTime + " " + FormatTimeSpent(minutes)
}

// SubtaskProgress renders "✓ c/t subtasks (p%)", or "" without subtasks.
func SubtaskProgress(s model.SubtaskStats) string {
	if s.Total == 0 {
		return ""
	}
	pct := strconv.FormatFloat(s.Percentage, 'f', -1, 64)
	return fmt.Sprintf("%s %d/%d subtasks (%s%%)", IconSubtask, s.Completed, s.Total, pct)
}

// AttachmentLine renders one attachment with its icon and size.
func AttachmentLine(a model.Attachment) string {
	return fmt.Sprintf("%s %s (%s)", FileIcon(a.FileName), a.FileName, FormatFileSize(a.FileSize))
}

// SubtaskLine renders one checklist entry.
func SubtaskLine(s model.Subtask) string {
	if s.Completed {
		return "☑ " + theme.CompletedStyle.Render(s.Title)
	}
	return "☐ " + s.Title
}

func details(d model.TodoDetail) []string {
	sep := theme.DimmedStyle.Render(strings.Repeat("─", 24))
	lines := []string{sep}

	if d.Description != "" {
		lines = append(lines, d.Description, "")
	}
	lines = append(lines, TimeTracking(d.TimeSpentMinutes))

	if len(d.Subtasks) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Subtasks"))
		for _, s := range d.Subtasks {
			lines = append(lines, "  "+SubtaskLine(s))
		}
	}
	if len(d.Attachments) > 0 {
		lines = append(lines, "", lipgloss.NewStyle().Bold(true).Render("Attachments"))
		for _, a := range d.Attachments {
			lines = append(lines, "  "+AttachmentLine(a))
		}
	}

	lines = append(lines, "", theme.DimmedStyle.Render(fmt.Sprintf(
		"created %s · updated %s",
		d.CreatedAt.Local().Format("2006-01-02 15:04"),
		d.UpdatedAt.Local().Format("2006-01-02 15:04"),
	)))
	return lines
}
