package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Priority is the urgency level of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority converts user input into a Priority. An empty string yields
// the default (medium).
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityMedium, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Rank orders priorities so that sorting by rank descending puts high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Color is the display color of the priority badge.
func (p Priority) Color() string {
	switch p {
	case PriorityHigh:
		return "#EF4444"
	case PriorityMedium:
		return "#F59E0B"
	case PriorityLow:
		return "#10B981"
	}
	return "#6B7280"
}

// Todo is a single task owned by the user.
type Todo struct {
	ID               string     `json:"id" db:"id"`
	Task             string     `json:"task" db:"task"`
	Description      string     `json:"description" db:"description"`
	Completed        bool       `json:"completed" db:"completed"`
	Priority         Priority   `json:"priority" db:"priority"`
	DueDate          *time.Time `json:"due_date,omitempty" db:"due_date"`
	CategoryID       *string    `json:"category_id,omitempty" db:"category_id"`
	TimeSpentMinutes int        `json:"time_spent_minutes" db:"time_spent_minutes"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// DueStatus classifies how close a todo is to its due date.
type DueStatus string

const (
	DueNone    DueStatus = ""
	DueOverdue DueStatus = "overdue"
	DueSoon    DueStatus = "due soon"
	DueOnTrack DueStatus = "on track"
)

// dueSoonWindow is how far ahead a due date counts as "due soon".
const dueSoonWindow = 4 * 24 * time.Hour

// DueStatus returns the due-date classification at instant now.
// Completed todos and todos without a due date have no status.
func (t Todo) DueStatus(now time.Time) DueStatus {
	if t.DueDate == nil || t.Completed {
		return DueNone
	}
	switch d := t.DueDate.Sub(now); {
	case d < 0:
		return DueOverdue
	case d < dueSoonWindow:
		return DueSoon
	default:
		return DueOnTrack
	}
}

// TodoDetail is a todo joined with everything it owns or references.
type TodoDetail struct {
	Todo

	Category    *Category    `json:"category,omitempty"`
	Tags        []Tag        `json:"tags,omitempty"`
	Subtasks    []Subtask    `json:"subtasks,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// SubtaskStats summarises subtask completion for a todo.
type SubtaskStats struct {
	Total      int
	Completed  int
	Percentage float64
}

// SubtaskStats computes completion counts. Percentage is rounded to one
// decimal place and is zero when there are no subtasks.
func (d TodoDetail) SubtaskStats() SubtaskStats {
	stats := SubtaskStats{Total: len(d.Subtasks)}
	for _, s := range d.Subtasks {
		if s.Completed {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		pct := float64(stats.Completed) / float64(stats.Total) * 100
		stats.Percentage = math.Round(pct*10) / 10
	}
	return stats
}

// TagIDs returns the ids of the todo's tags in display order.
func (d TodoDetail) TagIDs() []string {
	ids := make([]string, 0, len(d.Tags))
	for _, t := range d.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
