// Package session holds the state a user builds up while browsing the list:
// filters, sort order, expanded cards and the status-bar message. One State
// lives for the whole program and is shared by pointer with the views.
package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

// DefaultTimeout bounds each service call when none is configured.
const DefaultTimeout = 15 * time.Second

// State is the session-scoped UI state.
type State struct {
	Filter   store.TodoFilter
	Timeout  time.Duration
	Expanded map[string]bool

	flash      string
	flashError bool
}

// New returns a State with default filters.
func New(timeout time.Duration) *State {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &State{
		Filter:   store.TodoFilter{Status: store.StatusAll, Sort: store.SortDefault},
		Timeout:  timeout,
		Expanded: make(map[string]bool),
	}
}

// Context returns a context bounded by the per-operation timeout.
func (s *State) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.Timeout)
}

// === Filters ===

var statusCycle = []store.StatusFilter{store.StatusAll, store.StatusActive, store.StatusCompleted}

// CycleStatus advances all → active → completed → all.
func (s *State) CycleStatus() {
	s.Filter.Status = statusCycle[(indexOf(statusCycle, s.Filter.Status)+1)%len(statusCycle)]
}

// CyclePriority advances all → high → medium → low → all.
func (s *State) CyclePriority() {
	order := []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}
	if s.Filter.Priority == nil {
		p := order[0]
		s.Filter.Priority = &p
		return
	}
	next := indexOf(order, *s.Filter.Priority) + 1
	if next >= len(order) {
		s.Filter.Priority = nil
		return
	}
	p := order[next]
	s.Filter.Priority = &p
}

// CycleCategory advances through all categories, then back to no filter.
func (s *State) CycleCategory(categories []model.Category) {
	ids := make([]string, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	s.Filter.CategoryID = cycleID(ids, s.Filter.CategoryID)
}

// CycleTag advances through all tags one at a time, then back to no filter.
func (s *State) CycleTag(tags []model.Tag) {
	ids := make([]string, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	var current *string
	if len(s.Filter.TagIDs) == 1 {
		current = &s.Filter.TagIDs[0]
	}
	next := cycleID(ids, current)
	if next == nil {
		s.Filter.TagIDs = nil
		return
	}
	s.Filter.TagIDs = []string{*next}
}

// CycleSort advances to the next sort mode.
func (s *State) CycleSort() {
	s.Filter.Sort = store.SortModes[(indexOf(store.SortModes, s.Filter.Sort)+1)%len(store.SortModes)]
}

// SetQuery sets the search text.
func (s *State) SetQuery(q string) {
	s.Filter.Query = strings.TrimSpace(q)
}

// ClearFilters resets everything except the sort order.
func (s *State) ClearFilters() {
	s.Filter = store.TodoFilter{Status: store.StatusAll, Sort: s.Filter.Sort}
}

// HasFilters reports whether any filter narrows the list.
func (s *State) HasFilters() bool {
	f := s.Filter
	return (f.Status != "" && f.Status != store.StatusAll) ||
		f.Priority != nil || f.CategoryID != nil || len(f.TagIDs) > 0 || f.Query != ""
}

// FilterSummary describes the active filters using category and tag names.
func (s *State) FilterSummary(categories []model.Category, tags []model.Tag) string {
	f := s.Filter
	var parts []string
	if f.Status != "" && f.Status != store.StatusAll {
		parts = append(parts, string(f.Status))
	}
	if f.Priority != nil {
		parts = append(parts, "priority:"+string(*f.Priority))
	}
	if f.CategoryID != nil {
		name := "?"
		for _, c := range categories {
			if c.ID == *f.CategoryID {
				name = c.Name
			}
		}
		parts = append(parts, "category:"+name)
	}
	for _, id := range f.TagIDs {
		for _, t := range tags {
			if t.ID == id {
				parts = append(parts, "#"+t.Name)
			}
		}
	}
	if f.Query != "" {
		parts = append(parts, fmt.Sprintf("%q", f.Query))
	}
	parts = append(parts, "sort:"+string(f.Sort))
	return strings.Join(parts, " · ")
}

// === Cards ===

// ToggleExpanded flips whether the card for id shows its details.
func (s *State) ToggleExpanded(id string) {
	if s.Expanded[id] {
		delete(s.Expanded, id)
		return
	}
	s.Expanded[id] = true
}

// IsExpanded reports whether the card for id is expanded.
func (s *State) IsExpanded(id string) bool {
	return s.Expanded[id]
}

// === Status bar ===

// Info shows a confirmation message.
func (s *State) Info(msg string) {
	s.flash, s.flashError = msg, false
}

// Error shows err as a user-facing message. A nil err clears the bar.
func (s *State) Error(err error) {
	if err == nil {
		s.ClearFlash()
		return
	}
	s.flash, s.flashError = apperr.UserMessage(err), true
}

// Report shows err when non-nil and ok otherwise.
func (s *State) Report(err error, ok string) {
	if err != nil {
		s.Error(err)
		return
	}
	s.Info(ok)
}

// Flash returns the current message and whether it is an error.
func (s *State) Flash() (string, bool) {
	return s.flash, s.flashError
}

// ClearFlash removes the current message.
func (s *State) ClearFlash() {
	s.flash, s.flashError = "", false
}

func indexOf[T comparable](items []T, v T) int {
	for i, item := range items {
		if item == v {
			return i
		}
	}
	return 0
}

func cycleID(ids []string, current *string) *string {
	if len(ids) == 0 {
		return nil
	}
	if current == nil {
		return &ids[0]
	}
	for i, id := range ids {
		if id == *current {
			if i+1 < len(ids) {
				return &ids[i+1]
			}
			return nil
		}
	}
	return &ids[0]
}
