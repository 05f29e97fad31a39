package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/model"
	"github.com/nhle/todolist/internal/store"
)

func TestCycleStatus(t *testing.T) {
	s := New(0)
	assert.Equal(t, DefaultTimeout, s.Timeout)

	var seen []store.StatusFilter
	for range 4 {
		s.CycleStatus()
		seen = append(seen, s.Filter.Status)
	}
	assert.Equal(t, []store.StatusFilter{
		store.StatusActive, store.StatusCompleted, store.StatusAll, store.StatusActive,
	}, seen)
}

func TestCyclePriority(t *testing.T) {
	s := New(time.Second)

	s.CyclePriority()
	require.NotNil(t, s.Filter.Priority)
	assert.Equal(t, model.PriorityHigh, *s.Filter.Priority)
	s.CyclePriority()
	assert.Equal(t, model.PriorityMedium, *s.Filter.Priority)
	s.CyclePriority()
	assert.Equal(t, model.PriorityLow, *s.Filter.Priority)
	s.CyclePriority()
	assert.Nil(t, s.Filter.Priority)
}

func TestCycleCategoryAndTag(t *testing.T) {
	s := New(time.Second)
	cats := []model.Category{{ID: "c1", Name: "Work"}, {ID: "c2", Name: "Home"}}
	tags := []model.Tag{{ID: "t1", Name: "urgent"}}

	s.CycleCategory(cats)
	assert.Equal(t, "c1", *s.Filter.CategoryID)
	s.CycleCategory(cats)
	assert.Equal(t, "c2", *s.Filter.CategoryID)
	s.CycleCategory(cats)
	assert.Nil(t, s.Filter.CategoryID)

	s.CycleCategory(nil)
	assert.Nil(t, s.Filter.CategoryID, "nothing to cycle through")

	s.CycleTag(tags)
	assert.Equal(t, []string{"t1"}, s.Filter.TagIDs)
	s.CycleTag(tags)
	assert.Nil(t, s.Filter.TagIDs)
}

func TestFilterSummaryAndClear(t *testing.T) {
	s := New(time.Second)
	assert.False(t, s.HasFilters())

	cats := []model.Category{{ID: "c1", Name: "Work"}}
	tags := []model.Tag{{ID: "t1", Name: "urgent"}}
	s.CycleStatus()
	s.CyclePriority()
	s.CycleCategory(cats)
	s.CycleTag(tags)
	s.SetQuery("  report ")
	s.CycleSort()

	assert.True(t, s.HasFilters())
	assert.Equal(t,
		`active · priority:high · category:Work · #urgent · "report" · sort:priority`,
		s.FilterSummary(cats, tags))

	s.ClearFilters()
	assert.False(t, s.HasFilters())
	assert.Equal(t, store.SortPriority, s.Filter.Sort, "sort survives clearing")
}

func TestCycleSortWraps(t *testing.T) {
	s := New(time.Second)
	for range store.SortModes {
		s.CycleSort()
	}
	assert.Equal(t, store.SortDefault, s.Filter.Sort)
}

func TestExpanded(t *testing.T) {
	s := New(time.Second)
	s.ToggleExpanded("a")
	assert.True(t, s.IsExpanded("a"))
	s.ToggleExpanded("a")
	assert.False(t, s.IsExpanded("a"))
}

func TestFlash(t *testing.T) {
	s := New(time.Second)

	s.Report(nil, "Todo created")
	msg, isErr := s.Flash()
	assert.Equal(t, "Todo created", msg)
	assert.False(t, isErr)

	s.Report(fmt.Errorf("category Work: %w", apperr.ErrConflict), "unused")
	msg, isErr = s.Flash()
	assert.True(t, isErr)
	assert.Contains(t, msg, "choose a different name")

	s.Error(nil)
	msg, _ = s.Flash()
	assert.Empty(t, msg)
}

func TestContextHasDeadline(t *testing.T) {
	s := New(5 * time.Second)
	ctx, cancel := s.Context()
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}
