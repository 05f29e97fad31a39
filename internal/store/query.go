package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// priorityRank orders priorities so that DESC puts high first.
const priorityRank = "CASE todos.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// todoQuery builds the list query for a TodoFilter.
func (s *SQLStore) todoQuery(filter TodoFilter) squirrel.SelectBuilder {
	q := applyTodoFilter(s.builder.Select(todoColumns).From("todos"), filter, s.lower)
	q = q.OrderBy(todoOrder(filter.Sort)...)

	return q
}

// todoCountQuery builds the count query for a TodoFilter. Sorting is ignored.
func (s *SQLStore) todoCountQuery(filter TodoFilter) squirrel.SelectBuilder {
	return applyTodoFilter(s.builder.Select("COUNT(*)").From("todos"), filter, s.lower)
}

// applyTodoFilter adds the filter's conditions. lower names the SQL function
// that folds case for the search term.
func applyTodoFilter(q squirrel.SelectBuilder, filter TodoFilter, lower string) squirrel.SelectBuilder {
	switch filter.Status {
	case StatusActive:
		q = q.Where(squirrel.Eq{"todos.completed": false})
	case StatusCompleted:
		q = q.Where(squirrel.Eq{"todos.completed": true})
	}
	if filter.Priority != nil {
		q = q.Where(squirrel.Eq{"todos.priority": string(*filter.Priority)})
	}
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"todos.category_id": *filter.CategoryID})
	}
	if len(filter.TagIDs) > 0 {
		sub, args, _ := squirrel.Select("1").
			From("todo_tags tt").
			Where("tt.todo_id = todos.id").
			Where(squirrel.Eq{"tt.tag_id": filter.TagIDs}).
			ToSql()
		q = q.Where(squirrel.Expr("EXISTS ("+sub+")", args...))
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(squirrel.Or{
			squirrel.Expr(lower+`(todos.task) LIKE ? ESCAPE '\'`, like),
			squirrel.Expr(lower+`(todos.description) LIKE ? ESCAPE '\'`, like),
			squirrel.Expr(`EXISTS (
				SELECT 1 FROM todo_tags st
				INNER JOIN tags sg ON sg.id = st.tag_id
				WHERE st.todo_id = todos.id AND `+lower+`(sg.name) LIKE ? ESCAPE '\')`, like),
		})
	}
	return q
}

func todoOrder(mode SortMode) []string {
	switch mode {
	case SortPriority:
		return []string{priorityRank + " DESC", "todos.created_at DESC", "todos.id"}
	case SortDueDate:
		return []string{"todos.due_date IS NULL", "todos.due_date ASC", "todos.created_at DESC", "todos.id"}
	case SortCreated:
		return []string{"todos.created_at DESC", "todos.id"}
	default:
		return []string{
			priorityRank + " DESC",
			"todos.due_date IS NULL",
			"todos.due_date ASC",
			"todos.created_at DESC",
			"todos.id",
		}
	}
}

// selectBuilt runs a squirrel query. Its placeholders are already in the
// dialect's format, so no rebinding happens.
func (s *SQLStore) selectBuilt(ctx context.Context, dest any, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return sqlx.SelectContext(ctx, s.q, dest, query, args...)
}

func (s *SQLStore) getBuilt(ctx context.Context, dest any, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return sqlx.GetContext(ctx, s.q, dest, query, args...)
}
