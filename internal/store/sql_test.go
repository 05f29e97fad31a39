package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/todolist/internal/apperr"
	"github.com/nhle/todolist/internal/config"
)

func TestNew_DialectPlaceholders(t *testing.T) {
	tests := []struct {
		driver      string
		placeholder string
		lower       string
	}{
		{config.DriverPostgres, "$1", "LOWER"},
		{config.DriverSQLite, "?", unicodeLower},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			s := New(sqlx.NewDb(nil, tt.driver), zap.NewNop())

			query, args, err := s.todoCountQuery(TodoFilter{Query: "milk"}).ToSql()
			require.NoError(t, err)
			assert.Contains(t, query, tt.placeholder)
			assert.Contains(t, query, tt.lower+"(todos.task)")
			assert.Len(t, args, 3)
		})
	}
}

func TestFoldLower(t *testing.T) {
	got, err := foldLower(nil, []driver.Value{"ÉCOLE Über"})
	require.NoError(t, err)
	assert.Equal(t, "école über", got)

	got, err = foldLower(nil, []driver.Value{nil})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClassify_Postgres(t *testing.T) {
	tests := []struct {
		code pq.ErrorCode
		want error
	}{
		{"23505", apperr.ErrConflict},
		{"23503", apperr.ErrNotFound},
		{"23514", apperr.ErrValidation},
		{"23502", apperr.ErrValidation},
		{"22P02", apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := fmt.Errorf("exec: %w", &pq.Error{Code: tt.code})
			assert.ErrorIs(t, classify(err), tt.want)
		})
	}

	assert.Nil(t, classify(&pq.Error{Code: "08006"}))
	assert.Nil(t, classify(errors.New("boom")))
}

func TestWrap_LogsKind(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := New(sqlx.NewDb(nil, config.DriverPostgres), zap.New(core))

	err := s.wrap(&pq.Error{Code: "23505"}, "creating tag %q", "work")
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.EqualError(t, err, `creating tag "work": already exists`)

	entries := logs.FilterMessage("store constraint").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "conflict", entries[0].ContextMap()["kind"])
}
