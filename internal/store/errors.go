package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nhle/todolist/internal/apperr"
)

// classify maps driver errors onto the apperr kinds. It returns nil for
// errors that have no user-facing meaning.
func classify(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return apperr.ErrConflict
		case "23503": // foreign_key_violation
			return apperr.ErrNotFound
		case "23514", "23502", "22P02": // check_violation, not_null_violation, invalid_text_representation
			return apperr.ErrValidation
		}
		return nil
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperr.ErrConflict
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperr.ErrNotFound
		case sqlite3.SQLITE_CONSTRAINT_CHECK, sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return apperr.ErrValidation
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return classifyConstraintMessage(liteErr.Error())
		}
	}
	return nil
}

// classifyConstraintMessage handles connections without extended result
// codes, where only the message tells constraints apart.
func classifyConstraintMessage(msg string) error {
	switch {
	case strings.Contains(msg, "UNIQUE"):
		return apperr.ErrConflict
	case strings.Contains(msg, "FOREIGN KEY"):
		return apperr.ErrNotFound
	case strings.Contains(msg, "CHECK"), strings.Contains(msg, "NOT NULL"):
		return apperr.ErrValidation
	}
	return nil
}

// wrap annotates err with a description of the failed operation. Known
// constraint failures are reported by kind; the driver detail is logged.
func (s *SQLStore) wrap(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if kind := classify(err); kind != nil {
		s.logger.Debug("store constraint", zap.String("op", msg),
			zap.Stringer("kind", apperr.KindOf(kind)), zap.Error(err))
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
