package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"modernc.org/sqlite"

	"github.com/nhle/todolist/internal/config"
)

// unicodeLower folds case for every script. SQLite's built-in LOWER only
// handles ASCII.
const unicodeLower = "unicode_lower"

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
	if err := sqlite.RegisterDeterministicScalarFunction(unicodeLower, 1, foldLower); err != nil {
		panic(fmt.Sprintf("registering %s: %v", unicodeLower, err))
	}
}

func foldLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

// sqlitePragmas are applied to every pooled SQLite connection.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_time_format=sqlite",
}

// SQLStore implements Store on PostgreSQL or SQLite.
type SQLStore struct {
	db      *sqlx.DB
	q       sqlx.ExtContext
	tx      *sqlx.Tx
	builder squirrel.StatementBuilderType
	lower   string // case-folding SQL function of the dialect
	logger  *zap.Logger
}

// Open connects to the database, applies pending migrations, and returns a
// ready store. driver is config.DriverPostgres or config.DriverSQLite.
func Open(ctx context.Context, driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if driver == config.DriverSQLite {
		var err error
		if dsn, err = sqliteDSN(dsn); err != nil {
			return nil, err
		}
	}

	if err := runMigrations(driver, dsn); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s db: %w", driver, err)
	}

	logger.Info("store opened", zap.String("driver", driver))
	return New(db, logger), nil
}

// New wraps an open connection. Migrations are the caller's concern.
func New(db *sqlx.DB, logger *zap.Logger) *SQLStore {
	var format squirrel.PlaceholderFormat = squirrel.Question
	lower := unicodeLower
	if db.DriverName() == config.DriverPostgres {
		format, lower = squirrel.Dollar, "LOWER"
	}
	return &SQLStore{
		db:      db,
		q:       db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(format),
		lower:   lower,
		logger:  logger.Named("store"),
	}
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// WithTx runs fn inside a transaction.
func (s *SQLStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return s.inTx(ctx, func(tx *SQLStore) error { return fn(tx) })
}

// inTx runs fn on a store bound to a transaction, reusing the current one
// when s is already transactional.
func (s *SQLStore) inTx(ctx context.Context, fn func(*SQLStore) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	txStore := *s
	txStore.q = tx
	txStore.tx = tx
	if err := fn(&txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) rebind(query string) string {
	return s.q.Rebind(query)
}

func (s *SQLStore) get(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, s.q, dest, s.rebind(query), args...)
}

func (s *SQLStore) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, s.q, dest, s.rebind(query), args...)
}

// exec runs a write and reports whether any row was affected.
func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := s.q.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// selectIn expands the slice argument of an IN (?) clause.
func (s *SQLStore) selectIn(ctx context.Context, dest any, query string, args ...any) error {
	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return s.selectAll(ctx, dest, query, args...)
}

// sqliteDSN creates the database's parent directory and appends the
// connection pragmas.
func sqliteDSN(dsn string) (string, error) {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path != "" && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(sqlitePragmas, "&"), nil
}
