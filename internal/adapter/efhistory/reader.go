package efhistory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/lib/pq"

	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

const defaultTimeout = 30 * time.Second

// Коды "таблица не существует".
const (
	pqUndefinedTable      = "42P01"
	mssqlInvalidObjectNum = 208
)

var _ Reader = (*reader)(nil)

type reader struct {
	db   *sql.DB
	opts Options
}

// Open открывает соединение и проверяет его через Ping.
func Open(ctx context.Context, opts Options) (Reader, error) {
	opts, err := normalize(opts)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: open %s: %w", ErrHistoryConnect, urlutil.MaskDSN(opts.DSN), err)
	}

	r := newReader(db, opts)
	if err := r.Ping(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // исходная ошибка важнее
		return nil, err
	}
	return r, nil
}

func newReader(db *sql.DB, opts Options) *reader {
	return &reader{db: db, opts: opts}
}

func normalize(opts Options) (Options, error) {
	switch opts.Driver {
	case DriverPostgres, DriverSQLServer:
	case "":
		opts.Driver = DriverPostgres
	default:
		return opts, fmt.Errorf("%s: unsupported driver %q", ErrHistoryConnect, opts.Driver)
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return opts, fmt.Errorf("%s: connection string is empty", ErrHistoryConnect)
	}
	if opts.Table == "" {
		opts.Table = DefaultTable
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return opts, nil
}

// Ping проверяет доступность БД.
func (r *reader) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	if err := r.db.PingContext(pingCtx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: context cancelled during ping: %w", ErrHistoryConnect, ctx.Err())
		}
		return fmt.Errorf("%s: ping %s: %w", ErrHistoryConnect, urlutil.MaskDSN(r.opts.DSN), err)
	}
	return nil
}

// AppliedMigrations читает таблицу истории.
// Отсутствие таблицы возвращается как ErrTableNotFound.
func (r *reader) AppliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	queryCtx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	rows, err := r.db.QueryContext(queryCtx, r.query())
	if err != nil {
		if isUndefinedTable(err) {
			return nil, fmt.Errorf("%s: %w", r.qualifiedTable(), ErrTableNotFound)
		}
		return nil, fmt.Errorf("%s: %w", ErrHistoryQuery, err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.MigrationID, &m.ProductVersion); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", ErrHistoryQuery, err)
		}
		applied = append(applied, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrHistoryQuery, err)
	}
	return applied, nil
}

// Close закрывает соединение.
func (r *reader) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *reader) query() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s ORDER BY %s",
		r.quote("MigrationId"), r.quote("ProductVersion"), r.qualifiedTable(), r.quote("MigrationId"))
}

func (r *reader) qualifiedTable() string {
	if r.opts.Schema == "" {
		return r.quote(r.opts.Table)
	}
	return r.quote(r.opts.Schema) + "." + r.quote(r.opts.Table)
}

// quote экранирует идентификатор по правилам драйвера:
// двойные кавычки для PostgreSQL, квадратные скобки для SQL Server.
func (r *reader) quote(ident string) string {
	if r.opts.Driver == DriverSQLServer {
		return "[" + strings.ReplaceAll(ident, "]", "]]") + "]"
	}
	return pq.QuoteIdentifier(ident)
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUndefinedTable
	}
	var msErr mssql.Error
	if errors.As(err, &msErr) {
		return msErr.Number == mssqlInvalidObjectNum
	}
	return false
}
