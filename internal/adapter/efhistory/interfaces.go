// Package efhistory читает таблицу истории миграций EF Core
// (__EFMigrationsHistory) из PostgreSQL или SQL Server.
package efhistory

import (
	"context"
	"errors"
	"time"
)

// Коды ошибок.
const (
	// ErrHistoryConnect - не удалось подключиться к БД
	ErrHistoryConnect = "HISTORY.CONNECT_FAILED"
	// ErrHistoryQuery - ошибка чтения таблицы истории
	ErrHistoryQuery = "HISTORY.QUERY_FAILED"
)

// Поддерживаемые драйверы database/sql.
const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
)

// DefaultTable - имя таблицы истории EF Core по умолчанию.
const DefaultTable = "__EFMigrationsHistory"

// ErrTableNotFound - таблицы истории нет: к БД не применена ни одна миграция.
var ErrTableNotFound = errors.New("migrations history table not found")

// Options - параметры подключения.
type Options struct {
	// Driver - DriverPostgres или DriverSQLServer.
	Driver string
	// DSN - строка подключения в формате драйвера.
	DSN string
	// Schema - схема таблицы. Пустая: схема по умолчанию для пользователя.
	Schema string
	// Table - имя таблицы, по умолчанию DefaultTable.
	Table   string
	Timeout time.Duration
}

// AppliedMigration - строка таблицы истории.
type AppliedMigration struct {
	MigrationID    string
	ProductVersion string
}

// Reader читает применённые миграции.
type Reader interface {
	// AppliedMigrations возвращает миграции, отсортированные по MigrationID.
	AppliedMigrations(ctx context.Context) ([]AppliedMigration, error)
	Ping(ctx context.Context) error
	Close() error
}
