package efhistory

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mssql "github.com/denisenkom/go-mssqldb"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockReader(t *testing.T, opts Options) (*reader, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts, err = normalize(opts)
	require.NoError(t, err)
	return newReader(db, opts), mock
}

func TestReader_query(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "postgres без схемы",
			opts: Options{Driver: DriverPostgres, DSN: "x"},
			want: `SELECT "MigrationId", "ProductVersion" FROM "__EFMigrationsHistory" ORDER BY "MigrationId"`,
		},
		{
			name: "postgres со схемой",
			opts: Options{Driver: DriverPostgres, DSN: "x", Schema: "replay"},
			want: `SELECT "MigrationId", "ProductVersion" FROM "replay"."__EFMigrationsHistory" ORDER BY "MigrationId"`,
		},
		{
			name: "sqlserver",
			opts: Options{Driver: DriverSQLServer, DSN: "x", Schema: "dbo"},
			want: `SELECT [MigrationId], [ProductVersion] FROM [dbo].[__EFMigrationsHistory] ORDER BY [MigrationId]`,
		},
		{
			name: "экранирование",
			opts: Options{Driver: DriverSQLServer, DSN: "x", Table: "a]b"},
			want: `SELECT [MigrationId], [ProductVersion] FROM [a]]b] ORDER BY [MigrationId]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := normalize(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, newReader(nil, opts).query())
		})
	}
}

func TestReader_AppliedMigrations(t *testing.T) {
	r, mock := newMockReader(t, Options{Driver: DriverPostgres, DSN: "postgres://db/rb"})

	mock.ExpectQuery(regexp.QuoteMeta(r.query())).WillReturnRows(
		sqlmock.NewRows([]string{"MigrationId", "ProductVersion"}).
			AddRow("20240101000000_Initial", "8.0.1").
			AddRow("20240315120000_AddReplayIndex", "8.0.1"),
	)

	got, err := r.AppliedMigrations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []AppliedMigration{
		{MigrationID: "20240101000000_Initial", ProductVersion: "8.0.1"},
		{MigrationID: "20240315120000_AddReplayIndex", ProductVersion: "8.0.1"},
	}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReader_AppliedMigrations_Errors(t *testing.T) {
	tests := []struct {
		name          string
		driver        string
		queryErr      error
		wantNotFound  bool
		wantErrPrefix string
	}{
		{"нет таблицы postgres", DriverPostgres, &pq.Error{Code: pqUndefinedTable}, true, ""},
		{"нет таблицы sqlserver", DriverSQLServer, mssql.Error{Number: mssqlInvalidObjectNum, Message: "Invalid object name"}, true, ""},
		{"другая ошибка", DriverPostgres, errors.New("permission denied"), false, ErrHistoryQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMockReader(t, Options{Driver: tt.driver, DSN: "x"})
			mock.ExpectQuery(regexp.QuoteMeta(r.query())).WillReturnError(tt.queryErr)

			_, err := r.AppliedMigrations(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.wantNotFound, errors.Is(err, ErrTableNotFound))
			if tt.wantErrPrefix != "" {
				assert.Contains(t, err.Error(), tt.wantErrPrefix)
			}
		})
	}
}

func TestReader_AppliedMigrations_ScanError(t *testing.T) {
	r, mock := newMockReader(t, Options{Driver: DriverPostgres, DSN: "x"})
	mock.ExpectQuery(regexp.QuoteMeta(r.query())).WillReturnRows(
		sqlmock.NewRows([]string{"MigrationId"}).AddRow("20240101000000_Initial"),
	)

	_, err := r.AppliedMigrations(context.Background())
	assert.ErrorContains(t, err, ErrHistoryQuery)
}

func TestReader_Ping(t *testing.T) {
	t.Run("успешный ping", func(t *testing.T) {
		r, mock := newMockReader(t, Options{Driver: DriverPostgres, DSN: "x", Timeout: time.Second})
		mock.ExpectPing()
		assert.NoError(t, r.Ping(context.Background()))
	})

	t.Run("ошибка скрывает пароль", func(t *testing.T) {
		r, mock := newMockReader(t, Options{Driver: DriverPostgres, DSN: "host=db password=s3cr3t"})
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		err := r.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrHistoryConnect)
		assert.NotContains(t, err.Error(), "s3cr3t")
	})
}

func TestReader_Close(t *testing.T) {
	r, mock := newMockReader(t, Options{Driver: DriverPostgres, DSN: "x"})
	mock.ExpectClose()

	assert.NoError(t, r.Close())
	assert.Nil(t, r.db)
	assert.NoError(t, r.Close())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    Options
		wantErr bool
	}{
		{"значения по умолчанию", Options{DSN: "x"}, Options{Driver: DriverPostgres, DSN: "x", Table: DefaultTable, Timeout: defaultTimeout}, false},
		{"неизвестный драйвер", Options{Driver: "sqlite", DSN: "x"}, Options{}, true},
		{"пустой DSN", Options{Driver: DriverSQLServer, DSN: "  "}, Options{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalize(tt.opts)
			if tt.wantErr {
				assert.ErrorContains(t, err, ErrHistoryConnect)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpen_InvalidOptions(t *testing.T) {
	_, err := Open(context.Background(), Options{Driver: "oracle", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported driver")
}
