// Package efhistorytest предоставляет мок efhistory.Reader.
package efhistorytest

import (
	"context"

	"github.com/Kargones/rb-ci/internal/adapter/efhistory"
)

var _ efhistory.Reader = (*MockReader)(nil)

// MockReader - мок с функциональными полями. Незаданная функция возвращает нулевые значения.
type MockReader struct {
	AppliedMigrationsFunc func(ctx context.Context) ([]efhistory.AppliedMigration, error)
	PingFunc              func(ctx context.Context) error
	CloseFunc             func() error

	Closed bool
}

// AppliedMigrations вызывает AppliedMigrationsFunc.
func (m *MockReader) AppliedMigrations(ctx context.Context) ([]efhistory.AppliedMigration, error) {
	if m.AppliedMigrationsFunc != nil {
		return m.AppliedMigrationsFunc(ctx)
	}
	return nil, nil
}

// Ping вызывает PingFunc.
func (m *MockReader) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close отмечает Closed и вызывает CloseFunc.
func (m *MockReader) Close() error {
	m.Closed = true
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// NewMockReader возвращает мок, отдающий заданные ID миграций.
func NewMockReader(ids ...string) *MockReader {
	return &MockReader{
		AppliedMigrationsFunc: func(_ context.Context) ([]efhistory.AppliedMigration, error) {
			out := make([]efhistory.AppliedMigration, 0, len(ids))
			for _, id := range ids {
				out = append(out, efhistory.AppliedMigration{MigrationID: id, ProductVersion: "8.0.0"})
			}
			return out, nil
		},
	}
}
