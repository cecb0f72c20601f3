package config

import (
	"fmt"
	"time"

	"github.com/Kargones/rb-ci/internal/adapter/efhistory"
	"github.com/Kargones/rb-ci/internal/constants"
)

// HistoryConfig - подключение к БД приложения для migration-history.
type HistoryConfig struct {
	// Driver - postgres или sqlserver.
	Driver string `yaml:"driver" env:"BR_HISTORY_DRIVER" env-default:"postgres"`

	// DSN содержит пароль: в логах только через urlutil.MaskDSN.
	DSN string `yaml:"dsn" env:"BR_HISTORY_DSN"`

	Schema  string        `yaml:"schema" env:"BR_HISTORY_SCHEMA"`
	Table   string        `yaml:"table" env:"BR_HISTORY_TABLE" env-default:"__EFMigrationsHistory"`
	Timeout time.Duration `yaml:"timeout" env:"BR_HISTORY_TIMEOUT" env-default:"30s"`
}

func isHistoryConfigPresent(c *HistoryConfig) bool {
	return c != nil && (c.Driver != "" || c.DSN != "")
}

func getDefaultHistoryConfig() *HistoryConfig {
	return &HistoryConfig{
		Driver:  efhistory.DriverPostgres,
		Table:   constants.DefaultHistoryTable,
		Timeout: 30 * time.Second,
	}
}

// Validate проверяет драйвер. Пустой DSN допустим до запуска migration-history.
func (c *HistoryConfig) Validate() error {
	switch c.Driver {
	case efhistory.DriverPostgres, efhistory.DriverSQLServer:
	default:
		return fmt.Errorf("history: неизвестный драйвер %q", c.Driver)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("history: timeout должен быть положительным")
	}
	return nil
}

// Options переводит настройки в параметры efhistory.Open.
func (c *HistoryConfig) Options() efhistory.Options {
	return efhistory.Options{
		Driver:  c.Driver,
		DSN:     c.DSN,
		Schema:  c.Schema,
		Table:   c.Table,
		Timeout: c.Timeout,
	}
}
