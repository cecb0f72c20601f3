// Package config загружает конфигурацию rb-ci из переменных окружения BR_*
// и необязательного YAML-файла BR_CONFIG_FILE.
package config

import (
	"log/slog"

	"github.com/Kargones/rb-ci/internal/pkg/alerting"
	"github.com/Kargones/rb-ci/internal/pkg/metrics"
)

// FileConfig - содержимое YAML-файла. Каждая секция необязательна.
type FileConfig struct {
	Migrations MigrationsConfig `yaml:"migrations"`
	Smoke      SmokeConfig      `yaml:"smoke"`
	History    HistoryConfig    `yaml:"history"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Alerting   AlertingConfig   `yaml:"alerting"`
}

// envParams - переменные окружения верхнего уровня.
type envParams struct {
	Command    string `env:"BR_COMMAND"`
	Env        string `env:"BR_ENV" env-default:"ci"`
	ConfigFile string `env:"BR_CONFIG_FILE"`
	WorkDir    string `env:"BR_WORK_DIR"`
}

// Config - конфигурация одного запуска.
type Config struct {
	// Command - имя команды: аргумент CLI или BR_COMMAND.
	Command string
	// Env - окружение для трейсов: ci, staging, local.
	Env string
	// ConfigFile - путь к YAML, пусто если не задан.
	ConfigFile string
	// WorkDir - корень репозитория приложения. Пусто - текущая директория.
	WorkDir string

	Migrations *MigrationsConfig
	Smoke      *SmokeConfig
	History    *HistoryConfig
	Logging    *LoggingConfig
	Metrics    *MetricsConfig
	Tracing    *TracingConfig
	Alerting   *AlertingConfig

	// Зависимости времени выполнения. Заполняются в app после di.InitializeApp.
	Logger    *slog.Logger
	Alerter   alerting.Alerter
	Collector metrics.Collector
}

// Default возвращает конфигурацию со значениями по умолчанию без чтения окружения.
// Используется в тестах и как основа для Load.
func Default() *Config {
	return &Config{
		Env:        "ci",
		Migrations: getDefaultMigrationsConfig(),
		Smoke:      getDefaultSmokeConfig(),
		History:    getDefaultHistoryConfig(),
		Logging:    getDefaultLoggingConfig(),
		Metrics:    getDefaultMetricsConfig(),
		Tracing:    getDefaultTracingConfig(),
		Alerting:   getDefaultAlertingConfig(),
		Logger:     slog.Default(),
		Alerter:    alerting.NewNopAlerter(),
		Collector:  metrics.NewNopCollector(),
	}
}
