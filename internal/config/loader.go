package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

// ErrInvalidConfig - секция не прошла проверку.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load читает окружение и BR_CONFIG_FILE. command, если не пуст, имеет
// приоритет над BR_COMMAND. l используется только для диагностики загрузки:
// логгер команды создаётся позже из секции logging.
//
// Для каждой секции: значения из файла, поверх них переменные окружения,
// пустые поля заполняются значениями по умолчанию. Ошибки секций
// migrations, smoke, history и logging возвращаются, а некорректные
// metrics, tracing и alerting выключаются с предупреждением.
func Load(l *slog.Logger, command string) (*Config, error) {
	if l == nil {
		l = slog.Default()
	}

	var env envParams
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения: %w", err)
	}

	cfg := Default()
	cfg.Command = env.Command
	if command != "" {
		cfg.Command = command
	}
	cfg.Env = env.Env
	cfg.ConfigFile = env.ConfigFile
	cfg.WorkDir = env.WorkDir

	file := &FileConfig{}
	if cfg.ConfigFile != "" {
		var err error
		if file, err = loadFileConfig(cfg.ConfigFile); err != nil {
			return nil, err
		}
		l.Debug("Конфигурационный файл прочитан", slog.String("path", cfg.ConfigFile))
	}

	var err error
	if cfg.Migrations, err = loadSection(l, "migrations", &file.Migrations, isMigrationsConfigPresent(&file.Migrations), getDefaultMigrationsConfig); err != nil {
		return nil, err
	}
	if cfg.Smoke, err = loadSection(l, "smoke", &file.Smoke, isSmokeConfigPresent(&file.Smoke), getDefaultSmokeConfig); err != nil {
		return nil, err
	}
	if cfg.History, err = loadSection(l, "history", &file.History, isHistoryConfigPresent(&file.History), getDefaultHistoryConfig); err != nil {
		return nil, err
	}
	if cfg.Logging, err = loadSection(l, "logging", &file.Logging, isLoggingConfigPresent(&file.Logging), getDefaultLoggingConfig); err != nil {
		return nil, err
	}
	if cfg.Metrics, err = loadSection(l, "metrics", &file.Metrics, isMetricsConfigPresent(&file.Metrics), getDefaultMetricsConfig); err != nil {
		return nil, err
	}
	if cfg.Tracing, err = loadSection(l, "tracing", &file.Tracing, isTracingConfigPresent(&file.Tracing), getDefaultTracingConfig); err != nil {
		return nil, err
	}
	if cfg.Alerting, err = loadSection(l, "alerting", &file.Alerting, isAlertingConfigPresent(&file.Alerting), getDefaultAlertingConfig); err != nil {
		return nil, err
	}
	if cfg.Tracing.Environment == "" {
		cfg.Tracing.Environment = cfg.Env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	disableInvalidOptional(l, cfg)

	l.Debug("Конфигурация загружена",
		slog.String("command", cfg.Command),
		slog.String("env", cfg.Env),
		slog.String("history_dsn", urlutil.MaskDSN(cfg.History.DSN)),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.Bool("tracing", cfg.Tracing.Enabled),
		slog.Bool("alerting", cfg.Alerting.Enabled),
	)
	return cfg, nil
}

// Validate проверяет обязательные секции.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{c.Migrations, c.Smoke, c.History, c.Logging} {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// disableInvalidOptional выключает некорректные необязательные подсистемы:
// ошибка в адресе Pushgateway не должна ломать проверку миграций.
func disableInvalidOptional(l *slog.Logger, cfg *Config) {
	if err := validateMetricsConfig(cfg.Metrics); err != nil {
		l.Warn("невалидная конфигурация метрик, метрики отключены", slog.String("error", err.Error()))
		cfg.Metrics.Enabled = false
	}
	if err := validateTracingConfig(cfg.Tracing); err != nil {
		l.Warn("невалидная конфигурация трейсинга, трейсинг отключён", slog.String("error", err.Error()))
		cfg.Tracing.Enabled = false
	}
	if err := validateAlertingConfig(cfg.Alerting); err != nil {
		l.Warn("невалидная конфигурация алертинга, алертинг отключён", slog.String("error", err.Error()))
		cfg.Alerting.Enabled = false
	}
}

// loadSection применяет env поверх секции из файла или поверх значений по умолчанию.
func loadSection[T any](l *slog.Logger, name string, fromFile *T, present bool, defaults func() *T) (*T, error) {
	section := defaults()
	source := "defaults"
	if present {
		section = fromFile
		source = "file"
	}
	if err := cleanenv.ReadEnv(section); err != nil {
		return nil, fmt.Errorf("секция %s: не удалось прочитать переменные окружения: %w", name, err)
	}
	l.Debug("Секция конфигурации загружена", slog.String("section", name), slog.String("source", source))
	return section, nil
}

func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // путь задаётся оператором CI
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("не удалось разобрать %s: %w", path, err)
	}
	return &fc, nil
}
