package di

import (
	"context"
	"log/slog"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/alerting"
	"github.com/Kargones/rb-ci/internal/pkg/logging"
	"github.com/Kargones/rb-ci/internal/pkg/metrics"
	"github.com/Kargones/rb-ci/internal/pkg/tracing"
)

// ProvideSlog создаёт *slog.Logger по секции logging.
// Пустые поля и nil секция заменяются значениями logging.DefaultConfig().
func ProvideSlog(cfg *config.Config) *slog.Logger {
	logCfg := logging.DefaultConfig()

	if cfg != nil && cfg.Logging != nil {
		if cfg.Logging.Level != "" {
			logCfg.Level = cfg.Logging.Level
		}
		if cfg.Logging.Format != "" {
			logCfg.Format = cfg.Logging.Format
		}
		if cfg.Logging.Output != "" {
			logCfg.Output = cfg.Logging.Output
		}
		if cfg.Logging.FilePath != "" {
			logCfg.FilePath = cfg.Logging.FilePath
		}
		// Размер 0 MB для lumberjack смысла не имеет, остаётся значение по умолчанию.
		if cfg.Logging.MaxSize > 0 {
			logCfg.MaxSize = cfg.Logging.MaxSize
		}
		if cfg.Logging.MaxBackups > 0 {
			logCfg.MaxBackups = cfg.Logging.MaxBackups
		}
		if cfg.Logging.MaxAge > 0 {
			logCfg.MaxAge = cfg.Logging.MaxAge
		}
		logCfg.Compress = cfg.Logging.Compress
	}

	return logging.NewSlog(logCfg)
}

// ProvideLogger оборачивает логгер команды в logging.Logger.
// Нужен только провайдерам alerting, metrics и tracing, в App не попадает.
func ProvideLogger(l *slog.Logger) logging.Logger {
	return logging.NewSlogAdapter(l)
}

// ProvideTraceID генерирует trace_id запуска: 32 hex-символа.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideAlerter создаёт webhook Alerter по секции alerting.
// При nil секции или ошибке создания возвращается NopAlerter.
func ProvideAlerter(cfg *config.Config, logger logging.Logger) alerting.Alerter {
	if cfg == nil || cfg.Alerting == nil {
		return alerting.NewNopAlerter()
	}

	alertCfg := alerting.Config{
		Enabled:         cfg.Alerting.Enabled,
		RateLimitWindow: cfg.Alerting.RateLimitWindow,
		Webhook: alerting.WebhookConfig{
			Enabled:    cfg.Alerting.Webhook.Enabled,
			URLs:       cfg.Alerting.Webhook.URLs,
			Headers:    cfg.Alerting.Webhook.Headers,
			Timeout:    cfg.Alerting.Webhook.Timeout,
			MaxRetries: cfg.Alerting.Webhook.MaxRetries,
		},
	}

	alerter, err := alerting.NewAlerter(alertCfg, logger)
	if err != nil {
		logger.Error("ошибка создания Alerter, используется NopAlerter",
			slog.String("error", err.Error()),
		)
		return alerting.NewNopAlerter()
	}
	return alerter
}

// ProvideMetricsCollector создаёт Collector по секции metrics.
// При nil секции или ошибке создания возвращается NopCollector.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil || cfg.Metrics == nil {
		return metrics.NewNopCollector()
	}

	metricsCfg := metrics.Config{
		Enabled:        cfg.Metrics.Enabled,
		PushgatewayURL: cfg.Metrics.PushgatewayURL,
		JobName:        cfg.Metrics.JobName,
		Timeout:        cfg.Metrics.Timeout,
		InstanceLabel:  cfg.Metrics.InstanceLabel,
	}

	collector, err := metrics.NewCollector(metricsCfg, logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}
	return collector
}

// ProvideTracerProvider инициализирует OTel TracerProvider и возвращает shutdown.
// При nil секции или ошибке инициализации возвращается nop shutdown.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil || cfg.Tracing == nil {
		return tracing.NewNopTracerProvider()
	}

	tracingCfg := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Endpoint:     cfg.Tracing.Endpoint,
		ServiceName:  cfg.Tracing.ServiceName,
		Version:      constants.Version,
		Environment:  cfg.Tracing.Environment,
		Insecure:     cfg.Tracing.Insecure,
		Timeout:      cfg.Tracing.Timeout,
		SamplingRate: cfg.Tracing.SamplingRate,
	}

	shutdown, err := tracing.NewTracerProvider(tracingCfg, logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}
	return shutdown
}
