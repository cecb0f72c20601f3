package di

import (
	"context"
	"log/slog"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/pkg/alerting"
	"github.com/Kargones/rb-ci/internal/pkg/metrics"
)

// App содержит инициализированные зависимости одного запуска rb-ci.
// Создаётся через Wire DI в InitializeApp().
//
// При добавлении новой зависимости:
// 1. Добавить поле в App
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config передаётся извне через InitializeApp().
	Config *config.Config

	// Slog - логгер команды, построенный по секции logging.
	Slog *slog.Logger

	// TraceID коррелирует логи, алерты и спаны одного запуска.
	TraceID string

	// Alerter - webhook при ошибках команд или NopAlerter.
	Alerter alerting.Alerter

	// MetricsCollector - Pushgateway или NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown сбрасывает буферизированные спаны. При выключенном трейсинге nop.
	TracerShutdown func(context.Context) error
}
