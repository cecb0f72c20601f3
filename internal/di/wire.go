//go:build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/Kargones/rb-ci/internal/config"
)

//go:generate wire

// ProviderSet объединяет все провайдеры приложения.
var ProviderSet = wire.NewSet(
	ProvideSlog,
	ProvideLogger,
	ProvideTraceID,
	ProvideAlerter,
	ProvideMetricsCollector,
	ProvideTracerProvider,
	wire.Struct(new(App), "Config", "Slog", "TraceID", "Alerter", "MetricsCollector", "TracerShutdown"),
)

// InitializeApp строит App из загруженного Config.
// Реализация генерируется в wire_gen.go.
func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
