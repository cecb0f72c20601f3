package di

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/pkg/alerting"
	"github.com/Kargones/rb-ci/internal/pkg/logging"
	"github.com/Kargones/rb-ci/internal/pkg/metrics"
)

var traceIDRe = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestProvideSlog(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{"nil config", nil},
		{"nil секция logging", &config.Config{}},
		{"json debug", &config.Config{Logging: &config.LoggingConfig{Level: "debug", Format: "json"}}},
		{"по умолчанию", config.Default()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, ProvideSlog(tt.cfg))
		})
	}
}

func TestProvideSlog_Level(t *testing.T) {
	cfg := &config.Config{Logging: &config.LoggingConfig{Level: "warn"}}
	l := ProvideSlog(cfg)

	assert.False(t, l.Enabled(context.Background(), -4), "debug должен быть выключен")
	assert.True(t, l.Enabled(context.Background(), 4), "warn должен быть включён")
}

func TestProvideTraceID(t *testing.T) {
	first := ProvideTraceID()
	second := ProvideTraceID()

	assert.Regexp(t, traceIDRe, first)
	assert.NotEqual(t, first, second)
}

func TestProvideAlerter(t *testing.T) {
	logger := logging.NewNopLogger()
	enabled := func() *config.Config {
		cfg := config.Default()
		cfg.Alerting.Enabled = true
		cfg.Alerting.Webhook.Enabled = true
		cfg.Alerting.Webhook.URLs = []string{"https://hooks.example.com/rb-ci"}
		return cfg
	}

	tests := []struct {
		name    string
		cfg     func() *config.Config
		wantNop bool
	}{
		{"nil config", func() *config.Config { return nil }, true},
		{"выключен", config.Default, true},
		{"webhook включён", enabled, false},
		{"невалидный URL", func() *config.Config {
			cfg := enabled()
			cfg.Alerting.Webhook.URLs = []string{"file:///etc/passwd"}
			return cfg
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ProvideAlerter(tt.cfg(), logger)
			require.NotNil(t, a)
			_, isNop := a.(*alerting.NopAlerter)
			assert.Equal(t, tt.wantNop, isNop)
		})
	}
}

func TestProvideMetricsCollector(t *testing.T) {
	logger := logging.NewNopLogger()

	tests := []struct {
		name    string
		cfg     *config.Config
		wantNop bool
	}{
		{"nil config", nil, true},
		{"выключены", config.Default(), true},
		{"включены", &config.Config{Metrics: &config.MetricsConfig{
			Enabled: true, PushgatewayURL: "http://pushgateway:9091", JobName: "rb-ci", Timeout: time.Second,
		}}, false},
		{"URL без схемы", &config.Config{Metrics: &config.MetricsConfig{
			Enabled: true, PushgatewayURL: "pushgateway:9091", JobName: "rb-ci", Timeout: time.Second,
		}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ProvideMetricsCollector(tt.cfg, logger)
			require.NotNil(t, c)
			_, isNop := c.(*metrics.NopCollector)
			assert.Equal(t, tt.wantNop, isNop)
		})
	}
}

func TestProvideTracerProvider_Disabled(t *testing.T) {
	logger := logging.NewNopLogger()

	for _, cfg := range []*config.Config{nil, config.Default()} {
		shutdown := ProvideTracerProvider(cfg, logger)
		require.NotNil(t, shutdown)
		assert.NoError(t, shutdown(context.Background()))
	}
}

func TestInitializeApp(t *testing.T) {
	cfg := config.Default()

	app, err := InitializeApp(cfg)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Same(t, cfg, app.Config)
	assert.NotNil(t, app.Slog)
	assert.Regexp(t, traceIDRe, app.TraceID)
	assert.NotNil(t, app.Alerter)
	assert.NotNil(t, app.MetricsCollector)
	require.NotNil(t, app.TracerShutdown)
	assert.NoError(t, app.TracerShutdown(context.Background()))
}

func TestInitializeApp_AlerterGetsLogger(t *testing.T) {
	cfg := config.Default()
	cfg.Alerting.Enabled = true
	cfg.Alerting.Webhook.Enabled = true
	cfg.Alerting.Webhook.URLs = []string{"https://hooks.example.com/rb-ci"}

	app, err := InitializeApp(cfg)
	require.NoError(t, err)

	_, isNop := app.Alerter.(*alerting.NopAlerter)
	assert.False(t, isNop, "webhook Alerter собирается из логгера команды")
}
