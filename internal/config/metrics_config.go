package config

import (
	"fmt"
	"time"
)

// MetricsConfig - настройки Prometheus Pushgateway.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_METRICS_ENABLED"`

	// PushgatewayURL, например "http://pushgateway:9091".
	PushgatewayURL string `yaml:"pushgatewayUrl" env:"BR_METRICS_PUSHGATEWAY_URL"`

	JobName string        `yaml:"jobName" env:"BR_METRICS_JOB_NAME" env-default:"rb-ci"`
	Timeout time.Duration `yaml:"timeout" env:"BR_METRICS_TIMEOUT" env-default:"10s"`

	// InstanceLabel переопределяет hostname.
	InstanceLabel string `yaml:"instanceLabel" env:"BR_METRICS_INSTANCE"`
}

func isMetricsConfigPresent(c *MetricsConfig) bool {
	return c != nil && (c.Enabled || c.PushgatewayURL != "")
}

// Метрики выключены по умолчанию.
func getDefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		JobName: "rb-ci",
		Timeout: 10 * time.Second,
	}
}

func validateMetricsConfig(mc *MetricsConfig) error {
	if !mc.Enabled {
		return nil
	}
	if mc.PushgatewayURL == "" {
		return fmt.Errorf("metrics: pushgatewayUrl обязателен при enabled=true")
	}
	if mc.Timeout <= 0 {
		return fmt.Errorf("metrics: timeout должен быть положительным")
	}
	return nil
}
