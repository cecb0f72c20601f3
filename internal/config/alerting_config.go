package config

import (
	"fmt"
	"time"
)

// AlertingConfig - настройки алертов при ошибках команд.
type AlertingConfig struct {
	Enabled bool `yaml:"enabled" env:"BR_ALERTING_ENABLED"`

	// RateLimitWindow - не чаще одного алерта с тем же кодом ошибки.
	RateLimitWindow time.Duration `yaml:"rateLimitWindow" env:"BR_ALERTING_RATE_LIMIT_WINDOW" env-default:"5m"`

	Webhook WebhookChannelConfig `yaml:"webhook"`
}

// WebhookChannelConfig - настройки webhook канала.
type WebhookChannelConfig struct {
	Enabled bool     `yaml:"enabled" env:"BR_ALERTING_WEBHOOK_ENABLED"`
	URLs    []string `yaml:"urls" env:"BR_ALERTING_WEBHOOK_URLS" env-separator:","`

	// Headers только из YAML: токены в заголовках не передаются через env списком.
	Headers map[string]string `yaml:"headers"`

	Timeout    time.Duration `yaml:"timeout" env:"BR_ALERTING_WEBHOOK_TIMEOUT" env-default:"10s"`
	MaxRetries int           `yaml:"maxRetries" env:"BR_ALERTING_WEBHOOK_MAX_RETRIES" env-default:"3"`
}

func isAlertingConfigPresent(c *AlertingConfig) bool {
	return c != nil && (c.Enabled || c.Webhook.Enabled || len(c.Webhook.URLs) > 0)
}

func getDefaultAlertingConfig() *AlertingConfig {
	return &AlertingConfig{
		RateLimitWindow: 5 * time.Minute,
		Webhook: WebhookChannelConfig{
			Timeout:    10 * time.Second,
			MaxRetries: 3,
		},
	}
}

// validateAlertingConfig проверяет обязательные поля. Схемы URL и заголовки
// дополнительно проверяет alerting.NewAlerter.
func validateAlertingConfig(ac *AlertingConfig) error {
	if !ac.Enabled {
		return nil
	}
	if ac.Webhook.Enabled && len(ac.Webhook.URLs) == 0 {
		return fmt.Errorf("alerting: webhook.urls обязателен при webhook.enabled=true")
	}
	if ac.Webhook.MaxRetries < 0 {
		return fmt.Errorf("alerting: webhook.maxRetries не может быть отрицательным")
	}
	return nil
}
