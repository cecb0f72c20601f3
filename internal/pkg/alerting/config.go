package alerting

import "time"

// DefaultRateLimitWindow - минимальный интервал между алертами с одним ErrorCode.
const DefaultRateLimitWindow = 5 * time.Minute

// Config - настройки alerting.
type Config struct {
	Enabled         bool
	RateLimitWindow time.Duration
	Webhook         WebhookConfig
}

// DefaultConfig возвращает конфигурацию по умолчанию (alerting выключен).
func DefaultConfig() Config {
	return Config{
		RateLimitWindow: DefaultRateLimitWindow,
		Webhook: WebhookConfig{
			Timeout:    DefaultWebhookTimeout,
			MaxRetries: DefaultMaxRetries,
		},
	}
}

// Validate проверяет конфигурацию включённых каналов.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return c.Webhook.Validate()
}
