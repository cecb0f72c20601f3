package alerting

import (
	"github.com/Kargones/rb-ci/internal/pkg/logging"
)

// NewAlerter возвращает NopAlerter, если alerting выключен или нет включённых каналов,
// иначе WebhookAlerter с общим rate limiter.
func NewAlerter(config Config, logger logging.Logger) (Alerter, error) {
	if !config.Enabled {
		return NewNopAlerter(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.Webhook.Enabled {
		logger.Warn("alerting включён, но webhook канал выключен, используется NopAlerter")
		return NewNopAlerter(), nil
	}

	window := config.RateLimitWindow
	if window == 0 {
		window = DefaultRateLimitWindow
	}
	return NewWebhookAlerter(config.Webhook, NewRateLimiter(window), logger), nil
}
