package alerting

import "errors"

// Ошибки валидации конфигурации.
var (
	ErrWebhookURLRequired   = errors.New("alerting: at least one url is required when webhook channel is enabled")
	ErrWebhookURLInvalid    = errors.New("alerting: webhook url must be http(s) with host")
	ErrWebhookHeaderInvalid = errors.New("alerting: webhook header contains control characters")
)
