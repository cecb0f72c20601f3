package alerting

import (
	"net/url"
	"time"
)

const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultMaxRetries     = 3
)

// WebhookConfig - настройки webhook канала.
type WebhookConfig struct {
	Enabled bool
	URLs    []string
	// Headers добавляются к каждому запросу, например Authorization.
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries int
}

// Validate проверяет URL и заголовки.
// Допускаются только http и https: file:// и прочие схемы отклоняются.
func (w *WebhookConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if len(w.URLs) == 0 {
		return ErrWebhookURLRequired
	}
	for _, rawURL := range w.URLs {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return ErrWebhookURLInvalid
		}
	}
	for key, value := range w.Headers {
		if containsInvalidHeaderChars(key) || containsInvalidHeaderChars(value) {
			return ErrWebhookHeaderInvalid
		}
	}
	return nil
}

// containsInvalidHeaderChars: по RFC 7230 в заголовке допустим HTAB,
// остальные управляющие символы (включая CR и LF) запрещены.
func containsInvalidHeaderChars(s string) bool {
	for _, r := range s {
		if r == '\t' {
			continue
		}
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}
