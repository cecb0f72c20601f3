package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/logging"
	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

// HTTPClient - часть *http.Client, нужная WebhookAlerter. Подменяется в тестах.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Интервалы повторов: 1s, 2s, 4s. Для CLI дольше ждать нет смысла.
const (
	retryInitialInterval = time.Second
	retryMaxInterval     = 4 * time.Second
)

// maxResponseBodySize ограничивает чтение ответа приёмника.
const maxResponseBodySize = 1024

// WebhookAlerter отправляет алерт POST-запросом с JSON на каждый URL.
type WebhookAlerter struct {
	config      WebhookConfig
	rateLimiter *RateLimiter
	logger      logging.Logger
	httpClient  HTTPClient
	hostname    string

	// newBackOff подменяется в тестах, чтобы не ждать реальные интервалы.
	newBackOff func() backoff.BackOff
}

// WebhookPayload - тело запроса.
type WebhookPayload struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	TraceID   string    `json:"trace_id"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Project   string    `json:"project,omitempty"`
	Severity  string    `json:"severity"`
	Source    string    `json:"source"`
	Hostname  string    `json:"hostname,omitempty"`
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// NewWebhookAlerter создаёт WebhookAlerter. rateLimiter может быть nil.
func NewWebhookAlerter(config WebhookConfig, rateLimiter *RateLimiter, logger logging.Logger) *WebhookAlerter {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultWebhookTimeout
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	w := &WebhookAlerter{
		config:      config,
		rateLimiter: rateLimiter,
		logger:      logger,
		httpClient:  &http.Client{Timeout: timeout},
		hostname:    hostname,
	}
	w.newBackOff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = retryInitialInterval
		b.MaxInterval = retryMaxInterval
		b.RandomizationFactor = 0
		b.MaxElapsedTime = 0
		return b
	}
	return w
}

// SetHTTPClient подменяет HTTP клиент (для тестов).
func (w *WebhookAlerter) SetHTTPClient(client HTTPClient) {
	w.httpClient = client
}

// Send отправляет алерт на все URL. Ошибки логируются, возвращается nil.
func (w *WebhookAlerter) Send(ctx context.Context, alert Alert) error {
	if w.rateLimiter != nil && !w.rateLimiter.Allow(alert.ErrorCode) {
		w.logger.Debug("алерт подавлен rate limiter",
			"error_code", alert.ErrorCode,
			"channel", ChannelWebhook,
		)
		return nil
	}

	body, err := json.Marshal(w.createPayload(alert))
	if err != nil {
		w.logger.Error("не удалось сериализовать webhook payload", "error", err.Error())
		return nil
	}

	delivered := 0
	for i, url := range w.config.URLs {
		if ctx.Err() != nil {
			w.logger.Debug("отправка webhook алерта отменена",
				"error_code", alert.ErrorCode,
				"remaining_urls", len(w.config.URLs)-i,
			)
			return nil
		}

		if err := w.sendWithRetry(ctx, url, body); err != nil {
			w.logger.Error("ошибка отправки webhook алерта",
				"error", err.Error(),
				"url", urlutil.MaskURL(url),
				"error_code", alert.ErrorCode,
			)
			continue
		}
		delivered++
	}

	switch {
	case delivered > 0:
		w.logger.Info("webhook алерт отправлен",
			"error_code", alert.ErrorCode,
			"severity", alert.Severity.String(),
			"urls_success", delivered,
			"urls_total", len(w.config.URLs),
		)
	case len(w.config.URLs) > 0:
		w.logger.Warn("webhook алерт не доставлен ни на один URL",
			"error_code", alert.ErrorCode,
			"urls_total", len(w.config.URLs),
		)
	}
	return nil
}

func (w *WebhookAlerter) createPayload(alert Alert) WebhookPayload {
	return WebhookPayload{
		ErrorCode: alert.ErrorCode,
		Message:   alert.Message,
		TraceID:   alert.TraceID,
		Timestamp: alert.Timestamp,
		Command:   alert.Command,
		Project:   alert.Project,
		Severity:  alert.Severity.String(),
		Source:    constants.AppName,
		Hostname:  w.hostname,
	}
}

// sendWithRetry повторяет сетевые ошибки и 5xx не более MaxRetries раз.
// 4xx означает ошибку конфигурации приёмника и не повторяется.
func (w *WebhookAlerter) sendWithRetry(ctx context.Context, url string, body []byte) error {
	maxRetries := max(w.config.MaxRetries, 0)
	policy := backoff.WithContext(
		backoff.WithMaxRetries(w.newBackOff(), uint64(maxRetries)), //nolint:gosec // maxRetries >= 0
		ctx,
	)

	attempt := 0
	permanent := false
	var lastErr error
	op := func() error {
		if attempt > 0 {
			w.logger.Debug("webhook retry",
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error(),
				"url", urlutil.MaskURL(url),
			)
		}
		attempt++

		lastErr = w.sendRequest(ctx, url, body)
		if lastErr != nil && isClientHTTPError(lastErr) {
			permanent = true
			return backoff.Permanent(lastErr)
		}
		return lastErr
	}

	// Retry сам разворачивает PermanentError и возвращает исходную ошибку.
	err := backoff.Retry(op, policy)
	switch {
	case err == nil:
		return nil
	case permanent:
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("all %d attempts failed: %w", attempt, err)
	}
}

func (w *WebhookAlerter) sendRequest(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &httpError{StatusCode: http.StatusBadRequest, Body: "invalid request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.AppName+"/"+constants.Version)
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		// Дренаж для переиспользования keep-alive соединения.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBodySize)) //nolint:errcheck // best-effort drain
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize)) //nolint:errcheck // диагностика
	return &httpError{StatusCode: resp.StatusCode, Body: string(respBody)}
}

// isClientHTTPError: 4xx не повторяются, 5xx повторяются.
func isClientHTTPError(err error) bool {
	var httpErr *httpError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode >= 400 && httpErr.StatusCode < 500
}
