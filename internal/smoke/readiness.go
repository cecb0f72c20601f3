package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Значения прогрева по умолчанию.
const (
	DefaultWarmupDelay  = 20 * time.Second
	DefaultPollInterval = 500 * time.Millisecond
	DefaultProbeTimeout = 2 * time.Second
	maxPollInterval     = 2 * time.Second
)

// Warmup ждёт, пока приложение начнёт принимать запросы.
// Ошибку возвращает только отмена ctx: неготовое приложение
// всё равно обходится, проблемы проявятся на страницах.
type Warmup interface {
	Wait(ctx context.Context, baseURL string, l *slog.Logger) error
}

// FixedWarmup просто спит Delay.
type FixedWarmup struct {
	Delay time.Duration
}

// Wait ждёт Delay или отмены ctx.
func (w FixedWarmup) Wait(ctx context.Context, _ string, l *slog.Logger) error {
	delay := w.Delay
	if delay < 0 {
		delay = 0
	}
	l.Info("Waiting for the application to start...", slog.Duration("delay", delay))
	if delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PollWarmup опрашивает базовый URL, пока не придёт любой HTTP-ответ
// или не истечёт Budget. Код ответа не важен: 500 на главной тоже
// означает, что Kestrel слушает порт.
type PollWarmup struct {
	Budget   time.Duration
	Interval time.Duration
	Client   *http.Client
}

// Wait опрашивает baseURL с экспоненциальной паузой.
func (w PollWarmup) Wait(ctx context.Context, baseURL string, l *slog.Logger) error {
	budget := w.Budget
	if budget <= 0 {
		budget = DefaultWarmupDelay
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultProbeTimeout}
	}

	l.Info("Waiting for the application to start...",
		slog.String("url", baseURL),
		slog.Duration("budget", budget),
	)

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = interval
	b.MaxInterval = max(interval, maxPollInterval)
	b.MaxElapsedTime = budget

	start := time.Now()
	attempts := 0
	probe := func() error {
		attempts++
		return probeOnce(ctx, client, baseURL)
	}

	err := backoff.Retry(probe, backoff.WithContext(b, ctx))
	switch {
	case err == nil:
		l.Info("Приложение отвечает",
			slog.Int("attempts", attempts),
			slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
		)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		l.Warn("Приложение не ответило за время прогрева, обход продолжается",
			slog.Int("attempts", attempts),
			slog.Duration("budget", budget),
			slog.String("error", err.Error()),
		)
		return nil
	}
}

func probeOnce(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build probe request: %w", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // дренаж
	_ = resp.Body.Close()                                       //nolint:errcheck // тело уже прочитано
	return nil
}
