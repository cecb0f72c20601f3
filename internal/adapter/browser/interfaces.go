// Package browser открывает страницы тестируемого приложения и отдаёт
// отрендеренный HTML. Две реализации: ChromeNavigator (headless Chrome через
// chromedp) и HTTPNavigator (обычный HTTP без JavaScript).
package browser

import (
	"context"
	"errors"
	"time"
)

// Условия загрузки страницы.
const (
	LoadConditionLoad        = "load"
	LoadConditionNetworkIdle = "networkidle"
)

// Виды сообщений консоли.
const (
	ConsoleKindError     = "console.error"
	ConsoleKindException = "exception"
	ConsoleKindLog       = "log"
)

// ErrReadySelector - на странице не появился ожидаемый селектор.
var ErrReadySelector = errors.New("ready selector not found")

// Response - ответ на навигацию.
type Response struct {
	URL    string
	Status int
}

// ConsoleMessage - ошибка из консоли браузера.
type ConsoleMessage struct {
	Kind string
	Text string
}

// ConsoleHandler вызывается из горутины событий браузера и не должен блокироваться.
type ConsoleHandler func(ConsoleMessage)

// Navigator открывает страницы последовательно, по одной.
type Navigator interface {
	// Navigate открывает url и возвращает ответ основного документа.
	// nil без ошибки означает, что ответа не было.
	Navigate(ctx context.Context, url string) (*Response, error)
	// Content дожидается условия загрузки, выдерживает паузу, ждёт
	// ReadySelector и возвращает HTML открытой страницы.
	Content(ctx context.Context) (string, error)
	// OnConsole задаёт обработчик ошибок консоли.
	OnConsole(fn ConsoleHandler)
	Close() error
}

// Options - параметры ожидания страницы, общие для реализаций.
type Options struct {
	LoadCondition     string
	SettleDelay       time.Duration
	ReadySelector     string
	ReadyTimeout      time.Duration
	NavigationTimeout time.Duration
	UserAgent         string
}

// Значения по умолчанию.
const (
	DefaultSettleDelay       = 3 * time.Second
	DefaultReadySelector     = "body"
	DefaultReadyTimeout      = 5 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
)

// DefaultOptions возвращает параметры по умолчанию.
func DefaultOptions() Options {
	return Options{
		LoadCondition:     LoadConditionLoad,
		SettleDelay:       DefaultSettleDelay,
		ReadySelector:     DefaultReadySelector,
		ReadyTimeout:      DefaultReadyTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
	}
}

func (o Options) withDefaults() Options {
	if o.LoadCondition == "" {
		o.LoadCondition = LoadConditionLoad
	}
	if o.ReadySelector == "" {
		o.ReadySelector = DefaultReadySelector
	}
	if o.ReadyTimeout <= 0 {
		o.ReadyTimeout = DefaultReadyTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	return o
}

// sleepCtx ждёт d или отмены ctx.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
