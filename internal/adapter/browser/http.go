package browser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// maxDocumentSize ограничивает чтение страницы.
const maxDocumentSize = 10 << 20

// HTTPNavigator загружает страницы обычным GET без выполнения JavaScript.
// Ошибки консоли ему недоступны, OnConsole только запоминает обработчик.
type HTTPNavigator struct {
	opts   Options
	client *http.Client

	mu   sync.Mutex
	body []byte
}

var _ Navigator = (*HTTPNavigator)(nil)

// NewHTTPNavigator создаёт HTTPNavigator. client == nil: http.Client с NavigationTimeout.
func NewHTTPNavigator(opts Options, client *http.Client) *HTTPNavigator {
	opts = opts.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: opts.NavigationTimeout}
	}
	return &HTTPNavigator{opts: opts, client: client}
}

// Navigate выполняет GET и запоминает тело ответа для Content.
func (n *HTTPNavigator) Navigate(ctx context.Context, url string) (*Response, error) {
	n.mu.Lock()
	n.body = nil
	n.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	req.Header.Set("Accept", "text/html")
	if n.opts.UserAgent != "" {
		req.Header.Set("User-Agent", n.opts.UserAgent)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	n.mu.Lock()
	n.body = body
	n.mu.Unlock()
	return &Response{URL: resp.Request.URL.String(), Status: resp.StatusCode}, nil
}

// Content выдерживает SettleDelay и проверяет ReadySelector в загруженном документе.
func (n *HTTPNavigator) Content(ctx context.Context) (string, error) {
	if err := sleepCtx(ctx, n.opts.SettleDelay); err != nil {
		return "", err
	}

	n.mu.Lock()
	body := n.body
	n.mu.Unlock()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}
	if doc.Find(n.opts.ReadySelector).Length() == 0 {
		return "", fmt.Errorf("%w: %q", ErrReadySelector, n.opts.ReadySelector)
	}
	return string(body), nil
}

// OnConsole ничего не делает: без JavaScript консоли нет.
func (n *HTTPNavigator) OnConsole(_ ConsoleHandler) {}

// Close закрывает простаивающие соединения.
func (n *HTTPNavigator) Close() error {
	n.client.CloseIdleConnections()
	return nil
}
