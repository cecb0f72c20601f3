// Package browsertest предоставляет сценарный browser.Navigator для тестов.
package browsertest

import (
	"context"
	"net/http"
	"net/url"
	"sync"

	"github.com/Kargones/rb-ci/internal/adapter/browser"
)

var _ browser.Navigator = (*Navigator)(nil)

// Page описывает, как Navigator отвечает на путь.
type Page struct {
	Status int
	HTML   string
	// NoResponse: Navigate вернёт nil без ошибки.
	NoResponse  bool
	NavigateErr error
	ContentErr  error
	// Console отправляются обработчику во время Navigate.
	Console []browser.ConsoleMessage
	// Panic, если не nil, передаётся в panic внутри Navigate.
	Panic any
}

// Navigator отвечает по таблице Pages, ключ - путь URL.
// Неизвестный путь отдаёт 404 с пустой страницей.
type Navigator struct {
	mu        sync.Mutex
	Pages     map[string]Page
	visited   []string
	current   Page
	onConsole browser.ConsoleHandler
	closed    bool
}

// New создаёт Navigator.
func New(pages map[string]Page) *Navigator {
	return &Navigator{Pages: pages}
}

// Navigate ищет страницу по пути url.
func (n *Navigator) Navigate(ctx context.Context, rawURL string) (*browser.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}

	n.mu.Lock()
	n.visited = append(n.visited, path)
	p, ok := n.Pages[path]
	if !ok {
		p = Page{Status: http.StatusNotFound, HTML: "<html><body>Not Found</body></html>"}
	}
	n.current = p
	handler := n.onConsole
	n.mu.Unlock()

	if p.Panic != nil {
		panic(p.Panic)
	}
	if handler != nil {
		for _, msg := range p.Console {
			handler(msg)
		}
	}
	if p.NavigateErr != nil {
		return nil, p.NavigateErr
	}
	if p.NoResponse {
		return nil, nil
	}
	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &browser.Response{URL: rawURL, Status: status}, nil
}

// Content возвращает HTML текущей страницы.
func (n *Navigator) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current.ContentErr != nil {
		return "", n.current.ContentErr
	}
	return n.current.HTML, nil
}

// OnConsole задаёт обработчик ошибок консоли.
func (n *Navigator) OnConsole(fn browser.ConsoleHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onConsole = fn
}

// Close отмечает навигатор закрытым.
func (n *Navigator) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}

// Visited возвращает пути в порядке посещения.
func (n *Navigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visited...)
}

// Closed сообщает, вызывался ли Close.
func (n *Navigator) Closed() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.closed
}
