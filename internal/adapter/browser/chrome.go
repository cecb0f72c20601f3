package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	cdplog "github.com/chromedp/cdproto/log"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeOptions - параметры запуска Chrome.
type ChromeOptions struct {
	Options
	// ExecPath - путь к Chrome. Пустой: chromedp ищет сам.
	ExecPath  string
	Headless  bool
	NoSandbox bool
}

// ChromeNavigator управляет одной вкладкой headless Chrome.
type ChromeNavigator struct {
	opts   Options
	logger *slog.Logger

	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc

	mu        sync.Mutex
	onConsole ConsoleHandler
	idle      *idleWatch
}

var _ Navigator = (*ChromeNavigator)(nil)

// NewChromeNavigator запускает браузер и открывает about:blank.
func NewChromeNavigator(ctx context.Context, opts ChromeOptions, logger *slog.Logger) (*ChromeNavigator, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", opts.NoSandbox),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	// Браузер живёт до Close, а не до отмены ctx вызывающего.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...), slog.String("source", "chromedp"))
	}))

	n := &ChromeNavigator{
		opts:        opts.Options.withDefaults(),
		logger:      logger,
		allocCancel: allocCancel,
		tabCtx:      tabCtx,
		tabCancel:   tabCancel,
		idle:        newIdleWatch(),
	}
	chromedp.ListenTarget(tabCtx, n.handleEvent)

	startCtx, cancel := context.WithTimeout(tabCtx, n.opts.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(startCtx,
		cdplog.Enable(),
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate("about:blank"),
	); err != nil {
		n.Close() //nolint:errcheck // браузер не поднялся, закрываем что есть
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	logger.Info("Браузер запущен", slog.Bool("headless", opts.Headless))
	return n, nil
}

// OnConsole задаёт обработчик ошибок консоли.
func (n *ChromeNavigator) OnConsole(fn ConsoleHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.onConsole = fn
}

func (n *ChromeNavigator) emit(msg ConsoleMessage) {
	n.mu.Lock()
	fn := n.onConsole
	n.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// handleEvent вызывается в горутине событий chromedp.
func (n *ChromeNavigator) handleEvent(ev any) {
	switch e := ev.(type) {
	case *runtime.EventConsoleAPICalled:
		if e.Type == runtime.APITypeError {
			n.emit(ConsoleMessage{Kind: ConsoleKindError, Text: consoleArgsText(e.Args)})
		}
	case *runtime.EventExceptionThrown:
		if e.ExceptionDetails != nil {
			text := e.ExceptionDetails.Text
			if e.ExceptionDetails.Exception != nil && e.ExceptionDetails.Exception.Description != "" {
				text = e.ExceptionDetails.Exception.Description
			}
			n.emit(ConsoleMessage{Kind: ConsoleKindException, Text: text})
		}
	case *cdplog.EventEntryAdded:
		if e.Entry != nil && e.Entry.Level == cdplog.LevelError {
			n.emit(ConsoleMessage{Kind: ConsoleKindLog, Text: e.Entry.Text})
		}
	case *page.EventLifecycleEvent:
		switch e.Name {
		case "init":
			n.idle.reset()
		case "networkIdle":
			n.idle.signal()
		}
	}
}

func consoleArgsText(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		switch {
		case len(arg.Value) > 0:
			parts = append(parts, strings.Trim(string(arg.Value), `"`))
		case arg.Description != "":
			parts = append(parts, arg.Description)
		}
	}
	return strings.Join(parts, " ")
}

// actionCtx ограничивает действие таймаутом и отменой ctx вызывающего.
// Контекст производный от вкладки: его отмена не закрывает вкладку.
func (n *ChromeNavigator) actionCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	actx, cancel := context.WithTimeout(n.tabCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return actx, func() {
		stop()
		cancel()
	}
}

// Navigate открывает url. RunResponse дожидается события load.
func (n *ChromeNavigator) Navigate(ctx context.Context, url string) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n.idle.reset()

	actx, cancel := n.actionCtx(ctx, n.opts.NavigationTimeout)
	defer cancel()

	resp, err := chromedp.RunResponse(actx, chromedp.Navigate(url))
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if resp == nil {
		return nil, nil
	}
	return &Response{URL: resp.URL, Status: int(resp.Status)}, nil
}

// Content ждёт networkidle (если задан), паузу SettleDelay и ReadySelector.
func (n *ChromeNavigator) Content(ctx context.Context) (string, error) {
	if n.opts.LoadCondition == LoadConditionNetworkIdle {
		timer := time.NewTimer(n.opts.NavigationTimeout)
		select {
		case <-n.idle.wait():
			timer.Stop()
		case <-timer.C:
			return "", fmt.Errorf("network idle not reached within %s", n.opts.NavigationTimeout)
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		}
	}

	if err := sleepCtx(ctx, n.opts.SettleDelay); err != nil {
		return "", err
	}

	readyCtx, cancel := n.actionCtx(ctx, n.opts.ReadyTimeout)
	defer cancel()
	if err := chromedp.Run(readyCtx, chromedp.WaitReady(n.opts.ReadySelector, chromedp.ByQuery)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("%w: %q within %s", ErrReadySelector, n.opts.ReadySelector, n.opts.ReadyTimeout)
		}
		return "", fmt.Errorf("wait %q: %w", n.opts.ReadySelector, err)
	}

	htmlCtx, cancelHTML := n.actionCtx(ctx, n.opts.NavigationTimeout)
	defer cancelHTML()
	var html string
	if err := chromedp.Run(htmlCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

// Close закрывает браузер.
func (n *ChromeNavigator) Close() error {
	err := chromedp.Cancel(n.tabCtx)
	n.tabCancel()
	n.allocCancel()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	return err
}

// idleWatch - одноразовый сигнал networkIdle для текущего документа.
type idleWatch struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func newIdleWatch() *idleWatch {
	return &idleWatch{ch: make(chan struct{})}
}

func (w *idleWatch) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.ch = make(chan struct{})
		w.closed = false
	}
}

func (w *idleWatch) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		close(w.ch)
		w.closed = true
	}
}

func (w *idleWatch) wait() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ch
}
