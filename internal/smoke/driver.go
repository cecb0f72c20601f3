// Package smoke запускает веб-приложение, обходит его страницы в браузере
// и ищет страницы исключений, коды ошибок и ошибки консоли.
package smoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kargones/rb-ci/internal/adapter/browser"
	"github.com/Kargones/rb-ci/internal/pkg/progress"
	"github.com/Kargones/rb-ci/internal/pkg/tracing"
	"github.com/Kargones/rb-ci/internal/util/runner"
)

// ErrTestFailed - прогон нашёл хотя бы одну проблему.
var ErrTestFailed = errors.New("smoke test failed")

// DefaultTeardownTimeout ограничивает остановку приложения и браузера.
const DefaultTeardownTimeout = 30 * time.Second

// App - запущенное приложение.
type App interface {
	Pid() int
	Exited() bool
	Tail() []string
	Stop(ctx context.Context) (terminated bool, err error)
}

// Launcher запускает приложение.
type Launcher interface {
	Launch(ctx context.Context, l *slog.Logger) (App, error)
}

// ProcessLauncher запускает приложение дочерним процессом.
type ProcessLauncher struct {
	Background runner.Background
}

// Launch запускает процесс.
func (pl ProcessLauncher) Launch(ctx context.Context, l *slog.Logger) (App, error) {
	p, err := pl.Background.Start(ctx, l)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// NavigatorFactory открывает браузер.
type NavigatorFactory func(ctx context.Context) (browser.Navigator, error)

// PageRecorder принимает метрики посещений.
type PageRecorder interface {
	RecordPageVisit(path, outcome string, duration time.Duration)
}

// Driver проводит один прогон: запуск, прогрев, обход, остановка.
type Driver struct {
	Launcher     Launcher
	Warmup       Warmup
	NewNavigator NavigatorFactory
	BaseURL      string
	Targets      []Target
	// FailOnConsoleErrors: ошибка консоли браузера проваливает прогон.
	FailOnConsoleErrors bool
	TeardownTimeout     time.Duration

	Metrics  PageRecorder
	Progress progress.Progress
	Logger   *slog.Logger
}

// Run выполняет прогон. Приложение останавливается при любом исходе,
// включая панику и отмену ctx. Возвращает ErrTestFailed, если найдены проблемы;
// прочие ошибки означают, что прогон не состоялся.
func (d *Driver) Run(ctx context.Context) (report *Report, err error) {
	log := d.logger()
	report = NewReport(d.FailOnConsoleErrors)

	ctx, span := tracing.StartSpan(ctx, "smoke.run",
		attribute.String("base_url", d.baseURL()),
		attribute.Int("targets", len(d.Targets)),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if err := d.run(ctx, report, log); err != nil {
		return report, err
	}
	if report.Failed() {
		log.Error("Test failed due to console errors or exceptions")
		return report, ErrTestFailed
	}
	log.Info("Smoke test passed", slog.Int("pages", len(report.Visits())))
	return report, nil
}

func (d *Driver) run(ctx context.Context, report *Report, log *slog.Logger) (err error) {
	if err := ValidateTargets(d.Targets); err != nil {
		return err
	}
	if d.Launcher == nil || d.NewNavigator == nil {
		return errors.New("smoke driver is not configured: launcher and navigator are required")
	}

	app, err := d.Launcher.Launch(ctx, log)
	if err != nil {
		return &LaunchError{Err: err}
	}
	report.SetApp(app.Pid(), false)

	var nav browser.Navigator
	defer func() {
		// Остановка не должна зависеть от отмены ctx прогона.
		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.teardownTimeout())
		defer cancel()
		d.teardown(tctx, app, nav, report, log)
	}()

	if err := d.warmup().Wait(ctx, d.baseURL(), log); err != nil {
		return err
	}
	if app.Exited() {
		report.Fail("application exited during warmup")
		log.Error("Приложение завершилось во время прогрева", slog.String("output", tailText(app.Tail())))
		return &LaunchError{Err: errors.New("application exited during warmup"), Output: app.Tail()}
	}

	nav, err = d.NewNavigator(ctx)
	if err != nil {
		report.Fail("browser: " + err.Error())
		log.Error("Не удалось запустить браузер", slog.String("error", err.Error()))
		return &BrowserError{Err: err}
	}
	var current atomicPath
	nav.OnConsole(func(m browser.ConsoleMessage) {
		path := current.Load()
		report.RecordConsole(ConsoleEntry{Path: path, Kind: m.Kind, Text: m.Text})
		log.Error(fmt.Sprintf("Error found on %s: %s", path, m.Text), slog.String("kind", m.Kind))
	})

	prog := d.Progress
	if prog == nil {
		prog = progress.New(progress.Options{Total: int64(len(d.Targets)), Logger: log})
	}
	prog.Start("Обход страниц")
	defer prog.Finish()

	// После отмены ctx обход не прерывается: оставшиеся страницы
	// записываются как ошибки посещения без обращения к браузеру.
	for i, t := range d.Targets {
		current.Store(t.Path)
		var v Visit
		if cerr := ctx.Err(); cerr != nil {
			v = cancelledVisit(d.baseURL(), t, cerr)
			log.Error(fmt.Sprintf("Error visiting %s: %v", t.Path, cerr), slog.String("url", v.URL))
		} else {
			v = d.visit(ctx, nav, t, log)
		}
		report.AddVisit(v)
		if d.Metrics != nil {
			d.Metrics.RecordPageVisit(t.Path, v.Outcome, v.Duration)
		}
		prog.Update(int64(i+1), t.Path)
	}
	return ctx.Err()
}

func cancelledVisit(baseURL string, t Target, err error) Visit {
	return Visit{
		Path:    t.Path,
		URL:     JoinURL(baseURL, t.Path),
		Outcome: OutcomeVisitError,
		Message: err.Error(),
	}
}

// visit посещает одну страницу. Паника внутри навигатора превращается
// в ошибку посещения и не прерывает обход.
func (d *Driver) visit(ctx context.Context, nav browser.Navigator, t Target, log *slog.Logger) (v Visit) {
	url := JoinURL(d.baseURL(), t.Path)
	v = Visit{Path: t.Path, URL: url}
	start := time.Now()

	ctx, span := tracing.StartSpan(ctx, "smoke.visit", attribute.String("path", t.Path))
	defer func() {
		if r := recover(); r != nil {
			v.Outcome = OutcomeVisitError
			v.Message = fmt.Sprintf("panic: %v", r)
			log.Error(fmt.Sprintf("Error visiting %s: %v", t.Path, r), slog.String("url", url))
		}
		v.Duration = time.Since(start)
		var spanErr error
		if !v.OK() {
			spanErr = errors.New(v.Outcome + ": " + v.Message)
		}
		span.SetAttributes(attribute.String("outcome", v.Outcome), attribute.Int("status", v.Status))
		tracing.EndSpan(span, spanErr)
	}()

	log.Info(fmt.Sprintf("Visiting %s", t.Path), slog.String("url", url))

	resp, err := nav.Navigate(ctx, url)
	if err != nil {
		v.Outcome = OutcomeVisitError
		v.Message = err.Error()
		log.Error(fmt.Sprintf("Error visiting %s: %v", t.Path, err), slog.String("url", url))
		return v
	}
	if resp == nil {
		v.Outcome = OutcomeNoResponse
		v.Message = "no response received"
		log.Error(fmt.Sprintf("Failed to load %s: No response received", t.Path), slog.String("url", url))
		return v
	}
	v.Status = resp.Status
	if !t.StatusOK(resp.Status) {
		v.Outcome = OutcomeHTTPError
		v.Message = fmt.Sprintf("status %d", resp.Status)
		log.Error(fmt.Sprintf("Failed to load %s: Status %d", t.Path, resp.Status), slog.String("url", url))
		return v
	}

	html, err := nav.Content(ctx)
	if err != nil {
		v.Outcome = OutcomeVisitError
		v.Message = err.Error()
		log.Error(fmt.Sprintf("Error visiting %s: %v", t.Path, err), slog.String("url", url))
		return v
	}

	text, found, err := FindMarker(html)
	switch {
	case err != nil:
		v.Outcome = OutcomeVisitError
		v.Message = err.Error()
		log.Error(fmt.Sprintf("Error visiting %s: %v", t.Path, err), slog.String("url", url))
	case found && !t.ExpectMarker:
		v.Outcome = OutcomeExceptionMarker
		v.Message = text
		log.Error(fmt.Sprintf("Error found on %s: %s", t.Path, text), slog.String("url", url))
	case !found && t.ExpectMarker:
		v.Outcome = OutcomeMarkerMissing
		v.Message = "expected exception page was not rendered"
		log.Error(fmt.Sprintf("Error found on %s: expected exception page was not rendered", t.Path), slog.String("url", url))
	default:
		v.Outcome = OutcomeOK
		log.Info(fmt.Sprintf("No errors found on %s", t.Path), slog.String("url", url), slog.Int("status", resp.Status))
	}
	return v
}

// teardown закрывает браузер и останавливает приложение.
func (d *Driver) teardown(ctx context.Context, app App, nav browser.Navigator, report *Report, log *slog.Logger) {
	if nav != nil {
		if err := nav.Close(); err != nil {
			log.Warn("Ошибка закрытия браузера", slog.String("error", err.Error()))
		}
	}

	log.Info("Stopping the application...")
	terminated, err := app.Stop(ctx)
	report.SetApp(app.Pid(), terminated)
	if err != nil {
		log.Error(fmt.Sprintf("Error stopping the application: %v", err))
	}
}

func (d *Driver) baseURL() string {
	if d.BaseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(d.BaseURL, "/")
}

func (d *Driver) warmup() Warmup {
	if d.Warmup == nil {
		return FixedWarmup{Delay: DefaultWarmupDelay}
	}
	return d.Warmup
}

func (d *Driver) teardownTimeout() time.Duration {
	if d.TeardownTimeout <= 0 {
		return DefaultTeardownTimeout
	}
	return d.TeardownTimeout
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

// LaunchError - приложение не запустилось или упало во время прогрева.
type LaunchError struct {
	Err    error
	Output []string
}

func (e *LaunchError) Error() string { return "launch application: " + e.Err.Error() }
func (e *LaunchError) Unwrap() error { return e.Err }

// BrowserError - браузер не запустился.
type BrowserError struct {
	Err error
}

func (e *BrowserError) Error() string { return "start browser: " + e.Err.Error() }
func (e *BrowserError) Unwrap() error { return e.Err }

func tailText(lines []string) string {
	const maxLines = 20
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "\n")
}
