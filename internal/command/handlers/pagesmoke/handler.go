// Package pagesmoke реализует команду smoke-pages: запуск приложения,
// обход страниц в браузере и поиск страниц исключений и ошибок консоли.
package pagesmoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Kargones/rb-ci/internal/adapter/browser"
	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/command/handlers/shared"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/apperrors"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/smoke"
	"github.com/Kargones/rb-ci/internal/util/runner"
)

// RegisterCmd регистрирует команду и её старое имя.
func RegisterCmd() {
	command.RegisterWithAlias(&Handler{}, constants.LegacySmokePages)
}

// Handler обрабатывает smoke-pages.
type Handler struct {
	// Заглушки для тестов. nil - реальный процесс, браузер и прогрев из конфигурации.
	launcher  smoke.Launcher
	navigator smoke.NavigatorFactory
	warmup    smoke.Warmup
	out       io.Writer
}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActSmokePages
}

// Description возвращает описание команды для help.
func (h *Handler) Description() string {
	return "Запустить приложение и проверить страницы на исключения, коды ошибок и ошибки консоли"
}

// Execute проводит прогон. Любая найденная проблема возвращает ошибку.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	e := shared.Begin(ctx, cfg, constants.ActSmokePages, h.out)

	if err := ctx.Err(); err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrSmokeLaunch, "операция отменена: "+err.Error(), nil, nil)
	}
	if cfg == nil || cfg.Smoke == nil {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, "секция smoke не загружена", nil, nil)
	}
	sc := cfg.Smoke
	e.Project = sc.Project

	targets, source, err := resolveTargets(sc)
	if err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, err.Error(), nil, nil)
	}
	e.Log.Info("Список страниц", slog.String("source", source), slog.Int("count", len(targets)))

	handled, plan, err := e.Preview(func() *output.DryRunPlan { return buildPlan(cfg, targets, source) })
	if handled {
		return err
	}

	driver := &smoke.Driver{
		Launcher:            h.newLauncher(cfg),
		Warmup:              h.newWarmup(sc),
		NewNavigator:        h.newNavigator(sc, e.Log),
		BaseURL:             sc.BaseURL,
		Targets:             targets,
		FailOnConsoleErrors: !sc.IgnoreConsoleErrors,
		Logger:              e.Log,
	}
	if cfg.Collector != nil {
		driver.Metrics = cfg.Collector
	}

	report, runErr := driver.Run(ctx)
	data := report.Snapshot()

	var launchErr *smoke.LaunchError
	var browserErr *smoke.BrowserError
	switch {
	case runErr == nil:
		return e.Success(&data, plan, summarize(&data), textWriter(&data))
	case errors.As(runErr, &launchErr):
		msg := "не удалось запустить приложение: " + launchErr.Err.Error()
		if len(launchErr.Output) > 0 {
			e.Log.Error("Вывод приложения", slog.Any("tail", launchErr.Output))
		}
		return e.Fail(ctx, cfg, apperrors.ErrSmokeLaunch, msg, &data, textWriter(&data))
	case errors.As(runErr, &browserErr):
		return e.Fail(ctx, cfg, apperrors.ErrSmokeBrowser,
			"не удалось запустить браузер: "+browserErr.Err.Error(), &data, textWriter(&data))
	case errors.Is(runErr, smoke.ErrTestFailed):
		msg := fmt.Sprintf("Test failed due to console errors or exceptions: страниц с ошибками %d из %d, ошибок консоли %d",
			data.PagesFailed, data.PagesTotal, data.ConsoleErrors)
		return e.Fail(ctx, cfg, apperrors.ErrSmokePagesFailed, msg, &data, textWriter(&data))
	default:
		return e.Fail(ctx, cfg, apperrors.ErrSmokePagesFailed, "прогон прерван: "+runErr.Error(), &data, textWriter(&data))
	}
}

// resolveTargets: файл BR_SMOKE_TARGETS_FILE, затем smoke.targets, затем встроенный список.
func resolveTargets(sc *config.SmokeConfig) ([]smoke.Target, string, error) {
	var targets []smoke.Target
	source := "default"
	switch {
	case sc.TargetsFile != "":
		loaded, err := smoke.LoadTargetsFile(sc.TargetsFile)
		if err != nil {
			return nil, "", err
		}
		targets, source = loaded, sc.TargetsFile
	case len(sc.Targets) > 0:
		targets = make([]smoke.Target, 0, len(sc.Targets))
		for _, t := range sc.Targets {
			targets = append(targets, smoke.Target{Path: t.Path, ExpectStatus: t.ExpectStatus, ExpectMarker: t.ExpectMarker})
		}
		source = "config"
	default:
		targets = smoke.DefaultTargets()
	}
	if err := smoke.ValidateTargets(targets); err != nil {
		return nil, "", err
	}
	return targets, source, nil
}

func (h *Handler) newLauncher(cfg *config.Config) smoke.Launcher {
	if h.launcher != nil {
		return h.launcher
	}
	sc := cfg.Smoke
	return smoke.ProcessLauncher{Background: runner.Background{
		RunString:    sc.Runtime,
		Params:       sc.RunArgs(),
		WorkDir:      cfg.WorkDir,
		Env:          sc.AppEnv,
		Encoding:     sc.Encoding,
		StreamOutput: sc.StreamOutput,
		GracePeriod:  sc.GracePeriod,
	}}
}

func (h *Handler) newWarmup(sc *config.SmokeConfig) smoke.Warmup {
	if h.warmup != nil {
		return h.warmup
	}
	if sc.Warmup == config.WarmupPoll {
		return smoke.PollWarmup{Budget: sc.WarmupDelay, Interval: sc.PollInterval}
	}
	return smoke.FixedWarmup{Delay: sc.WarmupDelay}
}

func (h *Handler) newNavigator(sc *config.SmokeConfig, log *slog.Logger) smoke.NavigatorFactory {
	if h.navigator != nil {
		return h.navigator
	}
	opts := browser.Options{
		LoadCondition:     sc.LoadCondition,
		SettleDelay:       sc.SettleDelay,
		ReadySelector:     sc.ReadySelector,
		ReadyTimeout:      sc.ReadyTimeout,
		NavigationTimeout: sc.NavigationTimeout,
	}
	if sc.Browser == config.BrowserHTTP {
		return func(context.Context) (browser.Navigator, error) {
			return browser.NewHTTPNavigator(opts, &http.Client{Timeout: sc.NavigationTimeout}), nil
		}
	}
	return func(ctx context.Context) (browser.Navigator, error) {
		return browser.NewChromeNavigator(ctx, browser.ChromeOptions{
			Options:   opts,
			ExecPath:  sc.ChromePath,
			Headless:  !sc.ShowBrowser,
			NoSandbox: sc.NoSandbox,
		}, log)
	}
}

func summarize(d *smoke.Data) *output.SummaryInfo {
	s := output.NewSummaryInfo()
	s.AddMetric("Страниц проверено", fmt.Sprint(d.PagesTotal), "шт")
	s.AddMetric("Страниц с ошибками", fmt.Sprint(d.PagesFailed), "шт")
	s.AddMetric("Ошибок консоли", fmt.Sprint(d.ConsoleErrors), "шт")
	if d.ConsoleErrors > 0 && d.Passed {
		s.AddWarning("ошибки консоли не проваливают прогон (BR_SMOKE_IGNORE_CONSOLE_ERRORS)")
	}
	return s
}

func textWriter(d *smoke.Data) func(io.Writer) error {
	return func(w io.Writer) error { return writeText(w, d) }
}

// writeText печатает отчёт по страницам.
func writeText(w io.Writer, d *smoke.Data) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	status := "✅ Smoke test passed"
	if !d.Passed {
		status = "❌ Test failed due to console errors or exceptions"
	}
	printf("%s\n", status)
	if d.FatalError != "" {
		printf("Причина: %s\n", d.FatalError)
	}
	if len(d.Visits) > 0 {
		printf("\nСтраницы:\n")
		for _, v := range d.Visits {
			mark := "OK  "
			if !v.OK() {
				mark = "FAIL"
			}
			printf("  [%s] %-50s %s", mark, v.Path, v.Outcome)
			if v.Status != 0 {
				printf(" (%d)", v.Status)
			}
			if v.Message != "" && !v.OK() {
				printf(": %s", v.Message)
			}
			printf("  %v\n", v.Duration.Round(time.Millisecond))
		}
	}
	if len(d.ConsoleEntries) > 0 {
		printf("\nОшибки консоли:\n")
		for _, c := range d.ConsoleEntries {
			printf("  %s [%s] %s\n", c.Path, c.Kind, c.Text)
		}
	}
	printf("\nСтраниц: %d, с ошибками: %d, ошибок консоли: %d\n", d.PagesTotal, d.PagesFailed, d.ConsoleErrors)
	return err
}
