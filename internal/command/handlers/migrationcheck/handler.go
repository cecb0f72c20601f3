// Package migrationcheck реализует команду check-migrations: проверку того,
// что модель данных приложения не разошлась с последней миграцией.
package migrationcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/command/handlers/shared"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/migrations"
	"github.com/Kargones/rb-ci/internal/pkg/apperrors"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/pkg/progress"
)

// Результаты для метрики rb_ci_migration_check_total.
const (
	ResultClean   = "clean"
	ResultPending = "pending"
	ResultError   = "error"
)

// RegisterCmd регистрирует команду и её старое имя.
func RegisterCmd() {
	command.RegisterWithAlias(&Handler{}, constants.LegacyCheckMigrations)
}

// Checker - запуск проверки. В production это *migrations.Checker.
type Checker interface {
	Check(ctx context.Context) (*migrations.Outcome, error)
}

// Data - результат проверки.
type Data struct {
	Pending    bool   `json:"pending"`
	Reason     string `json:"reason"`
	Mode       string `json:"mode"`
	ExitCode   int    `json:"exit_code"`
	Project    string `json:"project"`
	Output     string `json:"output,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

func (d *Data) writeText(w io.Writer) error {
	if !d.Pending {
		_, err := fmt.Fprintln(w, "No pending model changes detected.")
		return err
	}
	_, err := fmt.Fprintf(w, "Pending model changes detected:\n%s\n", strings.TrimRight(d.Output, "\n"))
	return err
}

// Handler обрабатывает check-migrations.
type Handler struct {
	// checker подменяется в тестах; nil - migrations.Checker из конфигурации.
	checker Checker
	// out подменяется в тестах; nil - os.Stdout.
	out io.Writer
}

// Name возвращает имя команды.
func (h *Handler) Name() string {
	return constants.ActCheckMigrations
}

// Description возвращает описание команды для help.
func (h *Handler) Description() string {
	return "Проверить, что модель данных не содержит изменений без миграции (dotnet ef)"
}

// Execute запускает проверку. Незафиксированные изменения и сбой инструмента
// возвращают ошибку, то есть exit code 1.
func (h *Handler) Execute(ctx context.Context, cfg *config.Config) error {
	e := shared.Begin(ctx, cfg, constants.ActCheckMigrations, h.out)

	if err := ctx.Err(); err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsCheckFailed, "операция отменена: "+err.Error(), nil, nil)
	}
	if cfg == nil || cfg.Migrations == nil {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, "секция migrations не загружена", nil, nil)
	}
	mc := cfg.Migrations
	e.Project = mc.Project

	mode, err := migrations.ParseMode(mc.Mode)
	if err != nil {
		return e.Fail(ctx, cfg, apperrors.ErrConfigValidate, err.Error(), nil, nil)
	}
	checker := h.newChecker(cfg, mode, e.Log)

	handled, plan, err := e.Preview(func() *output.DryRunPlan { return buildPlan(cfg, checker) })
	if handled {
		return err
	}

	e.Log.Info("Проверка изменений модели", slog.String("project", mc.Project), slog.String("mode", string(mode)))
	spin := progress.NewIndeterminate()
	spin.Start("Проверка изменений модели...")
	outcome, err := h.check(ctx, checker)
	spin.Finish()

	if err != nil {
		record(cfg, ResultError)
		e.Log.Error("Не удалось выполнить проверку", slog.String("error", err.Error()))
		msg := fmt.Sprintf("An error occurred while checking for pending migrations: %v", err)
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsCheckFailed, msg, nil, nil)
	}

	data := &Data{
		Pending:    outcome.Pending,
		Reason:     outcome.Reason,
		Mode:       string(outcome.Mode),
		ExitCode:   outcome.ExitCode,
		Project:    mc.Project,
		Output:     outcome.Output,
		DurationMs: outcome.Duration.Milliseconds(),
	}

	if outcome.Pending {
		record(cfg, ResultPending)
		e.Log.Warn("Найдены изменения модели без миграции", slog.String("reason", outcome.Reason))
		return e.Fail(ctx, cfg, apperrors.ErrMigrationsPending,
			"изменения модели не зафиксированы миграцией: "+outcome.Reason, data, data.writeText)
	}

	record(cfg, ResultClean)
	e.Log.Info("Изменений модели нет", slog.Duration("duration", time.Since(e.Start)))
	summary := output.NewSummaryInfo()
	summary.AddMetric("exit_code", fmt.Sprint(outcome.ExitCode), "")
	summary.AddMetric("duration", fmt.Sprint(outcome.Duration.Milliseconds()), "ms")
	return e.Success(data, plan, summary, data.writeText)
}

// check изолирует панику инструмента или заглушки: команда не падает за свою границу.
func (h *Handler) check(ctx context.Context, c Checker) (outcome *migrations.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return c.Check(ctx)
}

func (h *Handler) newChecker(cfg *config.Config, mode migrations.Mode, log *slog.Logger) Checker {
	if h.checker != nil {
		return h.checker
	}
	mc := cfg.Migrations
	return &migrations.Checker{
		Tool:      mc.Tool,
		Project:   mc.Project,
		ExtraArgs: mc.ExtraArgs,
		WorkDir:   cfg.WorkDir,
		Encoding:  mc.Encoding,
		Mode:      mode,
		Sentence:  mc.Sentence,
		Timeout:   mc.Timeout,
		Logger:    log,
	}
}

func record(cfg *config.Config, result string) {
	if cfg.Collector != nil {
		cfg.Collector.RecordMigrationCheck(result)
	}
}
