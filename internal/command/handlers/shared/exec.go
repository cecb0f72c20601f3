// Package shared содержит общее для обработчиков команд: начало выполнения,
// режимы предпросмотра и единый путь вывода ошибок.
package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/pkg/alerting"
	"github.com/Kargones/rb-ci/internal/pkg/dryrun"
	"github.com/Kargones/rb-ci/internal/pkg/output"
	"github.com/Kargones/rb-ci/internal/pkg/tracing"
)

// Exec - состояние одного выполнения команды.
type Exec struct {
	Command string
	Start   time.Time
	TraceID string
	Format  string
	Log     *slog.Logger
	Out     io.Writer
	// Project попадает в алерты.
	Project string
}

// Begin фиксирует время старта, trace ID и формат вывода.
// out == nil означает os.Stdout.
func Begin(ctx context.Context, cfg *config.Config, command string, out io.Writer) *Exec {
	traceID := tracing.TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = tracing.GenerateTraceID()
	}
	if out == nil {
		out = os.Stdout
	}
	base := slog.Default()
	if cfg != nil && cfg.Logger != nil {
		base = cfg.Logger
	}
	return &Exec{
		Command: command,
		Start:   time.Now(),
		TraceID: traceID,
		Format:  os.Getenv(constants.EnvOutputFormat),
		Log:     base.With(slog.String("trace_id", traceID), slog.String("command", command)),
		Out:     out,
	}
}

// JSON - вывод в формате BR_OUTPUT_FORMAT=json.
func (e *Exec) JSON() bool {
	return strings.EqualFold(e.Format, output.FormatJSON)
}

// Metadata возвращает метаданные на текущий момент.
func (e *Exec) Metadata() *output.Metadata {
	return output.NewMetadata(e.Start, e.TraceID, constants.APIVersion)
}

// Preview обрабатывает BR_DRY_RUN, BR_PLAN_ONLY и BR_VERBOSE.
// handled == true: план выведен, команду выполнять не нужно.
// В verbose план печатается перед выполнением и возвращается для JSON-результата.
func (e *Exec) Preview(buildPlan func() *output.DryRunPlan) (handled bool, verbosePlan *output.DryRunPlan, err error) {
	switch {
	case dryrun.IsDryRun():
		e.Log.Info("Dry-run режим: построение плана")
		return true, nil, output.WriteDryRunResult(e.Out, e.Format, e.Command, e.TraceID, constants.APIVersion, e.Start, buildPlan())
	case dryrun.IsPlanOnly():
		e.Log.Info("Plan-only режим: отображение плана операций")
		return true, nil, output.WritePlanOnlyResult(e.Out, e.Format, e.Command, e.TraceID, constants.APIVersion, e.Start, buildPlan())
	case dryrun.IsVerbose():
		e.Log.Info("Verbose режим: отображение плана перед выполнением")
		plan := buildPlan()
		if !e.JSON() {
			if err := plan.WritePlanText(e.Out); err != nil {
				e.Log.Warn("Не удалось вывести план операций", slog.String("error", err.Error()))
			}
			fmt.Fprintln(e.Out) //nolint:errcheck // stdout
		}
		return false, plan, nil
	}
	return false, nil, nil
}

// Success выводит результат: текст через writeText, JSON через output.Writer.
func (e *Exec) Success(data any, plan *output.DryRunPlan, summary *output.SummaryInfo, writeText func(io.Writer) error) error {
	if !e.JSON() {
		return writeText(e.Out)
	}
	result := output.NewSuccessResult(e.Command, data, e.Metadata())
	result.Plan = plan
	result.Summary = summary
	return output.NewWriter(e.Format).Write(e.Out, result)
}

// Fail отправляет алерт, выводит ошибку и возвращает её.
// writeText, если задан, печатает подробности перед строками "Ошибка/Код";
// data попадает в JSON-результат.
func (e *Exec) Fail(ctx context.Context, cfg *config.Config, code, message string, data any, writeText func(io.Writer) error) error {
	if cfg != nil && cfg.Alerter != nil {
		_ = cfg.Alerter.Send(ctx, alerting.Alert{ //nolint:errcheck // Send всегда nil
			ErrorCode: code,
			Message:   message,
			Command:   e.Command,
			Project:   e.Project,
			TraceID:   e.TraceID,
			Timestamp: time.Now(),
			Severity:  alerting.SeverityCritical,
		})
	}

	if !e.JSON() {
		if writeText != nil {
			if err := writeText(e.Out); err != nil {
				e.Log.Warn("Не удалось вывести отчёт", slog.String("error", err.Error()))
			}
		}
		return HandleError(e.Out, message, code)
	}

	result := output.NewErrorResult(e.Command, code, message, data, e.Metadata())
	if err := output.NewWriter(e.Format).Write(e.Out, result); err != nil {
		e.Log.Error("Не удалось записать JSON-ответ об ошибке", slog.String("error", err.Error()))
	}
	return fmt.Errorf("%s: %s", code, message)
}
