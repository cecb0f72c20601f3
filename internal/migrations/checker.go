package migrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kargones/rb-ci/internal/pkg/tracing"
	"github.com/Kargones/rb-ci/internal/util/runner"
)

// Значения по умолчанию для Checker.
const (
	DefaultTool    = "dotnet"
	DefaultProject = "./ReplayBrowser/ReplayBrowser.csproj"
	DefaultTimeout = 10 * time.Minute
)

// Checker запускает `<tool> ef migrations has-pending-model-changes`.
type Checker struct {
	Tool      string
	Project   string
	ExtraArgs []string
	WorkDir   string
	Env       []string
	Encoding  string
	Mode      Mode
	Sentence  string
	Timeout   time.Duration
	Logger    *slog.Logger
}

// Outcome - результат одного запуска проверки.
type Outcome struct {
	ExitCode int
	Output   string
	Pending  bool
	Reason   string
	Mode     Mode
	Duration time.Duration
}

// Args возвращает аргументы командной строки инструмента.
func (c *Checker) Args() []string {
	args := []string{"ef", "migrations", "has-pending-model-changes", "--project", c.project()}
	return append(args, c.ExtraArgs...)
}

// Command возвращает исполняемый файл.
func (c *Checker) Command() string {
	if c.Tool == "" {
		return DefaultTool
	}
	return c.Tool
}

func (c *Checker) project() string {
	if c.Project == "" {
		return DefaultProject
	}
	return c.Project
}

func (c *Checker) mode() Mode {
	if c.Mode == "" {
		return ModeStrict
	}
	return c.Mode
}

func (c *Checker) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Check запускает инструмент и применяет Detect к результату.
//
// Ошибка возвращается, только если инструмент не отработал: не запустился,
// превысил Timeout или ctx отменён. Ненулевой код завершения ошибкой не является.
func (c *Checker) Check(ctx context.Context) (_ *Outcome, err error) {
	ctx, span := tracing.StartSpan(ctx, "migrations.check",
		attribute.String("tool", c.Command()),
		attribute.String("project", c.project()),
		attribute.String("mode", string(c.mode())),
	)
	defer func() { tracing.EndSpan(span, err) }()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log := c.logger()
	r := &runner.Runner{
		RunString: c.Command(),
		Params:    c.Args(),
		WorkDir:   c.WorkDir,
		Env:       c.Env,
		Encoding:  c.Encoding,
	}

	start := time.Now()
	out, runErr := r.RunCommand(runCtx, log)
	duration := time.Since(start)

	if runErr != nil && !runner.IsExitError(runErr) {
		if errors.Is(runErr, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%s did not finish within %s: %w", c.Command(), timeout, runErr)
		}
		return nil, fmt.Errorf("run %s: %w", c.Command(), runErr)
	}

	outcome := &Outcome{
		ExitCode: r.ExitCode,
		Output:   string(out),
		Mode:     c.mode(),
		Duration: duration,
	}
	outcome.Pending, outcome.Reason = Detect(outcome.ExitCode, outcome.Output, outcome.Mode, c.Sentence)

	if outcome.Mode == ModeStrict && IsDiscrepancy(outcome.ExitCode, outcome.Output, c.Sentence) {
		log.Warn("Инструмент завершился с кодом 0, но не подтвердил отсутствие изменений модели",
			slog.String("expected_sentence", c.sentence()),
			slog.String("output", runner.TrimOut(out)),
		)
	}

	span.SetAttributes(
		attribute.Int("exit_code", outcome.ExitCode),
		attribute.Bool("pending", outcome.Pending),
	)
	log.Info("Проверка изменений модели завершена",
		slog.Int("exit_code", outcome.ExitCode),
		slog.Bool("pending", outcome.Pending),
		slog.String("reason", outcome.Reason),
		slog.Duration("duration", duration),
	)
	return outcome, nil
}

func (c *Checker) sentence() string {
	if c.Sentence == "" {
		return NoChangesSentence
	}
	return c.Sentence
}
