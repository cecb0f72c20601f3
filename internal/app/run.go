// Package app запускает одну команду rb-ci: конфигурация, зависимости,
// trace ID, корневой спан, метрики и выбор обработчика из реестра.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Kargones/rb-ci/internal/command"
	"github.com/Kargones/rb-ci/internal/config"
	"github.com/Kargones/rb-ci/internal/constants"
	"github.com/Kargones/rb-ci/internal/di"
	"github.com/Kargones/rb-ci/internal/pkg/apperrors"
	"github.com/Kargones/rb-ci/internal/pkg/tracing"
)

// Коды завершения процесса.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitUnknownCommand = 2
)

// tracerShutdownTimeout - сколько ждать отправки буферизированных спанов.
const tracerShutdownTimeout = 5 * time.Second

// Run выполняет команду и возвращает код завершения.
// command, если не пуст, имеет приоритет над BR_COMMAND; пустая команда означает help.
// os.Exit вызывается в main после Run, чтобы отработали все defer.
func Run(ctx context.Context, command string) int {
	return run(ctx, command, os.Stderr)
}

func run(ctx context.Context, cmdName string, stderr io.Writer) int {
	boot := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(boot, cmdName)
	if err != nil {
		fmt.Fprintf(stderr, "Ошибка: не удалось загрузить конфигурацию: %v\nКод: %s\n", err, apperrors.ErrConfigLoad) //nolint:errcheck // stderr
		return ExitFailure
	}
	if cfg.Command == "" {
		cfg.Command = constants.ActHelp
	}

	application, err := di.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Ошибка: не удалось инициализировать зависимости: %v\nКод: %s\n", err, apperrors.ErrConfigLoad) //nolint:errcheck // stderr
		return ExitFailure
	}
	l := application.Slog
	slog.SetDefault(l)
	cfg.Logger = l
	cfg.Alerter = application.Alerter
	cfg.Collector = application.MetricsCollector

	l.Debug("Информация о сборке",
		slog.String("version", constants.Version),
		slog.String("commit_hash", constants.PreCommitHash),
	)

	traceID := application.TraceID
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := application.TracerShutdown(shutdownCtx); err != nil {
			l.Error("ошибка завершения tracing",
				slog.String("error", err.Error()),
				slog.String("trace_id", traceID),
				slog.String("command", cfg.Command),
			)
		}
	}()

	handler, ok := command.Get(cfg.Command)
	if !ok {
		l.Error("неизвестная команда",
			slog.String("command", cfg.Command),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		fmt.Fprintf(stderr, "Ошибка: неизвестная команда %q, список команд: %s help\nКод: %s\n", //nolint:errcheck // stderr
			cfg.Command, constants.AppName, apperrors.ErrCommandNotFound)
		return ExitUnknownCommand
	}

	ctx = tracing.WithTraceID(ctx, traceID)
	ctx = tracing.ContextWithOTelTraceID(ctx, traceID)
	ctx, span := tracing.StartSpan(ctx, cfg.Command,
		attribute.String("command", cfg.Command),
		attribute.String("trace_id", traceID),
	)

	collector := application.MetricsCollector
	collector.RecordCommandStart(cfg.Command)
	start := time.Now()

	execErr := handler.Execute(ctx, cfg)

	collector.RecordCommandEnd(cfg.Command, time.Since(start), execErr == nil)
	_ = collector.Push(ctx) //nolint:errcheck // ошибки push логируются внутри
	tracing.EndSpan(span, execErr)

	if execErr != nil {
		l.Error("Ошибка выполнения команды",
			slog.String("command", cfg.Command),
			slog.String("error", execErr.Error()),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		return ExitFailure
	}
	l.Debug("Команда выполнена", slog.String("command", cfg.Command), slog.Duration("duration", time.Since(start)))
	return ExitOK
}
