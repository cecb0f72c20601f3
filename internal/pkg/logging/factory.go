package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Kargones/rb-ci/internal/constants"
)

// NewLogger создаёт Logger по конфигурации.
//
// config.Output:
//   - "stderr" или "": os.Stderr
//   - "file": файл с ротацией через lumberjack (MaxSize/MaxBackups/MaxAge/Compress)
func NewLogger(config Config) Logger {
	return NewSlogAdapter(NewSlog(config))
}

// NewSlog создаёт *slog.Logger по конфигурации.
// cmd-утилиты вызывают его один раз и ставят результат в slog.SetDefault.
func NewSlog(config Config) *slog.Logger {
	return NewSlogWithWriter(config, writerFor(config))
}

// NewLoggerWithWriter создаёт Logger, пишущий в w. Используется в тестах.
func NewLoggerWithWriter(config Config, w io.Writer) Logger {
	return NewSlogAdapter(NewSlogWithWriter(config, w))
}

// NewSlogWithWriter создаёт *slog.Logger, пишущий в w.
func NewSlogWithWriter(config Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	switch config.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func writerFor(config Config) io.Writer {
	switch config.Output {
	case OutputFile:
		return newLumberjackWriter(config)
	case OutputStderr, "":
		return os.Stderr
	default:
		bootstrapWarn("WARNING: неизвестный logging output %q, используется stderr\n", config.Output)
		return os.Stderr
	}
}

// newLumberjackWriter создаёт writer с ротацией. Директория создаётся при необходимости.
// При пустом FilePath или ошибке создания директории возвращает os.Stderr.
func newLumberjackWriter(config Config) io.Writer {
	if config.FilePath == "" {
		bootstrapWarn("WARNING: logging output=file, но filePath пустой, используется stderr\n")
		return os.Stderr
	}

	dir := filepath.Dir(config.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermLogs); err != nil {
			bootstrapWarn("WARNING: не удалось создать директорию логов %q: %v, используется stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   config.FilePath,
		MaxSize:    config.MaxSize,
		MaxBackups: config.MaxBackups,
		MaxAge:     config.MaxAge,
		Compress:   config.Compress,
	}
}

// bootstrapWarn пишет в stderr до того, как логгер создан.
func bootstrapWarn(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...) //nolint:errcheck // bootstrap stderr
}

// parseLevel конвертирует строковый уровень в slog.Level. Неизвестное значение даёт info.
func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
