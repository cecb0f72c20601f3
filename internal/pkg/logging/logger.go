// Package logging предоставляет интерфейс и реализации для структурированного логирования.
package logging

import "log/slog"

// Logger определяет интерфейс для структурированного логирования.
// Все методы принимают сообщение и опциональные key-value пары:
//
//	logger.Info("Страница проверена", "path", "/privacy", "status", 200)
//
// ВАЖНО: Logger пишет ТОЛЬКО в stderr или файл, никогда в stdout -
// stdout занят результатом команды (text/json).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With возвращает новый Logger с добавленными атрибутами.
	With(args ...any) Logger
}

// SlogAdapter реализует Logger поверх slog.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter создаёт SlogAdapter. При nil используется slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
		logger.Warn("logging: nil slog.Logger passed to NewSlogAdapter, using default")
	}
	return &SlogAdapter{logger: logger}
}

// Debug записывает сообщение уровня DEBUG.
func (s *SlogAdapter) Debug(msg string, args ...any) { s.logger.Debug(msg, args...) }

// Info записывает сообщение уровня INFO.
func (s *SlogAdapter) Info(msg string, args ...any) { s.logger.Info(msg, args...) }

// Warn записывает сообщение уровня WARN.
func (s *SlogAdapter) Warn(msg string, args ...any) { s.logger.Warn(msg, args...) }

// Error записывает сообщение уровня ERROR.
func (s *SlogAdapter) Error(msg string, args ...any) { s.logger.Error(msg, args...) }

// With возвращает новый Logger с добавленными атрибутами.
func (s *SlogAdapter) With(args ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(args...)}
}

// Slog возвращает нижележащий *slog.Logger.
// Нужен для пакетов, которые работают с slog напрямую (progress, runner).
func (s *SlogAdapter) Slog() *slog.Logger {
	return s.logger
}

// NopLogger - Logger, который ничего не делает. Используется в тестах.
type NopLogger struct{}

// NewNopLogger создаёт Logger, который игнорирует все сообщения.
func NewNopLogger() Logger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}
func (n *NopLogger) Info(_ string, _ ...any)  {}
func (n *NopLogger) Warn(_ string, _ ...any)  {}
func (n *NopLogger) Error(_ string, _ ...any) {}

// With возвращает тот же NopLogger.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}

// ToSlog возвращает *slog.Logger для произвольного Logger.
// Для SlogAdapter - исходный логгер, для остальных - slog.Default().
func ToSlog(l Logger) *slog.Logger {
	if a, ok := l.(*SlogAdapter); ok {
		return a.logger
	}
	if _, ok := l.(*NopLogger); ok {
		return slog.New(slog.DiscardHandler)
	}
	return slog.Default()
}
