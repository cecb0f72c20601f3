// Package progress показывает ход долгих операций: обхода страниц и проверки миграций.
// В терминале рисуется progress bar или spinner, в CI пишутся строки лога.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Progress отображает прогресс операции.
type Progress interface {
	Start(message string)
	// Update сообщает текущее значение и, опционально, новое сообщение.
	Update(current int64, message string)
	Finish()
	// SetTotal задаёт total, если он стал известен после Start.
	SetTotal(total int64)
}

// Options конфигурирует progress.
type Options struct {
	// Total - число единиц работы, 0 означает неизвестную длительность (spinner).
	Total int64
	// Output - обычно os.Stderr: stdout занят результатом.
	Output  io.Writer
	ShowETA bool
	// ThrottleInterval - минимальный интервал между перерисовками.
	ThrottleInterval time.Duration
	// Logger для non-TTY режима. nil - slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// IsTTY проверяет, является ли writer терминалом.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// FormatDuration: "45s", "5m 30s", "1h 7m 30s". Отрицательное значение даёт "0s".
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < 0 {
		return "0s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	out := ""
	if h > 0 {
		out = fmt.Sprintf("%dh", h)
	}
	if m > 0 {
		out = joinPart(out, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		out = joinPart(out, fmt.Sprintf("%ds", s))
	}
	return out
}

func joinPart(a, b string) string {
	if a == "" {
		return b
	}
	return a + " " + b
}

func percentOf(current, total int64) int {
	if total <= 0 {
		return 0
	}
	return min(int(float64(current)/float64(total)*100), 100)
}
