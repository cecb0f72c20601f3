package output

import (
	"encoding/json"
	"fmt"
	"io"
)

const summaryDivider = "══════════════════════════════════════════════════════"

// TextWriter форматирует Result в человекочитаемый текст.
type TextWriter struct{}

// NewTextWriter создаёт TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// stickyWriter запоминает первую ошибку записи, последующие вызовы игнорируются.
type stickyWriter struct {
	w   io.Writer
	err error
}

func (s *stickyWriter) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

// Write выводит "команда: статус", ошибку, Data в виде JSON
// и блок сводки (только для успешных результатов).
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	sw := &stickyWriter{w: w}
	sw.printf("%s: %s\n", result.Command, result.Status)

	if result.Error != nil {
		sw.printf("Error [%s]: %s\n", result.Error.Code, result.Error.Message)
	}

	if result.Data != nil {
		dataJSON, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать Data: %w", err)
		}
		sw.printf("Data: %s\n", dataJSON)
	}

	if result.Status != StatusError {
		writeSummary(sw, result)
	}
	return sw.err
}

func writeSummary(sw *stickyWriter, result *Result) {
	sw.printf("\n%s\n📊 Сводка\n%s\n", summaryDivider, summaryDivider)

	if result.Metadata != nil && result.Metadata.DurationMs > 0 {
		sw.printf("⏱️  Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs))
	}

	if s := result.Summary; s != nil {
		for _, m := range s.KeyMetrics {
			if m.Unit != "" {
				sw.printf("📈 %s: %s %s\n", m.Name, m.Value, m.Unit)
			} else {
				sw.printf("📈 %s: %s\n", m.Name, m.Value)
			}
		}
		if s.WarningsCount > 0 {
			sw.printf("\n⚠️  Предупреждений: %d\n", s.WarningsCount)
			for _, warn := range s.Warnings {
				sw.printf("   • %s\n", warn)
			}
		}
	}

	sw.printf("%s\n", summaryDivider)
}

// formatDuration: "250мс", "3.5с", "2м 5с".
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%.1fс", float64(ms)/1000)
	}
	return fmt.Sprintf("%dм %dс", sec/60, sec%60)
}
