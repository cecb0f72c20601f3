package output

import (
	"io"
	"strings"
)

// FormatJSON и FormatText - поддерживаемые форматы вывода (BR_OUTPUT_FORMAT).
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Writer форматирует результат команды и пишет его в w.
type Writer interface {
	Write(w io.Writer, result *Result) error
}

// NewWriter создаёт Writer по формату без учёта регистра.
// Неизвестный формат даёт TextWriter.
func NewWriter(format string) Writer {
	if strings.EqualFold(format, FormatJSON) {
		return NewJSONWriter()
	}
	return NewTextWriter()
}
