// Package migrations проверяет согласованность модели EF Core с миграциями:
// незафиксированные изменения модели (Checker) и расхождение файлов миграций
// с таблицей истории БД (ScanDir, Compare).
package migrations

import (
	"fmt"
	"strings"
)

// Mode - способ определить, есть ли незафиксированные изменения модели.
type Mode string

const (
	// ModeStrict: ненулевой код означает изменения; код 0 должен
	// подтверждаться фразой NoChangesSentence.
	ModeStrict Mode = "strict"
	// ModeExitCode: только код завершения.
	ModeExitCode Mode = "exit-code"
	// ModeSentence: только фраза. Для инструментов, которые ошибаются с кодом.
	ModeSentence Mode = "sentence"
)

// NoChangesSentence печатает dotnet ef, когда изменений нет.
const NoChangesSentence = "No changes have been made to the model since the last migration."

// ParseMode разбирает имя режима. Пустая строка даёт ModeStrict.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeStrict, nil
	case ModeStrict, ModeExitCode, ModeSentence:
		return m, nil
	default:
		return "", fmt.Errorf("unknown detection mode %q (want strict, exit-code or sentence)", s)
	}
}

// Detect решает по коду завершения и выводу инструмента, есть ли изменения модели.
// reason описывает основание решения для логов и отчёта.
// Пустой sentence заменяется на NoChangesSentence.
func Detect(exitCode int, output string, mode Mode, sentence string) (pending bool, reason string) {
	if sentence == "" {
		sentence = NoChangesSentence
	}
	confirmed := strings.Contains(output, sentence)

	switch mode {
	case ModeExitCode:
		if exitCode != 0 {
			return true, fmt.Sprintf("tool exited with code %d", exitCode)
		}
		return false, "tool exited with code 0"

	case ModeSentence:
		if !confirmed {
			return true, "no-changes sentence not found in tool output"
		}
		return false, "no-changes sentence found in tool output"

	default:
		if exitCode != 0 {
			return true, fmt.Sprintf("tool exited with code %d", exitCode)
		}
		if !confirmed {
			return true, "tool exited with code 0 but no-changes sentence not found"
		}
		return false, "tool exited with code 0 and confirmed no changes"
	}
}

// IsDiscrepancy сообщает, что код и вывод противоречат друг другу:
// код 0 без подтверждающей фразы.
func IsDiscrepancy(exitCode int, output, sentence string) bool {
	if sentence == "" {
		sentence = NoChangesSentence
	}
	return exitCode == 0 && !strings.Contains(output, sentence)
}
