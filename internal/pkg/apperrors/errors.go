// Package apperrors предоставляет структурированные ошибки приложения.
package apperrors

import (
	"errors"
	"fmt"
)

// Коды ошибок в формате CATEGORY.SPECIFIC_ERROR.
const (
	// CONFIG - загрузка и разбор конфигурации.
	ErrConfigLoad     = "CONFIG.LOAD_FAILED"
	ErrConfigParse    = "CONFIG.PARSE_FAILED"
	ErrConfigValidate = "CONFIG.VALIDATION_FAILED"

	// COMMAND - диспетчеризация и выполнение команд.
	ErrCommandNotFound = "COMMAND.NOT_FOUND"
	ErrCommandExec     = "COMMAND.EXEC_FAILED"

	// OUTPUT - форматирование результата.
	ErrOutputFormat = "OUTPUT.FORMAT_FAILED"

	// MIGRATIONS - проверка изменений модели и истории миграций.
	ErrMigrationsPending     = "MIGRATIONS.PENDING_CHANGES"
	ErrMigrationsCheckFailed = "MIGRATIONS.CHECK_FAILED"
	ErrMigrationsHistory     = "MIGRATIONS.HISTORY_FAILED"
	ErrMigrationsNotApplied  = "MIGRATIONS.NOT_APPLIED"

	// SMOKE - smoke-проверка страниц.
	ErrSmokeLaunch      = "SMOKE.LAUNCH_FAILED"
	ErrSmokeBrowser     = "SMOKE.BROWSER_FAILED"
	ErrSmokePagesFailed = "SMOKE.PAGES_FAILED"
)

// AppError представляет структурированную ошибку приложения.
//
// ВАЖНО: Message НЕ ДОЛЖЕН содержать секреты (пароли, DSN, токены).
//
//	return apperrors.NewAppError(apperrors.ErrMigrationsHistory,
//	    "не удалось прочитать таблицу истории миграций", err)
type AppError struct {
	// Code - машиночитаемый код ошибки в формате CATEGORY.SPECIFIC.
	Code string `json:"code"`

	// Message - человекочитаемое описание ошибки.
	Message string `json:"message"`

	// Cause не сериализуется в JSON: может содержать строку подключения.
	Cause error `json:"-"`
}

// Error реализует интерфейс error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap возвращает wrapped ошибку для errors.Is/As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError создаёт новый AppError.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf возвращает код первого AppError в цепочке err
// или fallback, если AppError в цепочке нет.
func CodeOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}
