package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeFormat(t *testing.T) {
	codeRe := regexp.MustCompile(`^[A-Z]+\.[A-Z_]+$`)
	codes := []string{
		ErrConfigLoad, ErrConfigParse, ErrConfigValidate,
		ErrCommandNotFound, ErrCommandExec, ErrOutputFormat,
		ErrMigrationsPending, ErrMigrationsCheckFailed, ErrMigrationsHistory, ErrMigrationsNotApplied,
		ErrSmokeLaunch, ErrSmokeBrowser, ErrSmokePagesFailed,
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		t.Run(code, func(t *testing.T) {
			assert.Regexp(t, codeRe, code)
			assert.False(t, seen[code], "код %s повторяется", code)
			seen[code] = true
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "с причиной",
			err:      NewAppError(ErrSmokeLaunch, "не удалось запустить приложение", errors.New("exec: dotnet not found")),
			expected: "SMOKE.LAUNCH_FAILED: не удалось запустить приложение (exec: dotnet not found)",
		},
		{
			name:     "без причины",
			err:      NewAppError(ErrMigrationsPending, "есть незафиксированные изменения модели", nil),
			expected: "MIGRATIONS.PENDING_CHANGES: есть незафиксированные изменения модели",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := NewAppError(ErrMigrationsHistory, "не удалось подключиться к БД", cause)

	assert.Equal(t, cause, appErr.Unwrap())
	assert.True(t, errors.Is(appErr, cause))
	assert.Nil(t, NewAppError(ErrConfigLoad, "x", nil).Unwrap())
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("smoke: %w", NewAppError(ErrSmokeBrowser, "браузер не запустился", nil))

	assert.Equal(t, ErrSmokeBrowser, CodeOf(wrapped, ErrCommandExec))
	assert.Equal(t, ErrCommandExec, CodeOf(errors.New("plain"), ErrCommandExec))
	assert.Equal(t, ErrCommandExec, CodeOf(nil, ErrCommandExec))
}

func TestAppError_JSON_Serialization(t *testing.T) {
	appErr := NewAppError(ErrMigrationsHistory, "не удалось прочитать историю", errors.New("dsn=secret"))

	data, err := json.Marshal(appErr)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, ErrMigrationsHistory, parsed["code"])
	assert.Equal(t, "не удалось прочитать историю", parsed["message"])
	assert.NotContains(t, string(data), "secret", "Cause не должен сериализоваться в JSON")
}
