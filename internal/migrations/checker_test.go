//go:build unix

package migrations

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTool пишет sh-скрипт, изображающий dotnet.
func fakeTool(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dotnet")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755)) //nolint:gosec // тестовый исполняемый файл
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name         string
		script       string
		mode         Mode
		wantPending  bool
		wantExitCode int
	}{
		{
			name:         "нет изменений",
			script:       `echo "Build succeeded."; echo "No changes have been made to the model since the last migration."`,
			wantPending:  false,
			wantExitCode: 0,
		},
		{
			name:         "код 0 с другим сообщением",
			script:       `echo "Done."`,
			wantPending:  true,
			wantExitCode: 0,
		},
		{
			name:         "ненулевой код",
			script:       `echo "Changes have been made to the model since the last migration." 1>&2; exit 1`,
			wantPending:  true,
			wantExitCode: 1,
		},
		{
			name:         "exit-code режим доверяет коду",
			script:       `echo "Done."`,
			mode:         ModeExitCode,
			wantPending:  false,
			wantExitCode: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Checker{Tool: fakeTool(t, tt.script), Mode: tt.mode, Logger: quietLogger()}

			outcome, err := c.Check(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantPending, outcome.Pending)
			assert.Equal(t, tt.wantExitCode, outcome.ExitCode)
			assert.NotEmpty(t, outcome.Output)
		})
	}
}

func TestChecker_Args(t *testing.T) {
	tool := fakeTool(t, `echo "$@"; echo "No changes have been made to the model since the last migration."`)
	c := &Checker{
		Tool:      tool,
		Project:   "./src/App.csproj",
		ExtraArgs: []string{"--no-build"},
		Logger:    quietLogger(),
	}

	outcome, err := c.Check(context.Background())
	require.NoError(t, err)
	assert.Contains(t, outcome.Output, "ef migrations has-pending-model-changes --project ./src/App.csproj --no-build")
}

func TestChecker_Defaults(t *testing.T) {
	c := &Checker{}
	assert.Equal(t, DefaultTool, c.Command())
	assert.Equal(t, []string{"ef", "migrations", "has-pending-model-changes", "--project", DefaultProject}, c.Args())
}

func TestChecker_InvocationFailure(t *testing.T) {
	t.Run("инструмент не найден", func(t *testing.T) {
		c := &Checker{Tool: filepath.Join(t.TempDir(), "missing"), Logger: quietLogger()}
		outcome, err := c.Check(context.Background())
		assert.Error(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("таймаут", func(t *testing.T) {
		c := &Checker{Tool: fakeTool(t, "sleep 5"), Timeout: 100 * time.Millisecond, Logger: quietLogger()}
		_, err := c.Check(context.Background())
		assert.ErrorContains(t, err, "did not finish")
	})

	t.Run("отменённый контекст", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := &Checker{Tool: fakeTool(t, "echo hi"), Logger: quietLogger()}
		_, err := c.Check(ctx)
		assert.Error(t, err)
	})
}
