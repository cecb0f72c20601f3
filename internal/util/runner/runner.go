// Package runner запускает внешние процессы: короткие команды с захватом вывода
// (Runner) и долгоживущие приложения в собственной группе процессов (Background).
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/Kargones/rb-ci/internal/pkg/urlutil"
)

const maxConsoleOut = 2048

// Runner выполняет команду и собирает её stdout и stderr.
type Runner struct {
	RunString string
	Params    []string
	WorkDir   string
	// Env дополняет окружение текущего процесса, формат KEY=VALUE.
	Env []string
	// Encoding - кодировка консоли дочернего процесса (см. Decode).
	Encoding string

	ConsoleOut []byte
	ExitCode   int
}

// ClearParams очищает параметры команды.
func (r *Runner) ClearParams() {
	r.Params = []string{}
}

// validateParams проверяет исполняемый файл. Параметры передаются без shell,
// поэтому ';' в строке подключения допустим, а NUL нет.
func (r *Runner) validateParams() error {
	if r.RunString == "" {
		return errors.New("executable path is empty")
	}
	if strings.ContainsAny(r.RunString, ";&|") {
		return fmt.Errorf("potentially unsafe executable path: %s", r.RunString)
	}
	for _, param := range r.Params {
		if strings.ContainsRune(param, 0) {
			return fmt.Errorf("parameter contains NUL byte: %q", param)
		}
	}
	return nil
}

// RunCommand выполняет команду и возвращает декодированный вывод.
//
// Ненулевой код завершения возвращается как *exec.ExitError вместе с выводом,
// r.ExitCode заполняется. Остальные ошибки означают, что команда не отработала:
// не запустилась, истёк таймаут или отменён ctx.
func (r *Runner) RunCommand(ctx context.Context, l *slog.Logger) ([]byte, error) {
	l.Info("Параметры запуска",
		slog.String("Исполняемый файл", r.RunString),
		slog.String("WorkDir", r.WorkDir),
		slog.String("Параметры", fmt.Sprint(MaskParams(r.Params))),
	)

	if err := r.validateParams(); err != nil {
		return nil, err
	}

	// #nosec G204 - исполняемый файл берётся из конфигурации, shell не используется
	cmd := exec.CommandContext(ctx, r.RunString, r.Params...)
	cmd.Dir = r.WorkDir
	if len(r.Env) > 0 {
		cmd.Env = appendEnviron(r.Env...)
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	runErr := cmd.Run()

	decoded, decErr := Decode(buf.Bytes(), r.Encoding)
	if decErr != nil {
		l.Warn("Не удалось декодировать вывод команды", slog.String("error", decErr.Error()))
	}
	r.ConsoleOut = []byte(decoded)
	r.ExitCode = 0
	if cmd.ProcessState != nil {
		r.ExitCode = cmd.ProcessState.ExitCode()
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("%w: %w", ctxErr, runErr)
		}
		l.Error("Runner",
			slog.String("Ошибка при запуске", runErr.Error()),
			slog.String("Исполняемый файл", r.RunString),
			slog.Int("Код завершения", r.ExitCode),
			slog.String("Вывод", TrimOut(r.ConsoleOut)),
		)
	}
	l.Debug("Runner", slog.String("Вывод консоли", TrimOut(r.ConsoleOut)))

	r.ClearParams()
	return r.ConsoleOut, runErr
}

// IsExitError сообщает, что команда отработала и завершилась с ненулевым кодом.
func IsExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// MaskParams маскирует значения --connection и пароли в строках подключения.
func MaskParams(params []string) []string {
	masked := make([]string, len(params))
	for i, p := range params {
		switch {
		case i > 0 && params[i-1] == "--connection":
			masked[i] = urlutil.MaskDSN(p)
		case strings.HasPrefix(p, "--connection="):
			masked[i] = "--connection=" + urlutil.MaskDSN(strings.TrimPrefix(p, "--connection="))
		default:
			masked[i] = p
		}
	}
	return masked
}

func appendEnviron(kv ...string) []string {
	env := os.Environ()
	for _, newVar := range kv {
		eqIndex := strings.Index(newVar, "=")
		if eqIndex <= 0 {
			continue
		}
		key := newVar[:eqIndex]
		found := false
		for i, v := range env {
			if strings.HasPrefix(v, key+"=") {
				env[i] = newVar
				found = true
				break
			}
		}
		if !found {
			env = append(env, newVar)
		}
	}
	return env
}

// TrimOut обрезает вывод команды до начала и конца.
func TrimOut(b []byte) string {
	if len(b) < maxConsoleOut {
		return string(b)
	}
	return string(b[:1020]) + "\n********\n" + string(b[len(b)-1020:])
}
