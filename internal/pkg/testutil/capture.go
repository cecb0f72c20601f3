// Package testutil содержит общие утилиты для тестирования.
package testutil

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// CaptureStdout выполняет fn, перехватывая stdout, и возвращает вывод.
func CaptureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stdout, fn)
}

// CaptureStderr выполняет fn, перехватывая stderr, и возвращает вывод.
// Нужен для проверки предупреждений deprecated-алиасов и HandleError.
func CaptureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return capture(t, &os.Stderr, fn)
}

func capture(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	orig := *target
	r, w, err := os.Pipe()
	require.NoError(t, err, "не удалось создать pipe")

	*target = w
	defer func() { *target = orig }()

	// Читаем параллельно, чтобы fn не заблокировался на заполненном pipe.
	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r) //nolint:errcheck // test helper
		done <- buf.Bytes()
	}()

	fn()

	_ = w.Close() //nolint:errcheck // test helper pipe close
	out := <-done
	_ = r.Close() //nolint:errcheck // test helper pipe close
	return string(out)
}
