package progress

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsImplementation(t *testing.T) {
	tests := []struct {
		name     string
		show     string
		format   string
		total    int64
		wantType any
	}{
		{"прогресс выключен", "false", "", 10, &NoopProgress{}},
		{"json формат", "", "json", 10, &NoopProgress{}},
		{"JSON формат", "", "JSON", 10, &NoopProgress{}},
		{"неизвестный total", "", "", 0, &SpinnerProgress{}},
		{"не терминал", "", "text", 12, &NonTTYProgress{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BR_SHOW_PROGRESS", tt.show)
			t.Setenv("BR_OUTPUT_FORMAT", tt.format)

			p := New(Options{Total: tt.total, Output: &bytes.Buffer{}})
			assert.IsType(t, tt.wantType, p)
		})
	}
}

func TestNewIndeterminate(t *testing.T) {
	t.Setenv("BR_SHOW_PROGRESS", "")
	t.Setenv("BR_OUTPUT_FORMAT", "")
	assert.IsType(t, &SpinnerProgress{}, NewIndeterminate())

	t.Setenv("BR_SHOW_PROGRESS", "false")
	assert.IsType(t, &NoopProgress{}, NewIndeterminate())
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	assert.False(t, IsTTY(nil))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{0, "0s"},
		{45 * time.Second, "45s"},
		{5 * time.Minute, "5m"},
		{5*time.Minute + 30*time.Second, "5m 30s"},
		{time.Hour, "1h"},
		{time.Hour + 30*time.Second, "1h 30s"},
		{time.Hour + 7*time.Minute + 30*time.Second, "1h 7m 30s"},
		{1499 * time.Millisecond, "1s"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.in))
		})
	}
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestNonTTYProgress_ReportsEveryTenPercent(t *testing.T) {
	logger, buf := newBufferLogger()
	p := NewNonTTYProgress(Options{Total: 12, Logger: logger})

	p.Start("Обход страниц")
	for i := int64(1); i <= 12; i++ {
		p.Update(i, "")
	}
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "Операция начата")
	assert.Contains(t, out, "Операция завершена")
	// 12 шагов: 8%,16%,25%,33%,41%,50%,58%,66%,75%,83%,91%,100% → границы 10..90 по одному разу
	assert.Equal(t, 9, strings.Count(out, "Прогресс операции"))
	assert.Contains(t, out, "percent=50")
}

func TestNonTTYProgress_ZeroTotalIsSilent(t *testing.T) {
	logger, buf := newBufferLogger()
	p := NewNonTTYProgress(Options{Logger: logger})

	p.Start("x")
	p.Update(5, "msg")
	assert.NotContains(t, buf.String(), "Прогресс операции")

	p.SetTotal(10)
	p.Update(5, "")
	assert.Contains(t, buf.String(), "percent=50")
	assert.Contains(t, buf.String(), "message=msg")
}

func TestTTYProgress_Draw(t *testing.T) {
	var out bytes.Buffer
	p := NewTTYProgress(Options{Total: 4, Output: &out, ShowETA: true})

	p.Start("Обход страниц")
	p.Update(2, "/leaderboard")
	assert.Contains(t, out.String(), "50%")
	assert.Contains(t, out.String(), "| ETA: ")
	assert.Contains(t, out.String(), "| /leaderboard")

	p.Finish()
	assert.Contains(t, out.String(), "100%")
	assert.True(t, strings.HasSuffix(out.String(), "\n"))
}

func TestTTYProgress_Throttle(t *testing.T) {
	var out bytes.Buffer
	p := NewTTYProgress(Options{Total: 10, Output: &out, ThrottleInterval: time.Hour})

	p.Start("x")
	p.Update(1, "")
	first := out.Len()
	p.Update(2, "")
	assert.Equal(t, first, out.Len(), "повторная отрисовка внутри интервала пропускается")
}

func TestRenderBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat(" ", barWidth)+"]", renderBar(0))
	assert.Equal(t, "["+strings.Repeat("=", barWidth)+"]", renderBar(100))

	half := renderBar(50)
	assert.Equal(t, "["+strings.Repeat("=", 15)+">"+strings.Repeat(" ", 14)+"]", half)
}

func TestSpinnerProgress_NonTTY(t *testing.T) {
	logger, buf := newBufferLogger()
	p := NewSpinnerProgress(Options{Output: &bytes.Buffer{}, Logger: logger})

	p.Start("dotnet ef migrations has-pending-model-changes")
	p.Update(0, "")
	p.SetTotal(3)
	p.Finish()

	out := buf.String()
	assert.Contains(t, out, "Операция начата")
	assert.Contains(t, out, "Операция завершена")
	assert.NotContains(t, out, "Прогресс операции", "в пределах 30 секунд промежуточных строк нет")
}

func TestNoopProgress(t *testing.T) {
	p := NewNoOp()
	require.NotPanics(t, func() {
		p.Start("x")
		p.Update(1, "y")
		p.SetTotal(2)
		p.Finish()
	})
}
