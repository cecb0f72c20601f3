package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextWriter_Success(t *testing.T) {
	summary := NewSummaryInfo()
	summary.AddMetric("Страниц проверено", "12", "шт")
	summary.AddMetric("Режим", "strict", "")
	summary.AddWarning("консоль: Uncaught TypeError")
	result := NewSuccessResult("smoke-pages", map[string]int{"visited": 12},
		&Metadata{DurationMs: 95_000, APIVersion: "v1"})
	result.Summary = summary

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	out := buf.String()
	assert.Contains(t, out, "smoke-pages: success\n")
	assert.Contains(t, out, "\"visited\": 12")
	assert.Contains(t, out, "📊 Сводка")
	assert.Contains(t, out, "⏱️  Время выполнения: 1м 35с")
	assert.Contains(t, out, "📈 Страниц проверено: 12 шт\n")
	assert.Contains(t, out, "📈 Режим: strict\n")
	assert.Contains(t, out, "⚠️  Предупреждений: 1")
	assert.Contains(t, out, "   • консоль: Uncaught TypeError\n")
}

func TestTextWriter_Error_NoSummary(t *testing.T) {
	result := NewErrorResult("check-migrations", "MIGRATIONS.PENDING_CHANGES", "есть изменения модели", nil,
		&Metadata{DurationMs: 10, APIVersion: "v1"})

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, result))

	assert.Equal(t, "check-migrations: error\nError [MIGRATIONS.PENDING_CHANGES]: есть изменения модели\n", buf.String())
}

func TestTextWriter_Nil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTextWriter().Write(&buf, nil))
	assert.Empty(t, buf.String())
}

func TestTextWriter_UnserializableData(t *testing.T) {
	result := NewSuccessResult("version", make(chan int), nil)
	err := NewTextWriter().Write(&bytes.Buffer{}, result)
	assert.ErrorContains(t, err, "не удалось сериализовать Data")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestTextWriter_PropagatesWriteError(t *testing.T) {
	err := NewTextWriter().Write(failingWriter{}, NewSuccessResult("help", nil, nil))
	assert.EqualError(t, err, "broken pipe")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "0мс"},
		{999, "999мс"},
		{1000, "1.0с"},
		{3500, "3.5с"},
		{60_000, "1м 0с"},
		{125_000, "2м 5с"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.ms))
		})
	}
}
