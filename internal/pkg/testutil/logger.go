package testutil

import (
	"bytes"
	"log/slog"
	"sync"
)

// SyncBuffer - bytes.Buffer, безопасный для записи из нескольких горутин.
type SyncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *SyncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *SyncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// NewBufferLogger возвращает текстовый slog.Logger уровня Debug, пишущий в буфер.
func NewBufferLogger() (*SyncBuffer, *slog.Logger) {
	buf := &SyncBuffer{}
	return buf, slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
