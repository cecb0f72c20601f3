// Package tracing связывает логи и спаны одного запуска rb-ci.
//
// Trace ID - 32 hex-символа (16 байт), совместим с W3C Trace Context,
// поэтому тот же ID используется и в slog-атрибуте trace_id, и в OTel спанах.
package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID генерирует trace ID через crypto/rand.
// Если crypto/rand недоступен, ID строится из времени и счётчика.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID всегда возвращает ровно 32 символа: %016x от двух uint64.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano()) //nolint:gosec // монотонность не требуется
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
